// Package scraper is the bundled scrape worker: it renders a page, picks
// out its banners and follows one promotions link.
package scraper

import (
	"context"
	"fmt"

	"github.com/use-agent/bannerscout/classifier"
	"github.com/use-agent/bannerscout/models"
)

// Engine scans one page for banners.
type Engine interface {
	// Name returns the engine identifier ("browser", "http").
	Name() string

	// Scan loads pageURL and returns its banners and final HTML.
	Scan(ctx context.Context, pageURL string) (*PageScan, error)

	// Close releases the engine's resources.
	Close() error
}

// PageScan is what an engine saw on one page.
type PageScan struct {
	// URL is the page address after redirects.
	URL     string
	HTML    string
	Banners []models.BannerRef
}

// Run scrapes the homepage at target and, when one is linked, a
// promotions page. Banners already seen on the homepage are not repeated
// for promotions. Progress goes to rep.
func Run(ctx context.Context, eng Engine, rep *Reporter, target string) (*models.ScrapeResult, error) {
	result := &models.ScrapeResult{
		Homepage:   []models.BannerRef{},
		Promotions: []models.BannerRef{},
	}
	seen := make(map[string]struct{})

	rep.Info("Loading homepage with %s engine...", eng.Name())
	home, err := eng.Scan(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("homepage: %w", err)
	}
	result.Homepage = classifier.Dedupe(seen, home.Banners)
	rep.Success("%d banners from homepage", len(result.Homepage))

	link, ok := FindPromoLink(home.HTML, home.URL)
	if !ok {
		rep.Info("No promotions link found")
		return result, nil
	}
	rep.Success("Found promo link: %q -> %s", link.Text, link.URL)

	promo, err := eng.Scan(ctx, link.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rep.Fail("Promotions page failed: %v", err)
		return result, nil
	}
	result.Promotions = classifier.Dedupe(seen, promo.Banners)
	rep.Success("%d new banners from promotions page", len(result.Promotions))

	return result, nil
}
