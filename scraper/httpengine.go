package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/use-agent/bannerscout/classifier"
	"github.com/use-agent/bannerscout/fetcher"
	"github.com/use-agent/bannerscout/models"
)

// HTTPEngine scans the server-rendered HTML without running scripts. It
// finds fewer banners than BrowserEngine but needs no Chrome.
type HTTPEngine struct {
	strategy fetcher.Strategy
	location models.Location
}

// NewHTTPEngine creates an HTTPEngine retrieving pages through s.
func NewHTTPEngine(s fetcher.Strategy, loc models.Location) *HTTPEngine {
	return &HTTPEngine{strategy: s, location: loc}
}

func (e *HTTPEngine) Name() string { return "http" }

func (e *HTTPEngine) Close() error { return nil }

func (e *HTTPEngine) Scan(ctx context.Context, pageURL string) (*PageScan, error) {
	res, err := e.strategy.Fetch(ctx, &fetcher.Request{
		URL: pageURL,
		Headers: map[string]string{
			"User-Agent":      fetcher.ChromeUserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": acceptLanguage(e.location),
		},
	})
	if err != nil {
		return nil, err
	}
	if !isHTML(res.ContentType) {
		return nil, fmt.Errorf("unexpected content-type %q", res.ContentType)
	}

	finalURL := res.FinalURL
	if finalURL == "" {
		finalURL = pageURL
	}
	html := string(res.Body)

	banners, err := classifier.Extract(html, finalURL)
	if err != nil {
		return nil, err
	}
	return &PageScan{URL: finalURL, HTML: html, Banners: banners}, nil
}

// isHTML accepts an empty content type; some servers omit it.
func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return ct == "" || strings.Contains(ct, "html")
}
