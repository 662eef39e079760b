package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PromoKeywords identify a promotions page by link text or path.
var PromoKeywords = []string{
	"promo", "promotion", "bonus", "offer", "deal",
	"reward", "campaign", "special", "incentive",
	"welcome", "deposit", "cashback", "free-bet", "freebet",
}

// PromoLink is a same-site link that looks like it leads to promotions.
type PromoLink struct {
	Text string
	URL  string
}

// FindPromoLink returns the first same-host anchor in rawHTML whose text
// or path mentions a promo keyword. Links back to pageURL itself are
// ignored.
func FindPromoLink(rawHTML, pageURL string) (PromoLink, bool) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return PromoLink{}, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return PromoLink{}, false
	}

	var found PromoLink
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		resolved, err := base.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return true
		}
		if !strings.EqualFold(resolved.Host, base.Host) {
			return true
		}
		resolved.Fragment = ""
		if resolved.Path == base.Path && resolved.RawQuery == base.RawQuery {
			return true
		}

		text := strings.ToLower(strings.Join(strings.Fields(s.Text()), " "))
		path := strings.ToLower(resolved.Path)
		for _, kw := range PromoKeywords {
			if strings.Contains(text, kw) || strings.Contains(path, kw) {
				found = PromoLink{Text: text, URL: resolved.String()}
				return false
			}
		}
		return true
	})

	return found, found.URL != ""
}
