package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindPromoLink(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		wantURL  string
		wantText string
	}{
		{
			name:     "matches link text",
			html:     `<a href="/news">News</a><a href="/current">Special Offers</a>`,
			wantURL:  "https://site.example/current",
			wantText: "special offers",
		},
		{
			name:     "matches path",
			html:     `<a href="/en/promotions/">See all</a>`,
			wantURL:  "https://site.example/en/promotions/",
			wantText: "see all",
		},
		{
			name:    "first match wins",
			html:    `<a href="/cashback">Cashback</a><a href="/promo">Promo</a>`,
			wantURL: "https://site.example/cashback",
		},
		{
			name: "other host ignored",
			html: `<a href="https://partner.example/promo">Promo</a>`,
		},
		{
			name: "javascript and mailto ignored",
			html: `<a href="javascript:void(0)">Bonus</a><a href="mailto:promo@site.example">Mail</a>`,
		},
		{
			name: "self link ignored",
			html: `<a href="/#bonus">Bonus</a>`,
		},
		{
			name: "no keywords",
			html: `<a href="/login">Log in</a>`,
		},
		{
			name:    "fragment dropped",
			html:    `<a href="/free-bet#top">Free bet</a>`,
			wantURL: "https://site.example/free-bet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, ok := FindPromoLink(tt.html, "https://site.example/")
			if tt.wantURL == "" {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.wantURL, link.URL)
			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, link.Text)
			}
		})
	}
}

func TestFindPromoLink_InvalidPage(t *testing.T) {
	_, ok := FindPromoLink(`<a href="/promo">Promo</a>`, "not a url")
	assert.False(t, ok)
}
