package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/bannerscout/fetcher"
	"github.com/use-agent/bannerscout/models"
)

const homepageHTML = `<html><body>
<div class="hero-banner"><img src="/img/hero.jpg" alt="Welcome" width="1200" height="400"></div>
<img src="/img/logo.png" alt="logo">
<a href="/promotions">Promotions</a>
</body></html>`

func TestHTTPEngine_Scan(t *testing.T) {
	var gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(homepageHTML))
	}))
	defer srv.Close()

	fr, _ := models.LocationByCode("FR")
	eng := NewHTTPEngine(fetcher.NewDirectStrategy(srv.Client()), fr)
	defer eng.Close()

	scan, err := eng.Scan(context.Background(), srv.URL+"/")
	require.NoError(t, err)

	assert.Equal(t, "fr-FR,en;q=0.9", gotLang)
	assert.Equal(t, srv.URL+"/", scan.URL)
	require.Len(t, scan.Banners, 1)
	assert.Equal(t, srv.URL+"/img/hero.jpg", scan.Banners[0].Src)

	link, ok := FindPromoLink(scan.HTML, scan.URL)
	require.True(t, ok)
	assert.Equal(t, srv.URL+"/promotions", link.URL)
}

func TestHTTPEngine_RejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	eng := NewHTTPEngine(fetcher.NewDirectStrategy(srv.Client()), models.Location{})
	_, err := eng.Scan(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application/pdf")
}

func TestHTTPEngine_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	eng := NewHTTPEngine(fetcher.NewDirectStrategy(srv.Client()), models.Location{})
	_, err := eng.Scan(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
