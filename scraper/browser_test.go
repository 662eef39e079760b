package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/use-agent/bannerscout/config"
	"github.com/use-agent/bannerscout/models"
)

func TestAcceptLanguage(t *testing.T) {
	de, _ := models.LocationByCode("DE")
	assert.Equal(t, "de-DE,en;q=0.9", acceptLanguage(de))
	assert.Equal(t, "en-US,en;q=0.9", acceptLanguage(models.Location{}))
}

func TestProxyServer(t *testing.T) {
	assert.Empty(t, proxyServer(config.ProxyConfig{}))
	assert.Equal(t, "https://gate.example.net:7777", proxyServer(config.ProxyConfig{
		Host: "gate.example.net", Port: "7777", Username: "u", Password: "p", Scheme: "https",
	}))
}

func TestExtraHeaders(t *testing.T) {
	jp, _ := models.LocationByCode("JP")

	e := &BrowserEngine{opts: BrowserOptions{Location: jp}}
	assert.Equal(t, map[string]string{"Accept-Language": "ja-JP,en;q=0.9"}, e.extraHeaders())

	e.opts.Proxy = config.ProxyConfig{Host: "gate.example.net", Username: "u"}
	h := e.extraHeaders()
	assert.Equal(t, "Japan", h[GeoHeader])
}

func TestToHeadersMap(t *testing.T) {
	m := toHeadersMap(map[string]string{"Accept-Language": "fr-FR,en;q=0.9"})
	assert.Equal(t, "fr-FR,en;q=0.9", m["Accept-Language"].Str())
}

func TestPause_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := pause(ctx, time.Minute, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
