package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"

	"github.com/use-agent/bannerscout/config"
)

// ProxyStrategy downloads through the credentialed forward proxy.
// Certificates are not verified toward the proxy or the tunnelled target
// because the egress pool re-signs TLS.
type ProxyStrategy struct {
	client   *http.Client
	proxyURL *url.URL
}

// NewProxyStrategy creates a ProxyStrategy. When cfg is not configured
// every Fetch returns ErrProxyNotConfigured.
func NewProxyStrategy(cfg config.ProxyConfig) *ProxyStrategy {
	s := &ProxyStrategy{proxyURL: cfg.URL()}
	if s.proxyURL == nil {
		return s
	}
	s.client = &http.Client{
		Transport: &http.Transport{
			Proxy:           http.ProxyURL(s.proxyURL),
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
		CheckRedirect: limitRedirects,
	}
	return s
}

func (s *ProxyStrategy) Name() string { return "proxy" }

func (s *ProxyStrategy) Fetch(ctx context.Context, req *Request) (*Resource, error) {
	if s.client == nil {
		return nil, ErrProxyNotConfigured
	}

	res, err := get(ctx, s.client, req)
	if err != nil {
		return nil, fmt.Errorf("proxy: %w", err)
	}
	res.Strategy = s.Name()
	return res, nil
}
