// Package fetcher downloads banner images, retrying through a forward
// proxy when the direct response is blocked or is not an image.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/bannerscout/cache"
)

// MaxBodySize caps a downloaded body.
const MaxBodySize = 25 << 20

// ErrProxyNotConfigured is returned by the proxy strategy when no proxy
// host or username is set.
var ErrProxyNotConfigured = errors.New("no proxy configured")

// Strategy is one way of retrieving a resource.
type Strategy interface {
	// Name returns the strategy identifier ("direct", "proxy").
	Name() string

	// Fetch retrieves the resource for the given request.
	Fetch(ctx context.Context, req *Request) (*Resource, error)
}

// Request contains everything a strategy needs to fetch a resource.
type Request struct {
	URL     string
	Headers map[string]string
}

// Resource is a retrieved document or image. ContentType is always
// carried apart from the body bytes.
type Resource struct {
	Body        []byte
	ContentType string
	Strategy    string
	FinalURL    string
}

// RetrievalError is returned when every strategy failed. Its message is
// the last failure; the direct failure is kept for logging.
type RetrievalError struct {
	URL       string
	Err       error
	DirectErr error
}

func (e *RetrievalError) Error() string { return e.Err.Error() }
func (e *RetrievalError) Unwrap() error { return e.Err }

// Fetcher tries the direct strategy first and falls back to the proxy.
type Fetcher struct {
	direct  Strategy
	proxy   Strategy
	timeout time.Duration
	cache   *cache.Cache[*Resource]
}

// New creates a Fetcher. Each attempt is bounded by timeout. A nil cache
// disables download caching.
func New(direct, proxy Strategy, timeout time.Duration, c *cache.Cache[*Resource]) *Fetcher {
	return &Fetcher{
		direct:  direct,
		proxy:   proxy,
		timeout: timeout,
		cache:   c,
	}
}

// Fetch downloads rawURL. The proxy is used when the direct attempt
// errors or returns a non-image content type. There is no third attempt.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Resource, error) {
	key := cache.Key(rawURL)
	if img, ok := f.cache.Get(key); ok {
		slog.Debug("download cache hit", "url", rawURL)
		return img, nil
	}

	req := &Request{
		URL:     rawURL,
		Headers: imageHeaders(rawURL),
	}

	img, directErr := f.attempt(ctx, f.direct, req)
	if directErr == nil {
		if isImage(img.ContentType) {
			f.cache.Set(key, img)
			return img, nil
		}
		directErr = fmt.Errorf("direct: unexpected content-type %q", img.ContentType)
	}

	slog.Info("direct download unusable, retrying through proxy",
		"url", rawURL, "error", directErr)

	img, err := f.attempt(ctx, f.proxy, req)
	if err != nil {
		slog.Warn("download failed",
			"url", rawURL, "direct_error", directErr, "proxy_error", err)
		return nil, &RetrievalError{URL: rawURL, Err: err, DirectErr: directErr}
	}
	if img.ContentType == "" {
		img.ContentType = "image/jpeg"
	}

	f.cache.Set(key, img)
	return img, nil
}

func (f *Fetcher) attempt(ctx context.Context, s Strategy, req *Request) (*Resource, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	img, err := s.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	slog.Debug("download attempt succeeded",
		"strategy", s.Name(), "url", req.URL, "bytes", len(img.Body),
		"content_type", img.ContentType, "elapsed", time.Since(start))
	return img, nil
}

// imageHeaders mimics a browser loading an <img> from the target site.
func imageHeaders(rawURL string) map[string]string {
	h := map[string]string{
		"User-Agent": ChromeUserAgent,
		"Accept":     "image/avif,image/webp,image/apng,image/*,*/*;q=0.8",
	}
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		h["Referer"] = u.Scheme + "://" + u.Host
	}
	return h
}

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
