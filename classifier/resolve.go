package classifier

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/use-agent/bannerscout/models"
)

// originOf returns scheme://host/ for an absolute page URL.
func originOf(pageURL string) (*url.URL, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("page url %q is not absolute", pageURL)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}, nil
}

// resolve makes src absolute against origin. Empty, data: and
// non-http(s) sources yield "".
func resolve(origin *url.URL, src string) string {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
		return ""
	}
	ref, err := origin.Parse(src)
	if err != nil {
		return ""
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

// Dedupe drops refs whose Src is already in seen, recording new ones.
// Order is preserved. A nil seen map dedupes within refs only.
func Dedupe(seen map[string]struct{}, refs []models.BannerRef) []models.BannerRef {
	if seen == nil {
		seen = make(map[string]struct{}, len(refs))
	}
	out := make([]models.BannerRef, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r.Src]; ok {
			continue
		}
		seen[r.Src] = struct{}{}
		out = append(out, r)
	}
	return out
}
