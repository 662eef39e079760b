package scraper

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// blockedTypes never carry banners; images and stylesheets must load so
// backgrounds and lazy sources resolve.
var blockedTypes = map[proto.NetworkResourceType]struct{}{
	proto.NetworkResourceTypeFont:  {},
	proto.NetworkResourceTypeMedia: {},
}

// trackerDomains are ad and analytics hosts dropped during a scan. Ad
// exchanges serve third-party creatives, not the site's own banners.
var trackerDomains = map[string]struct{}{
	"doubleclick.net":       {},
	"googlesyndication.com": {},
	"googleadservices.com":  {},
	"google-analytics.com":  {},
	"googletagmanager.com":  {},
	"facebook.net":          {},
	"adnxs.com":             {},
	"adsrvr.org":            {},
	"amazon-adsystem.com":   {},
	"criteo.com":            {},
	"criteo.net":            {},
	"outbrain.com":          {},
	"taboola.com":           {},
	"moatads.com":           {},
	"pubmatic.com":          {},
	"rubiconproject.com":    {},
	"scorecardresearch.com": {},
	"hotjar.com":            {},
	"mixpanel.com":          {},
	"segment.io":            {},
	"openx.net":             {},
	"casalemedia.com":       {},
	"demdex.net":            {},
	"consensu.org":          {},
}

// isTrackerHost reports whether host or any parent domain is a tracker.
func isTrackerHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for host != "" {
		if _, ok := trackerDomains[host]; ok {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			break
		}
		host = host[i+1:]
	}
	return false
}

// shouldBlock decides whether a page request is dropped.
func shouldBlock(rt proto.NetworkResourceType, rawURL string) bool {
	if _, ok := blockedTypes[rt]; ok {
		return true
	}
	u, err := url.Parse(rawURL)
	return err == nil && isTrackerHost(u.Hostname())
}

// interceptRequests installs the request filter on page. The caller must
// Stop the returned router. It is not used together with proxy auth,
// which takes over the Fetch domain for the whole browser.
func interceptRequests(page *rod.Page) *rod.HijackRouter {
	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if shouldBlock(h.Request.Type(), h.Request.URL().String()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
	return router
}
