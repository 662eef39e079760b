package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/bannerscout/classifier"
	"github.com/use-agent/bannerscout/config"
	"github.com/use-agent/bannerscout/fetcher"
	"github.com/use-agent/bannerscout/models"
)

// GeoHeader asks the proxy provider to exit from a given country.
const GeoHeader = "x-oxylabs-geo-location"

// BrowserOptions configures a BrowserEngine.
type BrowserOptions struct {
	Headless  bool
	NoSandbox bool
	Bin       string

	// NavigationTimeout bounds page.Navigate alone.
	NavigationTimeout time.Duration

	Proxy    config.ProxyConfig
	Location models.Location

	// Reporter receives per-step progress. May be nil.
	Reporter *Reporter
}

// BrowserEngine scans pages in a stealth Chrome driven by Rod.
type BrowserEngine struct {
	browser *rod.Browser
	opts    BrowserOptions
}

// NewBrowserEngine launches Chrome with stealth flags. When a proxy is
// configured all traffic goes through it and its credentials are answered
// automatically.
func NewBrowserEngine(opts BrowserOptions) (*BrowserEngine, error) {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 45 * time.Second
	}

	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)

	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if server := proxyServer(opts.Proxy); server != "" {
		l = l.Proxy(server)
		l.Set(flags.Flag("ignore-certificate-errors"))
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("window-size"), "1920,1080")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	slog.Debug("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	if opts.Proxy.Configured() {
		wait := browser.HandleAuth(opts.Proxy.Username, opts.Proxy.Password)
		go func() {
			if err := wait(); err != nil {
				slog.Debug("proxy auth handler stopped", "error", err)
			}
		}()
	}

	return &BrowserEngine{browser: browser, opts: opts}, nil
}

func (e *BrowserEngine) Name() string { return "browser" }

// Close kills the browser process.
func (e *BrowserEngine) Close() error {
	return e.browser.Close()
}

// Scan opens pageURL in a fresh tab, scrolls it, cycles carousels and
// classifies every measured image.
func (e *BrowserEngine) Scan(ctx context.Context, pageURL string) (*PageScan, error) {
	rep := e.opts.Reporter

	page, err := e.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	defer page.Close()

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		return nil, fmt.Errorf("inject stealth: %w", err)
	}
	if err := e.emulate(page, pageURL); err != nil {
		return nil, fmt.Errorf("emulate %s: %w", e.opts.Location.Code, err)
	}
	if !e.opts.Proxy.Configured() {
		router := interceptRequests(page)
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	rep.Info("Navigating to %s", pageURL)
	if err := p.Timeout(e.opts.NavigationTimeout).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		slog.Debug("WaitLoad failed, continuing", "url", pageURL, "error", err)
	}
	if err := p.Timeout(10*time.Second).WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable failed, continuing", "url", pageURL, "error", err)
	}

	rep.Info("Scrolling page...")
	if err := scroll(ctx, p); err != nil {
		return nil, err
	}

	rep.Info("Cycling carousels...")
	if res, err := p.Eval(cycleCarouselsJS, nextButtonSelectors, carouselClicks); err != nil {
		slog.Debug("carousel cycling failed", "url", pageURL, "error", err)
	} else if n := res.Value.Int(); n > 0 {
		rep.Success("Clicked through %d carousel controls", n)
	}
	if err := pause(ctx, 2*time.Second, time.Second); err != nil {
		return nil, err
	}

	res, err := p.Eval(collectImagesJS)
	if err != nil {
		return nil, fmt.Errorf("collect images: %w", err)
	}
	var images []classifier.RenderedImage
	if err := res.Value.Unmarshal(&images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}

	finalURL := pageURL
	if loc, err := p.Eval(locationJS); err == nil && loc.Value.Str() != "" {
		finalURL = loc.Value.Str()
	}

	html, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}

	banners, err := classifier.ClassifyRendered(images, finalURL)
	if err != nil {
		return nil, err
	}
	slog.Debug("page scanned", "url", finalURL, "images", len(images), "banners", len(banners))

	return &PageScan{URL: finalURL, HTML: html, Banners: banners}, nil
}

// emulate makes the tab look like a desktop visitor in the configured
// location.
func (e *BrowserEngine) emulate(page *rod.Page, pageURL string) error {
	loc := e.opts.Location

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		return err
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      fetcher.ChromeUserAgent,
		AcceptLanguage: acceptLanguage(loc),
		Platform:       "Win32",
	}); err != nil {
		return err
	}
	if loc.Timezone != "" {
		if err := (proto.EmulationSetTimezoneOverride{TimezoneID: loc.Timezone}).Call(page); err != nil {
			return err
		}
	}
	if loc.Locale != "" {
		if err := (proto.EmulationSetLocaleOverride{Locale: loc.Locale}).Call(page); err != nil {
			slog.Debug("locale override rejected", "locale", loc.Locale, "error", err)
		}
	}

	lat, lng, accuracy := loc.Latitude, loc.Longitude, 100.0
	if err := (proto.EmulationSetGeolocationOverride{
		Latitude:  &lat,
		Longitude: &lng,
		Accuracy:  &accuracy,
	}).Call(page); err != nil {
		return err
	}
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		_ = proto.BrowserGrantPermissions{
			Permissions: []proto.BrowserPermissionType{proto.BrowserPermissionTypeGeolocation},
			Origin:      u.Scheme + "://" + u.Host,
		}.Call(e.browser)
	}

	return proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(e.extraHeaders()),
	}.Call(page)
}

func (e *BrowserEngine) extraHeaders() map[string]string {
	h := map[string]string{
		"Accept-Language": acceptLanguage(e.opts.Location),
	}
	if e.opts.Proxy.Configured() && e.opts.Location.Name != "" {
		h[GeoHeader] = e.opts.Location.Name
	}
	return h
}

// scroll walks down the page in five steps, then returns to the top.
func scroll(ctx context.Context, p *rod.Page) error {
	for step := 1; step <= 5; step++ {
		if _, err := p.Eval(scrollToJS, float64(step)/5); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}
		if err := pause(ctx, time.Second, time.Second); err != nil {
			return err
		}
	}
	if _, err := p.Eval(scrollTopJS); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return pause(ctx, time.Second, 0)
}

// pause sleeps for base plus up to jitter, or until ctx is done.
func pause(ctx context.Context, base, jitter time.Duration) error {
	d := base
	if jitter > 0 {
		d += rand.N(jitter)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// acceptLanguage prefers the location's locale with English as fallback.
func acceptLanguage(loc models.Location) string {
	if loc.Locale == "" {
		return "en-US,en;q=0.9"
	}
	return loc.Locale + ",en;q=0.9"
}

// proxyServer renders the --proxy-server value. Chrome takes credentials
// separately, so they are left out.
func proxyServer(p config.ProxyConfig) string {
	u := p.URL()
	if u == nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func toHeadersMap(h map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(h))
	for k, v := range h {
		m[k] = gson.New(v)
	}
	return m
}
