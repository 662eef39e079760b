package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/bannerscout/models"
)

var (
	imgSelector        = cascadia.MustCompile("img")
	backgroundSelector = cascadia.MustCompile(`[style*="background-image"]`)

	cssURLPattern = regexp.MustCompile(`url\(['"]?([^'")]+)['"]?\)`)
)

// staticImage adapts a parsed <img> node. Geometry comes from its
// attributes and the container is its immediate parent element.
type staticImage struct {
	node *html.Node
}

func (s staticImage) Width() float64  { return ParseDimension(attr(s.node, "width")) }
func (s staticImage) Height() float64 { return ParseDimension(attr(s.node, "height")) }
func (s staticImage) Src() string     { return attr(s.node, "src") }

func (s staticImage) ContainerClass() string { return attr(parentElement(s.node), "class") }
func (s staticImage) ContainerID() string    { return attr(parentElement(s.node), "id") }

// Extract scans static HTML for banner images and inline background
// images. Relative sources resolve against the origin of pageURL.
// Background images are reported without the banner heuristic.
func Extract(rawHTML, pageURL string) ([]models.BannerRef, error) {
	origin, err := originOf(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	banners := []models.BannerRef{}

	doc.FindMatcher(imgSelector).Each(func(_ int, sel *goquery.Selection) {
		img := staticImage{node: sel.Get(0)}
		if !IsBanner(img) {
			return
		}
		src := resolve(origin, img.Src())
		if src == "" {
			return
		}
		alt := attr(img.node, "alt")
		if alt == "" {
			alt = "Banner image"
		}
		banners = append(banners, models.BannerRef{
			Src:    src,
			Alt:    alt,
			Width:  attrDimension(img.node, "width"),
			Height: attrDimension(img.node, "height"),
			Type:   models.BannerTypeImage,
		})
	})

	doc.FindMatcher(backgroundSelector).Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		m := cssURLPattern.FindStringSubmatch(style)
		if m == nil {
			return
		}
		src := resolve(origin, m[1])
		if src == "" {
			return
		}
		banners = append(banners, models.BannerRef{
			Src:    src,
			Alt:    "Background banner",
			Width:  models.DimensionAuto,
			Height: models.DimensionAuto,
			Type:   models.BannerTypeBackground,
		})
	})

	return Dedupe(nil, banners), nil
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func attrDimension(n *html.Node, key string) models.Dimension {
	if v := strings.TrimSpace(attr(n, key)); v != "" {
		return models.Dimension(v)
	}
	return models.DimensionAuto
}

func parentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}
