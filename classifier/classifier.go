// Package classifier decides which page images are promotional banners.
//
// The same rules apply to images parsed from static HTML and to images
// measured in a rendered browser page.
package classifier

import (
	"strings"
)

// ImageElement is the view of an image the classifier needs.
type ImageElement interface {
	Width() float64
	Height() float64
	Src() string
	ContainerClass() string
	ContainerID() string
}

var bannerKeywords = []string{"banner", "hero", "slider", "carousel", "header"}

// IsBanner reports whether el looks like a banner. Any one rule suffices:
// a wide aspect ratio on a reasonably wide image, a banner keyword in the
// container class, container id or source, or a very large width.
func IsBanner(el ImageElement) bool {
	w, h := el.Width(), el.Height()

	if h > 0 && w/h > 2 && w > 600 {
		return true
	}
	if hasKeyword(el.ContainerClass()) || hasKeyword(el.ContainerID()) || hasKeyword(el.Src()) {
		return true
	}
	return w > 1000
}

func hasKeyword(s string) bool {
	if s == "" {
		return false
	}
	s = strings.ToLower(s)
	for _, kw := range bannerKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// ParseDimension reads the leading integer of a width or height attribute
// ("1200", "600px"). Anything without leading digits is 0.
func ParseDimension(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	var n float64
	for _, c := range s[:end] {
		n = n*10 + float64(c-'0')
	}
	return n
}
