package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Banner type labels.
const (
	BannerTypeImage      = "Banner Image"
	BannerTypeCarousel   = "Carousel Banner"
	BannerTypeBackground = "Background Banner"
)

// ResultFrame prefixes the single stdout line on which a worker emits its
// terminal result. Lines without it fall back to the trailing-JSON scan.
const ResultFrame = "@@result "

// BannerRef is one discovered banner image.
type BannerRef struct {
	Src    string    `json:"src"`
	Alt    string    `json:"alt"`
	Width  Dimension `json:"width"`
	Height Dimension `json:"height"`
	Type   string    `json:"type"`
}

// ScrapeResult is the terminal payload of a completed scrape.
type ScrapeResult struct {
	Homepage   []BannerRef `json:"homepage"`
	Promotions []BannerRef `json:"promotions"`
}

// Dimension is a width or height as reported by a worker. Workers emit
// either numbers or strings; an empty value serializes as "auto".
type Dimension string

// DimensionAuto is the placeholder for unknown geometry.
const DimensionAuto Dimension = "auto"

// DimensionOf formats a pixel size, mapping non-positive values to "auto".
func DimensionOf(px float64) Dimension {
	if px <= 0 {
		return DimensionAuto
	}
	return Dimension(strconv.FormatFloat(px, 'f', -1, 64))
}

func (d Dimension) MarshalJSON() ([]byte, error) {
	if d == "" {
		return json.Marshal(string(DimensionAuto))
	}
	return json.Marshal(string(d))
}

func (d *Dimension) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Dimension(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = Dimension(n.String())
	return nil
}
