package classifier

import (
	"regexp"

	"github.com/use-agent/bannerscout/models"
)

// carouselPattern matches class names of common slider libraries on an
// image or its nearest ancestors.
var carouselPattern = regexp.MustCompile(`(?i)slider|carousel|swiper|slick|owl|splide|glide|flickity|banner|promo`)

// RenderedImage is an image as measured in a live browser page.
type RenderedImage struct {
	URL         string  `json:"src"`
	Alt         string  `json:"alt"`
	PixelWidth  float64 `json:"width"`
	PixelHeight float64 `json:"height"`
	Class       string  `json:"class"`
	ParentClass string  `json:"parentClass"`
	ParentID    string  `json:"parentId"`
	Visible     bool    `json:"visible"`
	Background  bool    `json:"background"`
}

func (r RenderedImage) Width() float64         { return r.PixelWidth }
func (r RenderedImage) Height() float64        { return r.PixelHeight }
func (r RenderedImage) Src() string            { return r.URL }
func (r RenderedImage) ContainerClass() string { return r.ParentClass }
func (r RenderedImage) ContainerID() string    { return r.ParentID }

// InCarousel reports whether the image sits inside a slider container.
// Hidden slides of a carousel are still reported.
func (r RenderedImage) InCarousel() bool {
	return carouselPattern.MatchString(r.Class + " " + r.ParentClass)
}

// ClassifyRendered filters browser-measured images down to banners.
func ClassifyRendered(images []RenderedImage, pageURL string) ([]models.BannerRef, error) {
	origin, err := originOf(pageURL)
	if err != nil {
		return nil, err
	}

	banners := []models.BannerRef{}
	for _, img := range images {
		src := resolve(origin, img.URL)
		if src == "" {
			continue
		}

		if img.Background {
			if !img.Visible || !IsBanner(img) {
				continue
			}
			banners = append(banners, models.BannerRef{
				Src:    src,
				Alt:    "Background banner",
				Width:  models.DimensionOf(img.PixelWidth),
				Height: models.DimensionOf(img.PixelHeight),
				Type:   models.BannerTypeBackground,
			})
			continue
		}

		carousel := img.InCarousel()
		if !img.Visible && !carousel {
			continue
		}
		if !carousel && !IsBanner(img) {
			continue
		}

		ref := models.BannerRef{
			Src:    src,
			Alt:    img.Alt,
			Width:  models.DimensionOf(img.PixelWidth),
			Height: models.DimensionOf(img.PixelHeight),
			Type:   models.BannerTypeImage,
		}
		if ref.Alt == "" {
			ref.Alt = "Banner image"
		}
		if carousel {
			ref.Type = models.BannerTypeCarousel
		}
		banners = append(banners, ref)
	}

	return Dedupe(nil, banners), nil
}
