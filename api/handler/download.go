package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/bannerscout/fetcher"
	"github.com/use-agent/bannerscout/models"
)

const defaultFilename = "banner.jpg"

// ImageFetcher retrieves an image, falling back to the proxy as needed.
type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Resource, error)
}

// Download returns a handler for GET /api/download?url=&filename=.
//
// The image bytes are returned as an attachment with the upstream
// content type.
func Download(f ImageFetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DownloadRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			respondError(c, models.NewValidationError("invalid query: "+err.Error()))
			return
		}
		if strings.TrimSpace(req.URL) == "" {
			respondError(c, models.NewValidationError("url is required"))
			return
		}
		if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			respondError(c, models.NewValidationError("invalid URL format"))
			return
		}

		img, err := f.Fetch(c.Request.Context(), req.URL)
		if err != nil {
			code := models.ErrCodeRetrievalFailed
			if errors.Is(err, fetcher.ErrProxyNotConfigured) {
				code = models.ErrCodeProxyNotConfigured
			}
			respondError(c, models.NewScrapeError(code, "Failed to download image: "+err.Error(), err))
			return
		}

		contentType := img.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}

		c.Header("Content-Disposition", `attachment; filename="`+sanitizeFilename(req.Filename)+`"`)
		c.Header("Cache-Control", "no-store")
		c.Header("X-Download-Strategy", img.Strategy)
		c.Data(http.StatusOK, contentType, img.Body)
	}
}

// sanitizeFilename strips characters that would break the
// Content-Disposition header.
func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\r', '\n', '\\':
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultFilename
	}
	return name
}
