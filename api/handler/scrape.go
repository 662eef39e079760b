package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/bannerscout/models"
	"github.com/use-agent/bannerscout/session"
)

// ScrapeStarter launches a background scrape.
type ScrapeStarter interface {
	Start(req models.ScrapeRequest) (string, error)
}

// SessionReader looks up sessions.
type SessionReader interface {
	Get(id string) (session.Snapshot, error)
}

// StartScrape returns a handler for POST /api/scrape.
//
// The scrape runs in the background; the client polls GET /api/scrape/:id
// with the returned session id.
func StartScrape(st ScrapeStarter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, models.NewValidationError("invalid request body: "+err.Error()))
			return
		}

		id, err := st.Start(req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusAccepted, models.StartResponse{
			Success:   true,
			SessionID: id,
			Message:   "Scraping started",
		})
	}
}

// GetScrape returns a handler for GET /api/scrape/:id.
func GetScrape(sr SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := sr.Get(c.Param("id"))
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				respondError(c, models.NewScrapeError(models.ErrCodeNotFound, "session not found", err))
				return
			}
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, snap.Response())
	}
}
