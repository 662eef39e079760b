package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/bannerscout/api/handler"
	"github.com/use-agent/bannerscout/api/middleware"
	"github.com/use-agent/bannerscout/config"
)

// streamInterval is how often a websocket stream re-reads its session.
var streamInterval = 250 * time.Millisecond

// Services are the components the HTTP layer talks to.
type Services struct {
	Scrapes  handler.ScrapeStarter
	Sessions interface {
		handler.SessionReader
		handler.SessionCounter
	}
	Images  handler.ImageFetcher
	Workers handler.WorkerGauge
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:   Recovery → Logger
//	Scrapes:  Auth (if enabled)
//	Starts:   Auth (if enabled) → RateLimit
//
// Health and locations are outside auth so probes and pickers always work.
func NewRouter(cfg *config.Config, svc Services, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	api := r.Group("/api")

	api.GET("/health", handler.Health(svc.Sessions, svc.Workers, startTime))
	api.GET("/locations", handler.Locations())

	protected := api.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}

	// Polling and streaming are not rate limited.
	protected.GET("/scrape/:id", handler.GetScrape(svc.Sessions))
	protected.GET("/scrape/:id/stream", handler.StreamScrape(svc.Sessions, streamInterval))

	limited := protected.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimit))
	limited.POST("/scrape", handler.StartScrape(svc.Scrapes))
	limited.GET("/download", handler.Download(svc.Images))

	return r
}
