package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/bannerscout/config"
	"github.com/use-agent/bannerscout/models"
)

// SessionCounter reports how many sessions are held.
type SessionCounter interface {
	Count() int
}

// WorkerGauge reports how many workers are executing.
type WorkerGauge interface {
	Running() int
}

// Health returns a handler for GET /api/health.
func Health(sessions SessionCounter, workers WorkerGauge, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         "ok",
			ActiveSessions: sessions.Count(),
			RunningWorkers: workers.Running(),
			Version:        config.Version,
			Uptime:         time.Since(startTime).Round(time.Second).String(),
			Timestamp:      time.Now().UTC(),
		})
	}
}
