package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/bannerscout/models"
)

// Locations returns a handler for GET /api/locations.
func Locations() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.Locations())
	}
}
