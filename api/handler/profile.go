package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/docscout/lookup"
	"github.com/use-agent/docscout/models"
)

// Profile returns a handler for POST /api/v1/profile.
func Profile(svc *lookup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.ProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		p, err := svc.Profile(c.Request.Context(), req.URL)
		timing := models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
		if err != nil {
			se := toScrapeError(err)
			c.JSON(mapErrorToStatus(se), models.ProfileResponse{
				Success: false,
				Timing:  timing,
				Error:   se.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, models.ProfileResponse{
			Success: true,
			Profile: p,
			Timing:  timing,
		})
	}
}
