package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/docscout/lookup"
	"github.com/use-agent/docscout/models"
)

// Listing returns a handler for POST /api/v1/listing.
func Listing(svc *lookup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.ListingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		req.Defaults()

		l, err := svc.Listing(c.Request.Context(), req.URL, req.Limit)
		timing := models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
		if err != nil {
			se := toScrapeError(err)
			c.JSON(mapErrorToStatus(se), models.ListingResponse{
				Success: false,
				URL:     req.URL,
				Doctors: []models.DoctorSummary{},
				Timing:  timing,
				Error:   se.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, models.ListingResponse{
			Success: true,
			URL:     l.URL,
			Doctors: l.Doctors,
			NextURL: l.NextURL,
			Timing:  timing,
		})
	}
}
