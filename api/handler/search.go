package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/docscout/lookup"
	"github.com/use-agent/docscout/models"
)

// Search returns a handler for POST /api/v1/search.
//
// Parses the query into specialty, area and city, collects listing URLs from
// the search providers, validates and ranks them. An empty ranked list is a
// 404 so callers can fall back to a hand-entered URL.
func Search(svc *lookup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		req.Defaults()

		intent, cands, err := svc.Search(c.Request.Context(), req.Query, req.MaxResults)
		timing := models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
		if err != nil {
			se := toScrapeError(err)
			c.JSON(mapErrorToStatus(se), models.SearchResponse{
				Success:    false,
				Intent:     intent,
				Candidates: []models.Candidate{},
				Timing:     timing,
				Error:      se.ToDetail(),
			})
			return
		}
		if cands == nil {
			cands = []models.Candidate{}
		}

		c.JSON(http.StatusOK, models.SearchResponse{
			Success:    true,
			Intent:     intent,
			Candidates: cands,
			Timing:     timing,
		})
	}
}
