package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/docscout/lookup"
	"github.com/use-agent/docscout/models"
)

// Reviews returns a handler for POST /api/v1/reviews.
//
// Asking for a summary when no LLM credential is configured is a 503 rather
// than a silent downgrade to the basic summary.
func Reviews(svc *lookup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.ReviewsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		req.Defaults()

		fail := func(err error) {
			se := toScrapeError(err)
			c.JSON(mapErrorToStatus(se), models.ReviewsResponse{
				Success: false,
				Timing:  models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
				Error:   se.ToDetail(),
			})
		}

		if *req.Summarize && svc.Summarizer == nil {
			fail(models.NewScrapeError(models.ErrCodeMissingCredential,
				"review summaries need GROQ_API_KEY; retry with \"summarize\": false", nil))
			return
		}

		rs, err := svc.Reviews(c.Request.Context(), req.URL, req.Count, *req.Summarize)
		if err != nil {
			fail(err)
			return
		}

		c.JSON(http.StatusOK, models.ReviewsResponse{
			Success: true,
			Summary: rs,
			Timing:  models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
		})
	}
}
