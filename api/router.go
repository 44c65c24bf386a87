// Package api exposes the query pipeline over HTTP.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/docscout/api/handler"
	"github.com/use-agent/docscout/api/middleware"
	"github.com/use-agent/docscout/config"
	"github.com/use-agent/docscout/lookup"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health sits outside auth so monitoring probes always work. ctx bounds the
// rate limiter's background sweep.
func NewRouter(ctx context.Context, pool handler.PoolReporter, svc *lookup.Service, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(pool, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	protected.POST("/search", handler.Search(svc))
	protected.POST("/listing", handler.Listing(svc))
	protected.POST("/profile", handler.Profile(svc))
	protected.POST("/reviews", handler.Reviews(svc))

	return r
}
