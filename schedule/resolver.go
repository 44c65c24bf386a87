package schedule

import (
	"context"
	"log/slog"

	"github.com/use-agent/docscout/cache"
	"github.com/use-agent/docscout/models"
)

// Fetcher loads a page. Failures come back as an unsuccessful Page.
type Fetcher interface {
	FetchPage(ctx context.Context, url string, opts models.FetchOptions) *models.Page
}

// Resolver fetches and caches profile schedules for the duration of one
// city. Misses are cached too, so each profile is fetched at most once per
// city. Call Reset at every city boundary.
type Resolver struct {
	fetcher Fetcher
	opts    models.FetchOptions
	cache   *cache.Cache[ProfileSchedule]
}

// NewResolver creates a Resolver fetching profiles with opts.
func NewResolver(f Fetcher, opts models.FetchOptions) *Resolver {
	return &Resolver{
		fetcher: f,
		opts:    opts,
		cache:   cache.New[ProfileSchedule](0, 0),
	}
}

// Resolve returns the schedule of the profile at profileURL, or nil when the
// profile is unreachable or lists no timings.
func (r *Resolver) Resolve(ctx context.Context, profileURL string) ProfileSchedule {
	if profileURL == "" {
		return nil
	}
	key := cache.Key(profileURL)
	if s, ok := r.cache.Get(key); ok {
		return s
	}

	var sched ProfileSchedule
	page := r.fetcher.FetchPage(ctx, profileURL, r.opts)
	if page == nil || !page.Success {
		slog.Warn("profile fetch failed", "url", profileURL, "error", pageErr(page))
	} else if s, err := ParseProfile(page.HTML); err != nil {
		slog.Warn("profile parse failed", "url", profileURL, "error", err)
	} else {
		sched = s
	}

	r.cache.Set(key, sched)
	return sched
}

// Reset forgets every cached profile.
func (r *Resolver) Reset() { r.cache.Reset() }

// Cached returns how many profiles are remembered.
func (r *Resolver) Cached() int { return r.cache.Len() }

func pageErr(p *models.Page) string {
	if p == nil {
		return "no page"
	}
	return p.Error
}
