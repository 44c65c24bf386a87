package discovery

import (
	"context"

	"github.com/use-agent/docscout/models"
)

// Finder runs the whole discovery step: search, validate, rank.
type Finder struct {
	HTTP      Fetcher     // search provider fetches
	Pages     PageFetcher // candidate validation fetches
	Providers []Provider
	Quota     int // candidate quota across providers
	Workers   int // concurrent validation fetches
	PageOpts  models.FetchOptions
}

// Find returns ranked, validated listing candidates for intent. It fails
// with NO_CANDIDATES when nothing survives validation.
func (f *Finder) Find(ctx context.Context, intent models.QueryIntent) ([]models.Candidate, error) {
	providers := f.Providers
	if providers == nil {
		providers = DefaultProviders()
	}
	quota := f.Quota
	if quota <= 0 {
		quota = 8
	}

	links := Search(ctx, f.HTTP, providers, intent.Query, quota)
	if len(links) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeNoCandidates, "no directory links found by any search provider", nil)
	}

	valid := ValidateAll(ctx, f.Pages, links, intent, f.PageOpts, f.Workers)
	if len(valid) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeNoCandidates, "no search result passed validation", nil)
	}
	return Rank(valid, intent), nil
}
