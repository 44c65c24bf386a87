// Package crawl runs the city-enumeration pipeline: discover every city on
// the directory index, page through each city's listing, attach profile
// schedules to every offer and append the rows to the store one city at a
// time. Cities already present in the store are skipped.
package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/use-agent/docscout/config"
	"github.com/use-agent/docscout/extract"
	"github.com/use-agent/docscout/models"
	"github.com/use-agent/docscout/schedule"
	"github.com/use-agent/docscout/store"
	"github.com/use-agent/docscout/webhook"
)

// Selectors waited for after navigation.
const (
	indexWait   = "a[href*='/doctors/']"
	listingWait = "div.row.shadow-card"
	profileWait = "section.p-xy"

	indexSettle = 2500 * time.Millisecond
)

// Fetcher loads a page. Failures come back as an unsuccessful Page.
type Fetcher interface {
	FetchPage(ctx context.Context, url string, opts models.FetchOptions) *models.Page
}

// Summary reports what one run did.
type Summary struct {
	RunID     string `json:"run_id"`
	Cities    int    `json:"cities"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Completed int    `json:"completed"`
	Rows      int    `json:"rows"`
}

// Pipeline is the crawl pipeline. Create with New.
type Pipeline struct {
	fetcher  Fetcher
	store    store.Store
	notifier *webhook.Notifier
	cfg      config.CrawlConfig
	pacer    *pacer
	resolver *schedule.Resolver
}

// New wires a pipeline. notifier may be nil.
func New(f Fetcher, s store.Store, n *webhook.Notifier, cfg config.CrawlConfig) *Pipeline {
	if cfg.MaxPagesPerCity <= 0 {
		cfg.MaxPagesPerCity = 8
	}
	if cfg.ProfileWorkers <= 0 {
		cfg.ProfileWorkers = 1
	}
	return &Pipeline{
		fetcher:  f,
		store:    s,
		notifier: n,
		cfg:      cfg,
		pacer:    newPacer(cfg.DelayMin, cfg.DelayMax),
		resolver: schedule.NewResolver(f, models.FetchOptions{
			WaitSelector:  profileWait,
			PostLoadDelay: int(cfg.ProfilePostLoad / time.Millisecond),
			Browser:       true,
		}),
	}
}

// Run crawls every city not yet in the store. Only a failure to discover
// any city, a store read failure or context cancellation end the run with
// an error; a failing city is logged and left for the next run.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString()}
	start := time.Now()

	if err := p.run(ctx, sum); err != nil {
		slog.Error("crawl failed", "run_id", sum.RunID, "error", err)
		p.notifier.Notify(webhook.NewEvent(webhook.RunFailed, sum.RunID, map[string]any{
			"error":   err.Error(),
			"code":    models.CodeOf(err),
			"summary": sum,
		}))
		return sum, err
	}

	slog.Info("crawl completed",
		"run_id", sum.RunID,
		"cities", sum.Cities,
		"completed", sum.Completed,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"rows", sum.Rows,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	p.notifier.Notify(webhook.NewEvent(webhook.RunCompleted, sum.RunID, sum))
	return sum, nil
}

func (p *Pipeline) run(ctx context.Context, sum *Summary) error {
	// ── 1. Discover cities ──
	cities, err := p.discover(ctx)
	if err != nil {
		return err
	}
	if p.cfg.CityLimit > 0 && len(cities) > p.cfg.CityLimit {
		cities = cities[:p.cfg.CityLimit]
	}
	sum.Cities = len(cities)

	// ── 2. Resume set ──
	done, err := p.store.Cities(ctx)
	if err != nil {
		return err
	}
	slog.Info("cities discovered", "run_id", sum.RunID, "cities", len(cities), "already_scraped", len(done))

	// ── 3. City loop ──
	for _, c := range cities {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := done[c.Name]; ok {
			slog.Info("skipping scraped city", "city", c.Name)
			sum.Skipped++
			continue
		}

		slog.Info("processing city", "city", c.Name, "url", c.URL)
		rows, err := p.City(ctx, c)
		if err == nil && len(rows) > 0 {
			err = p.store.Append(ctx, rows)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("city failed", "city", c.Name, "error", err)
			sum.Failed++
			continue
		}

		sum.Completed++
		sum.Rows += len(rows)
		if len(rows) == 0 {
			slog.Info("no rows for city", "city", c.Name)
		} else {
			slog.Info("city saved", "city", c.Name, "rows", len(rows))
		}
		p.notifier.Notify(webhook.NewEvent(webhook.CityCompleted, sum.RunID, map[string]any{
			"city": c.Name,
			"url":  c.URL,
			"rows": len(rows),
		}))
	}
	return nil
}

func (p *Pipeline) discover(ctx context.Context) ([]models.City, error) {
	indexURL := p.cfg.BaseURL + p.cfg.IndexPath
	page := p.fetcher.FetchPage(ctx, indexURL, models.FetchOptions{
		WaitSelector:  indexWait,
		PostLoadDelay: int(indexSettle / time.Millisecond),
		Browser:       true,
	})
	if page == nil || !page.Success {
		msg := "directory index unreachable"
		if page != nil && page.Error != "" {
			msg += ": " + page.Error
		}
		return nil, models.NewScrapeError(models.ErrCodeNoCities, msg, nil)
	}

	cities, err := extract.DiscoverCities(page.HTML, indexURL)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeNoCities, "directory index unreadable", err)
	}
	if len(cities) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeNoCities,
			"no cities discovered; the index may be behind a bot wall (try DOCSCOUT_HEADLESS=false)", nil)
	}
	return cities, nil
}

// City pages through one city's listing and returns its rows. Pagination
// stops at an empty or unreachable page, a missing next link, a next link
// pointing at the current page, or the per-city page cap. Profile schedules
// are cached for the city only.
func (p *Pipeline) City(ctx context.Context, c models.City) ([]models.Row, error) {
	p.resolver.Reset()
	defer p.resolver.Reset()

	var all []models.Row
	current := c.URL
	pages := 0

	for ; pages < p.cfg.MaxPagesPerCity && current != ""; pages++ {
		if err := p.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		listing, err := p.listing(ctx, current, c.Name)
		if err != nil {
			slog.Warn("listing page skipped", "city", c.Name, "url", current, "error", err)
			break
		}
		rows, err := p.rows(ctx, listing, c.URL)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}
		all = append(all, rows...)
		slog.Info("listing page done", "city", c.Name, "page", pages+1, "rows", len(rows))

		if listing.NextURL == current {
			break
		}
		current = listing.NextURL
	}
	slog.Debug("city paged", "city", c.Name, "pages", pages, "rows", len(all), "profiles", p.resolver.Cached())
	return all, nil
}

func (p *Pipeline) listing(ctx context.Context, url, city string) (*models.ListingPage, error) {
	page := p.fetcher.FetchPage(ctx, url, models.FetchOptions{
		WaitSelector:  listingWait,
		PostLoadDelay: int(p.cfg.ListingPostLoad / time.Millisecond),
		Browser:       true,
	})
	if page == nil || !page.Success {
		msg := "fetch failed"
		if page != nil {
			msg = page.Error
		}
		return nil, models.NewScrapeError(models.ErrCodeFetch, msg, nil)
	}
	return extract.ParseListing(page.HTML, extract.Context{
		PageURL:     url,
		DefaultCity: city,
	})
}

// rows resolves the profile schedules of every card on the page and
// flattens the cards. With more than one worker the profiles are fetched
// concurrently first; rows are still built in card order.
func (p *Pipeline) rows(ctx context.Context, listing *models.ListingPage, sourceURL string) ([]models.Row, error) {
	if p.cfg.ProfileWorkers > 1 {
		if err := p.prefetch(ctx, listing.Cards); err != nil {
			return nil, err
		}
	}
	var out []models.Row
	for _, card := range listing.Cards {
		var sched schedule.ProfileSchedule
		if card.ProfileURL != "" && len(card.Offers) > 0 {
			sched = p.resolver.Resolve(ctx, card.ProfileURL)
		}
		out = append(out, extract.Rows(card, sched, sourceURL)...)
	}
	return out, nil
}

func (p *Pipeline) prefetch(ctx context.Context, cards []models.Card) error {
	urls := make([]string, 0, len(cards))
	seen := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		if c.ProfileURL == "" || len(c.Offers) == 0 {
			continue
		}
		if _, dup := seen[c.ProfileURL]; dup {
			continue
		}
		seen[c.ProfileURL] = struct{}{}
		urls = append(urls, c.ProfileURL)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.ProfileWorkers)
	for _, u := range urls {
		g.Go(func() error {
			p.resolver.Resolve(gctx, u)
			return gctx.Err()
		})
	}
	return g.Wait()
}
