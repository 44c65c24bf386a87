package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/use-agent/docscout/config"
	"github.com/use-agent/docscout/discovery"
	"github.com/use-agent/docscout/engine"
	"github.com/use-agent/docscout/llm"
	"github.com/use-agent/docscout/lookup"
	"github.com/use-agent/docscout/models"
	"github.com/use-agent/docscout/scraper"
)

// fetchers bundles the browser scraper and the plain HTTP engine.
type fetchers struct {
	pages *scraper.Scraper
	http  *engine.HTTPEngine
}

func (f *fetchers) Close() { f.pages.Close() }

// newFetchers launches the browser and, when enabled, installs the engine
// dispatcher that races plain HTTP against rod for non-browser fetches.
func newFetchers(cfg *config.Config) (*fetchers, error) {
	sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper)
	if err != nil {
		return nil, err
	}
	f := &fetchers{pages: sc, http: engine.NewHTTPEngine(cfg.Engine.HTTPTimeout)}

	if cfg.Engine.EnableMultiEngine {
		engines := []engine.Engine{
			f.http,
			engine.NewRodEngine(sc.DoScrapeRod, false),
			engine.NewRodEngine(sc.DoScrapeRod, true),
		}
		memory := engine.NewDomainMemory(24 * time.Hour)
		sc.SetDispatcher(engine.NewDispatcher(engines, cfg.Engine.EscalationDelays, memory))
		slog.Info("multi-engine dispatcher enabled",
			"engines", len(engines),
			"delays", cfg.Engine.EscalationDelays,
		)
	}
	return f, nil
}

// newLookup wires the query pipeline. The summarizer is left nil when no
// LLM key is configured.
func newLookup(cfg *config.Config, f *fetchers) *lookup.Service {
	svc := &lookup.Service{
		Finder: &discovery.Finder{
			HTTP:    f.http,
			Pages:   f.pages,
			Quota:   cfg.Query.MaxResults,
			Workers: cfg.Query.ValidateWorkers,
			PageOpts: models.FetchOptions{
				Timeout: int(cfg.Engine.HTTPTimeout / time.Second),
			},
		},
		Pages:    f.pages,
		MaxCards: cfg.Query.MaxCards,
	}

	sum, err := llm.NewSummarizer(llm.NewClient(&http.Client{Timeout: cfg.LLM.Timeout}), llmParams(cfg.LLM))
	if err != nil {
		slog.Warn("review summaries disabled", "error", err)
		return svc
	}
	svc.Summarizer = sum
	return svc
}

func llmParams(c config.LLMConfig) llm.Params {
	return llm.Params{
		APIKey:      c.APIKey,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
}
