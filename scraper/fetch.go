package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/use-agent/docscout/engine"
	"github.com/use-agent/docscout/models"
)

// FetchPage loads url and returns its markup and rendered text. Failures are
// reported in the returned Page, never as a panic or error, so callers can
// skip the unit and continue.
//
// Fetches that need the browser (opts.Browser or a wait selector) go to rod
// directly; the rest race through the dispatcher when one is installed.
func (s *Scraper) FetchPage(ctx context.Context, url string, opts models.FetchOptions) *models.Page {
	start := time.Now()
	req := &engine.FetchRequest{
		URL:           url,
		Timeout:       s.clampTimeout(time.Duration(opts.Timeout) * time.Second),
		Stealth:       s.scraperCfg.Stealth,
		WaitSelector:  opts.WaitSelector,
		PostLoadDelay: time.Duration(opts.PostLoadDelay) * time.Millisecond,
	}

	res, err := s.fetch(ctx, req, opts.Browser || opts.WaitSelector != "")
	if err != nil {
		slog.Warn("page fetch failed", "url", url, "code", models.CodeOf(err), "error", err)
		return &models.Page{URL: url, Error: err.Error()}
	}

	page := &models.Page{URL: res.FinalURL, Success: true, HTML: res.HTML}
	if page.URL == "" {
		page.URL = url
	}
	md, mdErr := s.renderer.Markdown(res.HTML, page.URL)
	if mdErr != nil {
		slog.Debug("markdown render failed", "url", url, "error", mdErr)
	}
	page.Text = md

	slog.Debug("page fetched", "url", url, "engine", res.EngineName,
		"status", res.StatusCode, "ms", time.Since(start).Milliseconds())
	return page
}

func (s *Scraper) fetch(ctx context.Context, req *engine.FetchRequest, browser bool) (*engine.FetchResult, error) {
	switch {
	case s.dispatcher == nil:
		return s.rod(ctx, req)
	case browser:
		for _, name := range []string{"rod-stealth", "rod"} {
			if s.dispatcher.Has(name) {
				return wrap(s.dispatcher.Only(ctx, name, req))
			}
		}
		return s.rod(ctx, req)
	default:
		dctx, cancel := context.WithTimeout(ctx, req.Timeout)
		defer cancel()
		return wrap(s.dispatcher.Dispatch(dctx, req))
	}
}

func (s *Scraper) rod(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	if s.browser == nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "browser not started", nil)
	}
	res, err := s.DoScrapeRod(ctx, req)
	if err != nil {
		return nil, err
	}
	if be := engine.Challenge(req.URL, res); be != nil {
		return nil, categorizeError(be, "")
	}
	return res, nil
}

// wrap gives untyped engine errors a fetch error code.
func wrap(res *engine.FetchResult, err error) (*engine.FetchResult, error) {
	if err == nil {
		return res, nil
	}
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return nil, err
	}
	var blocked *engine.BlockedError
	if errors.As(err, &blocked) {
		return nil, categorizeError(err, "")
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return nil, categorizeError(err, "fetch timed out")
	}
	return nil, models.NewScrapeError(models.ErrCodeFetch, "all engines failed", err)
}
