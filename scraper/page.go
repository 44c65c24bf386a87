package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/docscout/engine"
	"github.com/use-agent/docscout/models"
	"github.com/ysmood/gson"
)

// DoScrapeRod renders req.URL in a pooled tab. It is the callback behind
// engine.RodEngine and never goes through the dispatcher.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Timeout guard      hard deadline on the whole operation
//  2. Acquire page       borrow a tab from the pool
//  3. DEFER cleanup      about:blank, then return the tab to the pool
//  4. Stealth + headers  installed before navigation
//  5. Hijack mount       block heavy resources and trackers
//  6. Context binding    the deadline reaches every rod call
//  7. Navigate
//  8. Settle             DOM stable, optional selector, optional delay
//  9. Extract            status, HTML, title, final URL
func (s *Scraper) DoScrapeRod(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	// ── 1. Timeout guard ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(ctx, s.clampTimeout(req.Timeout))
	defer cancel()

	// ── 2. Acquire page from pool ─────────────────────────────────────
	s.activePages.Add(1)
	defer s.activePages.Add(-1)

	page, acquireErr := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to acquire page from pool", acquireErr)
	}

	// ── 3. Cleanup uses the page without the request context so it still
	// runs after the deadline has passed.
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		s.pagePool.Put(page)
	}()

	// ── 4. Stealth injection and extra headers ────────────────────────
	if req.Stealth || s.scraperCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	extraHeaders := make(map[string]string, len(req.Headers)+1)
	if _, hasReferer := req.Headers["Referer"]; !hasReferer {
		if u, parseErr := url.Parse(req.URL); parseErr == nil {
			extraHeaders["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
		}
	}
	for k, v := range req.Headers {
		extraHeaders[k] = v
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(extraHeaders)}.Call(page)

	// ── 5. Hijack router ──────────────────────────────────────────────
	router := setupHijack(page, s.scraperCfg.BlockedResourceTypes, s.scraperCfg.BlockTrackers)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	// ── 6. Bind request context to page ───────────────────────────────
	p := page.Context(ctx)

	// ── 7. Navigate ───────────────────────────────────────────────────
	if err := p.Navigate(req.URL); err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}

	// ── 8. Settle ─────────────────────────────────────────────────────
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}
	if req.WaitSelector != "" {
		s.waitSelector(p, req.WaitSelector)
	}
	if req.PostLoadDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, categorizeError(ctx.Err(), "post-load delay interrupted")
		case <-time.After(req.PostLoadDelay):
		}
	}

	// ── 9. Extract ────────────────────────────────────────────────────
	statusCode := 0
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); err == nil {
		statusCode = res.Value.Int()
	}

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return nil, categorizeError(htmlErr, "failed to extract page HTML")
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &engine.FetchResult{
		HTML:       rawHTML,
		Title:      evalStringOrEmpty(p, `() => document.title`),
		StatusCode: statusCode,
		FinalURL:   finalURL,
		EngineName: "rod",
	}, nil
}

// waitSelector waits for selector to appear, bounded by the configured
// selector timeout. A timeout is not an error: the page is read as is.
func (s *Scraper) waitSelector(p *rod.Page, selector string) {
	wait := s.scraperCfg.WaitSelectorTimeout
	if wait <= 0 {
		wait = 8 * time.Second
	}
	if _, err := p.Timeout(wait).Element(selector); err != nil {
		slog.Debug("wait selector not found, proceeding", "selector", selector, "error", err)
	}
}

// clampTimeout applies the default and maximum page timeouts.
func (s *Scraper) clampTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		d = s.scraperCfg.DefaultTimeout
	}
	if s.scraperCfg.MaxTimeout > 0 && d > s.scraperCfg.MaxTimeout {
		d = s.scraperCfg.MaxTimeout
	}
	if d <= 0 {
		d = 30 * time.Second
	}
	return d
}

// evalStringOrEmpty evaluates a JS expression and returns its string
// result, or "" on any error.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to proto.NetworkHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors.
func categorizeError(err error, msg string) *models.ScrapeError {
	var blocked *engine.BlockedError
	switch {
	case errors.As(err, &blocked):
		return models.NewScrapeError(models.ErrCodeBlocked, "bot wall in place of the page", err)
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
