package discovery

import (
	"context"
	"log/slog"
	"strings"

	"github.com/use-agent/docscout/models"
	"golang.org/x/sync/errgroup"
)

// contentWindow is how many runes of rendered text validation inspects.
const contentWindow = 5000

// doctorIndicators are tokens a doctor listing page carries; at least
// minIndicators must be present.
var doctorIndicators = []string{"dr.", "doctor", "mbbs", "fcps", "experience", "reviews", "rating"}

const minIndicators = 2

// Rejected reports URLs that are never listings: profile pages and the
// bare "/dr/" home.
func Rejected(u string) bool {
	lower := strings.ToLower(u)
	return strings.Contains(lower, "/profile/") || strings.HasSuffix(lower, "/dr/")
}

// Validate decides whether a fetched candidate is a listing matching intent.
func Validate(u string, page *models.Page, intent models.QueryIntent) bool {
	if Rejected(u) || page == nil || !page.Success {
		return false
	}
	content := strings.ToLower(page.Text)
	if r := []rune(content); len(r) > contentWindow {
		content = string(r[:contentWindow])
	}

	if intent.Specialty != "" && !strings.Contains(content, intent.Specialty) {
		return false
	}
	if intent.City != "" && !strings.Contains(content, intent.City) {
		return false
	}
	n := 0
	for _, ind := range doctorIndicators {
		if strings.Contains(content, ind) {
			n++
		}
	}
	return n >= minIndicators
}

// PageFetcher loads a page for validation.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string, opts models.FetchOptions) *models.Page
}

// ValidateAll fetches and validates urls with at most workers fetches in
// flight. The valid URLs are returned in input order.
func ValidateAll(ctx context.Context, f PageFetcher, urls []string, intent models.QueryIntent, opts models.FetchOptions, workers int) []string {
	if workers < 1 {
		workers = 1
	}
	ok := make([]bool, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, u := range urls {
		if Rejected(u) {
			slog.Info("candidate skipped", "url", u, "reason", "profile or home page")
			continue
		}
		g.Go(func() error {
			page := f.FetchPage(gctx, u, opts)
			ok[i] = Validate(u, page, intent)
			slog.Info("candidate validated", "url", u, "valid", ok[i])
			return nil
		})
	}
	_ = g.Wait()

	var out []string
	for i, u := range urls {
		if ok[i] {
			out = append(out, u)
		}
	}
	return out
}
