package discovery

import (
	"context"
	"html"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/use-agent/docscout/engine"
)

// Provider is a search-result page and the patterns that pull links out of
// it. Each pattern's first group is the link.
type Provider struct {
	Name     string
	URL      func(query string) string
	Patterns []*regexp.Regexp
}

var anyTargetLink = regexp.MustCompile(`(?i)href="(https?://[^"]*marham\.pk[^"]*)"`)

// DefaultProviders returns the providers in priority order.
func DefaultProviders() []Provider {
	return []Provider{
		{
			Name: "DuckDuckGo HTML",
			URL: func(q string) string {
				return "https://duckduckgo.com/html/?q=site:marham.pk+" + plus(q)
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)<a[^>]+class="result__a"[^>]*href="([^"]+)"`),
				anyTargetLink,
			},
		},
		{
			Name: "DuckDuckGo Lite",
			URL: func(q string) string {
				return "https://lite.duckduckgo.com/lite/?q=site:marham.pk+" + plus(q)
			},
			Patterns: []*regexp.Regexp{anyTargetLink},
		},
		{
			Name: "Bing",
			URL: func(q string) string {
				return "https://www.bing.com/search?q=site%3Amarham.pk+" + plus(q)
			},
			Patterns: []*regexp.Regexp{anyTargetLink},
		},
	}
}

func plus(q string) string { return strings.ReplaceAll(strings.TrimSpace(q), " ", "+") }

// Links returns every link the provider's patterns find in body, in pattern
// order.
func (p Provider) Links(body string) []string {
	var out []string
	for _, re := range p.Patterns {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			out = append(out, m[1])
		}
	}
	return out
}

// DecodeRedirect unwraps a DuckDuckGo "/l/?uddg=" redirect. Anything else
// is returned unchanged apart from a scheme added to "//" links.
func DecodeRedirect(u string) string {
	u = html.UnescapeString(strings.TrimSpace(u))
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	pu, err := url.Parse(u)
	if err != nil {
		return u
	}
	if strings.Contains(pu.Host, "duckduckgo.com") && strings.HasPrefix(pu.Path, "/l/") {
		if real := pu.Query().Get("uddg"); real != "" {
			return real
		}
	}
	return u
}

// profileMarkers identify individual doctor pages, which are not listings.
var profileMarkers = []string{"/dr-", "/prof-", "/asst-prof"}

// FilterListingURLs decodes, strips and filters raw links to directory
// listing pages, deduplicated case-insensitively in input order.
func FilterListingURLs(raw []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range raw {
		u := DecodeRedirect(r)
		u, _, _ = strings.Cut(u, "#")
		u, _, _ = strings.Cut(u, "?")
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		parsed, err := url.Parse(u)
		if err != nil || !strings.Contains(parsed.Host, "marham.pk") {
			continue
		}
		if !strings.Contains(u, "/doctors/") || containsAny(u, profileMarkers) {
			continue
		}
		key := strings.ToLower(u)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	return out
}

// searchHeaders are sent to every provider.
var searchHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Cache-Control":   "no-cache",
}

// Fetcher performs a plain page fetch. *engine.HTTPEngine satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error)
}

// Search queries providers in order and returns up to quota listing URLs. A
// provider that fails is logged and the next one is tried; later providers
// are only asked while the quota is unmet.
func Search(ctx context.Context, f Fetcher, providers []Provider, query string, quota int) []string {
	var aggregated []string
	for _, p := range providers {
		if ctx.Err() != nil {
			break
		}
		res, err := f.Fetch(ctx, &engine.FetchRequest{URL: p.URL(query), Headers: searchHeaders})
		if err != nil {
			slog.Warn("search provider failed", "provider", p.Name, "error", err)
			continue
		}
		found := p.Links(res.HTML)
		filtered := FilterListingURLs(found)
		slog.Info("search provider done", "provider", p.Name, "raw", len(found), "listings", len(filtered))

		aggregated = append(aggregated, filtered...)
		if len(aggregated) >= quota {
			break
		}
	}

	seen := make(map[string]struct{}, len(aggregated))
	out := make([]string, 0, quota)
	for _, u := range aggregated {
		if len(out) >= quota {
			break
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
