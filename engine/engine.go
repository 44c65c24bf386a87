// Package engine fetches raw pages. A Dispatcher races a plain HTTP client
// against browser renderers and remembers which one works for each host.
package engine

import (
	"context"
	"time"
)

// Engine fetches one page.
type Engine interface {
	// Name is "http", "rod" or "rod-stealth".
	Name() string
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest describes one page load.
type FetchRequest struct {
	URL string
	// Headers are merged over the engine's defaults.
	Headers map[string]string
	// Timeout of zero leaves the engine's own limit in place.
	Timeout time.Duration
	Stealth bool

	// WaitSelector and PostLoadDelay only matter to browser engines.
	WaitSelector  string
	PostLoadDelay time.Duration
}

// FetchResult is a loaded page. EngineName is set by the engine that
// produced it.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
}
