package engine

import (
	"context"
	"fmt"
)

// Renderer loads a page in a browser tab. The scraper package supplies it,
// which keeps this package free of browser imports.
type Renderer func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

// RodEngine adapts a Renderer to Engine. The stealth variant turns the
// stealth script on for every request; the plain one follows req.Stealth.
type RodEngine struct {
	render  Renderer
	stealth bool
}

func NewRodEngine(render Renderer, stealth bool) *RodEngine {
	return &RodEngine{render: render, stealth: stealth}
}

func (e *RodEngine) Name() string {
	if e.stealth {
		return "rod-stealth"
	}
	return "rod"
}

func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.render == nil {
		return nil, fmt.Errorf("%s: no renderer", e.Name())
	}
	r := *req
	r.Stealth = r.Stealth || e.stealth

	res, err := e.render(ctx, &r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name(), err)
	}
	if be := Challenge(req.URL, res); be != nil {
		return nil, fmt.Errorf("%s: %w", e.Name(), be)
	}
	res.EngineName = e.Name()
	return res, nil
}

// Challenge reports a rendered Cloudflare interstitial as a BlockedError.
// Other block kinds are left to the caller since a rendered page that
// mentions a captcha may still carry the listing.
func Challenge(url string, res *FetchResult) *BlockedError {
	if blocked, kind := DetectBlock(nil, res.HTML); blocked && kind == BlockCloudflare {
		return &BlockedError{URL: url, Kind: kind, StatusCode: res.StatusCode}
	}
	return nil
}
