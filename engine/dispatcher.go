package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Dispatcher races its engines. engines[i] joins the race delays[i] after
// it starts, so the cheap HTTP engine gets a head start over the browser.
type Dispatcher struct {
	engines []Engine
	delays  []time.Duration
	memory  *DomainMemory
}

// NewDispatcher builds a Dispatcher. Delays beyond len(delays) are zero and
// memory may be nil.
func NewDispatcher(engines []Engine, delays []time.Duration, memory *DomainMemory) *Dispatcher {
	d := &Dispatcher{engines: engines, delays: make([]time.Duration, len(engines)), memory: memory}
	copy(d.delays, delays)
	return d
}

// Dispatch returns the first successful fetch of req. When an engine is
// remembered for the host it is tried alone first; a failure there forgets
// it and falls back to the race.
func (d *Dispatcher) Dispatch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	host := hostOf(req.URL)

	if name := d.memory.Get(host); name != "" {
		if eng := d.lookup(name); eng != nil {
			res, err := eng.Fetch(ctx, req)
			if err == nil {
				return res, nil
			}
			slog.Info("remembered engine failed, racing", "host", host, "engine", name, "error", err)
			d.memory.Delete(host)
		}
	}

	res, err := d.race(ctx, req)
	if err != nil {
		return nil, err
	}
	d.memory.Set(host, res.EngineName)
	return res, nil
}

// Only fetches req with the named engine and skips the race.
func (d *Dispatcher) Only(ctx context.Context, name string, req *FetchRequest) (*FetchResult, error) {
	eng := d.lookup(name)
	if eng == nil {
		return nil, fmt.Errorf("dispatcher: no engine named %q", name)
	}
	return eng.Fetch(ctx, req)
}

// Has reports whether name is registered.
func (d *Dispatcher) Has(name string) bool { return d.lookup(name) != nil }

func (d *Dispatcher) lookup(name string) Engine {
	for _, e := range d.engines {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

type outcome struct {
	res *FetchResult
	err error
}

func (d *Dispatcher) race(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so losers never block after the winner returns.
	out := make(chan outcome, len(d.engines))
	for i, e := range d.engines {
		go d.lane(ctx, e, d.delays[i], req, out)
	}

	var errs []error
	for range d.engines {
		o := <-out
		if o.err == nil {
			slog.Debug("engine won race", "engine", o.res.EngineName, "url", req.URL)
			return o.res, nil
		}
		errs = append(errs, o.err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("dispatcher: no engines for %s", req.URL)
	}
	return nil, errors.Join(errs...)
}

// lane runs one engine after its delay and always sends exactly one outcome.
func (d *Dispatcher) lane(ctx context.Context, e Engine, delay time.Duration, req *FetchRequest, out chan<- outcome) {
	if delay > 0 {
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			out <- outcome{err: ctx.Err()}
			return
		case <-t.C:
		}
	}
	if err := ctx.Err(); err != nil {
		out <- outcome{err: err}
		return
	}
	res, err := e.Fetch(ctx, req)
	if err != nil {
		slog.Debug("engine failed", "engine", e.Name(), "url", req.URL, "error", err)
	}
	out <- outcome{res: res, err: err}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
