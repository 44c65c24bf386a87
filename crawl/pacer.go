package crawl

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// pacer spaces listing fetches: a limiter guarantees the minimum gap and a
// random extra delay up to hi-lo is added on top.
type pacer struct {
	limiter *rate.Limiter
	spread  time.Duration
	jitter  func(time.Duration) time.Duration
}

func newPacer(lo, hi time.Duration) *pacer {
	lim := rate.NewLimiter(rate.Inf, 1)
	if lo > 0 {
		lim = rate.NewLimiter(rate.Every(lo), 1)
	}
	spread := hi - lo
	if spread < 0 {
		spread = 0
	}
	return &pacer{
		limiter: lim,
		spread:  spread,
		jitter: func(d time.Duration) time.Duration {
			return time.Duration(rand.Int64N(int64(d) + 1))
		},
	}
}

// Wait blocks until the next fetch may start or ctx is done.
func (p *pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	if p.spread <= 0 {
		return nil
	}
	t := time.NewTimer(p.jitter(p.spread))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
