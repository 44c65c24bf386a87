package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/docscout/cleaner"
	"github.com/use-agent/docscout/config"
	"github.com/use-agent/docscout/engine"
	"github.com/use-agent/docscout/models"
)

type stubEngine struct {
	name string
	html string
	err  error
	last *engine.FetchRequest
}

func (e *stubEngine) Name() string { return e.name }

func (e *stubEngine) Fetch(_ context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	e.last = req
	if e.err != nil {
		return nil, e.err
	}
	return &engine.FetchResult{HTML: e.html, FinalURL: req.URL, StatusCode: 200, EngineName: e.name}, nil
}

func newTestScraper(engines ...engine.Engine) *Scraper {
	s := &Scraper{
		scraperCfg: config.ScraperConfig{
			DefaultTimeout:      10 * time.Second,
			MaxTimeout:          20 * time.Second,
			WaitSelectorTimeout: time.Second,
		},
		renderer: cleaner.NewRenderer(),
	}
	if len(engines) > 0 {
		s.SetDispatcher(engine.NewDispatcher(engines, nil, nil))
	}
	return s
}

func TestFetchPage_Dispatcher(t *testing.T) {
	httpEng := &stubEngine{name: "http", html: `<html><body><h1>Doctors</h1><a href="/doctors/lahore">Lahore</a></body></html>`}
	s := newTestScraper(httpEng)

	page := s.FetchPage(context.Background(), "https://www.marham.pk/doctors", models.FetchOptions{})
	require.True(t, page.Success)
	assert.Contains(t, page.HTML, "<h1>Doctors</h1>")
	assert.Contains(t, page.Text, "https://www.marham.pk/doctors/lahore")
	assert.Equal(t, 10*time.Second, httpEng.last.Timeout)
}

func TestFetchPage_BrowserOptionUsesRod(t *testing.T) {
	httpEng := &stubEngine{name: "http", html: "<html>http</html>"}
	rodEng := &stubEngine{name: "rod-stealth", html: "<html>rod</html>"}
	s := newTestScraper(httpEng, rodEng)

	page := s.FetchPage(context.Background(), "https://www.marham.pk/dr/a", models.FetchOptions{
		WaitSelector:  "section.p-xy",
		PostLoadDelay: 1200,
		Timeout:       500,
	})
	require.True(t, page.Success)
	assert.Contains(t, page.HTML, "rod")
	assert.Nil(t, httpEng.last)
	assert.Equal(t, 1200*time.Millisecond, rodEng.last.PostLoadDelay)
	assert.Equal(t, "section.p-xy", rodEng.last.WaitSelector)
	assert.Equal(t, 20*time.Second, rodEng.last.Timeout, "timeout clamped to the maximum")
}

func TestFetchPage_FailureIsReported(t *testing.T) {
	s := newTestScraper(&stubEngine{name: "http", err: errors.New("connection reset")})

	page := s.FetchPage(context.Background(), "https://www.marham.pk/doctors", models.FetchOptions{})
	assert.False(t, page.Success)
	assert.Contains(t, page.Error, models.ErrCodeFetch)
}

func TestFetchPage_NoBrowser(t *testing.T) {
	s := newTestScraper()
	page := s.FetchPage(context.Background(), "https://www.marham.pk/doctors", models.FetchOptions{})
	assert.False(t, page.Success)
	assert.Contains(t, page.Error, models.ErrCodeBrowserCrash)
}

func TestWrap_Blocked(t *testing.T) {
	_, err := wrap(nil, &engine.BlockedError{URL: "u", Kind: engine.BlockCloudflare, StatusCode: 403})
	assert.Equal(t, models.ErrCodeBlocked, models.CodeOf(err))

	_, err = wrap(nil, context.DeadlineExceeded)
	assert.Equal(t, models.ErrCodeTimeout, models.CodeOf(err))
}

func TestBlockPlan(t *testing.T) {
	plan := newBlockPlan([]string{"Image", "Bogus"}, true)
	assert.False(t, plan.empty())
	assert.True(t, plan.blocks(proto.NetworkResourceTypeImage, "https://www.marham.pk/a.png"))
	assert.True(t, plan.blocks(proto.NetworkResourceTypeScript, "https://www.googletagmanager.com/gtm.js"))
	assert.True(t, plan.blocks(proto.NetworkResourceTypeScript, "https://static.hotjar.com/c.js"))
	assert.False(t, plan.blocks(proto.NetworkResourceTypeDocument, "https://www.marham.pk/doctors"))

	assert.True(t, newBlockPlan(nil, false).empty())
}

func TestClampTimeout(t *testing.T) {
	s := newTestScraper()
	assert.Equal(t, 10*time.Second, s.clampTimeout(0))
	assert.Equal(t, 5*time.Second, s.clampTimeout(5*time.Second))
	assert.Equal(t, 20*time.Second, s.clampTimeout(time.Minute))
}
