package scraper

import (
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/docscout/cleaner"
	"github.com/use-agent/docscout/config"
	"github.com/use-agent/docscout/engine"
	"github.com/use-agent/docscout/models"
)

// Scraper owns the browser, the tab pool and the engine dispatcher, and
// serves page fetches to both pipelines. It is safe for concurrent use.
type Scraper struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	browserCfg  config.BrowserConfig
	scraperCfg  config.ScraperConfig
	activePages atomic.Int32
	dispatcher  *engine.Dispatcher
	renderer    *cleaner.Renderer
}

// chromeFlags hide the automation banner and keep background tabs from
// being throttled while a listing settles.
var chromeFlags = map[flags.Flag]string{
	"disable-blink-features":                 "AutomationControlled",
	"disable-features":                       "AudioServiceOutOfProcess,TranslateUI",
	"disable-popup-blocking":                 "",
	"disable-renderer-backgrounding":         "",
	"disable-background-timer-throttling":    "",
	"disable-backgrounding-occluded-windows": "",
	"disable-dev-shm-usage":                  "",
	"disable-extensions":                     "",
	"no-first-run":                           "",
	"window-size":                            "1200,900",
}

// NewScraper starts Chrome and an empty tab pool of cfg.MaxPages tabs.
func NewScraper(cfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Scraper, error) {
	controlURL, err := launch(cfg)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "browser launch failed", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "browser connect failed", err)
	}
	slog.Info("browser ready", "headless", cfg.Headless, "max_pages", cfg.MaxPages)

	return &Scraper{
		browser:    browser,
		pagePool:   rod.NewPagePool(cfg.MaxPages),
		browserCfg: cfg,
		scraperCfg: scraperCfg,
		renderer:   cleaner.NewRenderer(),
	}, nil
}

func launch(cfg config.BrowserConfig) (string, error) {
	l := launcher.New().Headless(cfg.Headless).NoSandbox(cfg.NoSandbox)
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.DefaultProxy != "" {
		l = l.Proxy(cfg.DefaultProxy)
	}
	l.Delete("enable-automation")
	for f, v := range chromeFlags {
		if v == "" {
			l.Set(f)
		} else {
			l.Set(f, v)
		}
	}
	return l.Launch()
}

// SetDispatcher installs the engine dispatcher. Without one every fetch
// goes straight to the browser.
func (s *Scraper) SetDispatcher(d *engine.Dispatcher) {
	s.dispatcher = d
}

// Stats returns a snapshot of the tab pool.
func (s *Scraper) Stats() models.PoolStats {
	return models.PoolStats{
		MaxPages:    s.browserCfg.MaxPages,
		ActivePages: int(s.activePages.Load()),
	}
}

// Close closes every pooled tab, then the browser.
func (s *Scraper) Close() {
	if s.browser == nil {
		return
	}
	s.pagePool.Cleanup(func(p *rod.Page) { _ = p.Close() })
	if err := s.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
		return
	}
	slog.Info("browser closed")
}
