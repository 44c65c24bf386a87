package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Engine    EngineConfig
	Crawl     CrawlConfig
	Query     QueryConfig
	Store     StoreConfig
	LLM       LLMConfig
	Webhook   WebhookConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// EngineConfig controls the multi-engine racing dispatcher.
type EngineConfig struct {
	// EnableMultiEngine lets plain-HTTP fetches race the browser for pages
	// that do not ask for a wait selector.
	EnableMultiEngine bool // default: true

	// EscalationDelays is the staged start delay for each engine tier.
	EscalationDelays []time.Duration // default: [0s, 2s, 5s]

	// HTTPTimeout is the deadline for the pure HTTP engine.
	HTTPTimeout time.Duration // default: 20s
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless. The directory
	// sits behind a bot wall; a headed first run may be needed.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 4

	// DefaultProxy is the default proxy URL for all requests.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// ScraperConfig controls page fetching.
type ScraperConfig struct {
	// DefaultTimeout is the per-page timeout.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum allowed timeout from a caller.
	MaxTimeout time.Duration // default: 120s

	// WaitSelectorTimeout bounds the best-effort wait for a selector.
	WaitSelectorTimeout time.Duration // default: 8s

	// Stealth injects the stealth evasions before every navigation.
	Stealth bool // default: true

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// BlockTrackers drops requests to known ad and analytics hosts.
	BlockTrackers bool // default: true
}

// CrawlConfig controls the city-enumeration pipeline.
type CrawlConfig struct {
	// BaseURL is the directory root.
	BaseURL string // default: "https://www.marham.pk"

	// IndexPath is the page listing every city.
	IndexPath string // default: "/doctors"

	// MaxPagesPerCity caps pagination per city.
	MaxPagesPerCity int // default: 8

	// CityLimit processes only the first N discovered cities; 0 means all.
	CityLimit int

	// DelayMin and DelayMax bound the random pause between page fetches.
	DelayMin time.Duration // default: 800ms
	DelayMax time.Duration // default: 2s

	// ProfileWorkers bounds concurrent profile schedule fetches within a page.
	ProfileWorkers int // default: 1

	// ListingPostLoad and ProfilePostLoad are settle delays after navigation.
	ListingPostLoad time.Duration // default: 0
	ProfilePostLoad time.Duration // default: 1200ms
}

// QueryConfig controls the query-driven pipeline.
type QueryConfig struct {
	// MaxResults is the search-provider candidate quota.
	MaxResults int // default: 8

	// MaxCards caps the doctor cards listed from the chosen page.
	MaxCards int // default: 20

	// Reviews is the default number of reviews returned.
	Reviews int // default: 5

	// ValidateWorkers bounds concurrent candidate validation fetches.
	ValidateWorkers int // default: 1

	// OutputDir is where JSON exports are written.
	OutputDir string // default: "."
}

// StoreConfig selects the row store.
type StoreConfig struct {
	// Driver is "csv", "sqlite" or "postgres".
	Driver string // default: "csv"

	// Path is the CSV file for the csv driver.
	Path string // default: "doctors_knowledge_base.csv"

	// DSN is the database source for the sqlite and postgres drivers.
	DSN string // default: "doctors.db"
}

// LLMConfig controls the review summarizer.
type LLMConfig struct {
	APIKey      string
	BaseURL     string        // default: "https://api.groq.com/openai/v1"
	Model       string        // default: "llama-3.1-8b-instant"
	Temperature float64       // default: 0.3
	MaxTokens   int           // default: 300
	Timeout     time.Duration // default: 30s
}

// WebhookConfig controls crawl progress notifications.
type WebhookConfig struct {
	URL    string
	Secret string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 3
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: envOr("DOCSCOUT_HOST", "0.0.0.0"),
			Port: envIntOr("DOCSCOUT_PORT", 8080),
			Mode: envOr("DOCSCOUT_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("DOCSCOUT_HEADLESS", true),
			MaxPages:     envIntOr("DOCSCOUT_MAX_PAGES", 4),
			DefaultProxy: os.Getenv("DOCSCOUT_PROXY"),
			NoSandbox:    envBoolOr("DOCSCOUT_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("DOCSCOUT_BROWSER_BIN"),
		},
		Scraper: ScraperConfig{
			DefaultTimeout:      envDurationOr("DOCSCOUT_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:          envDurationOr("DOCSCOUT_MAX_TIMEOUT", 120*time.Second),
			WaitSelectorTimeout: envDurationOr("DOCSCOUT_WAIT_SELECTOR_TIMEOUT", 8*time.Second),
			Stealth:             envBoolOr("DOCSCOUT_STEALTH", true),
			BlockedResourceTypes: envSliceOr("DOCSCOUT_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			BlockTrackers: envBoolOr("DOCSCOUT_BLOCK_TRACKERS", true),
		},
		Engine: EngineConfig{
			EnableMultiEngine: envBoolOr("DOCSCOUT_MULTI_ENGINE", true),
			EscalationDelays:  envDurationSliceOr("DOCSCOUT_ESCALATION_DELAYS", []time.Duration{0, 2 * time.Second, 5 * time.Second}),
			HTTPTimeout:       envDurationOr("DOCSCOUT_HTTP_TIMEOUT", 20*time.Second),
		},
		Crawl: CrawlConfig{
			BaseURL:         envOr("DOCSCOUT_BASE_URL", "https://www.marham.pk"),
			IndexPath:       envOr("DOCSCOUT_INDEX_PATH", "/doctors"),
			MaxPagesPerCity: envIntOr("DOCSCOUT_MAX_PAGES_PER_CITY", 8),
			CityLimit:       envIntOr("DOCSCOUT_CITY_LIMIT", 0),
			DelayMin:        envDurationOr("DOCSCOUT_DELAY_MIN", 800*time.Millisecond),
			DelayMax:        envDurationOr("DOCSCOUT_DELAY_MAX", 2*time.Second),
			ProfileWorkers:  envIntOr("DOCSCOUT_PROFILE_WORKERS", 1),
			ListingPostLoad: envDurationOr("DOCSCOUT_LISTING_POST_LOAD", 0),
			ProfilePostLoad: envDurationOr("DOCSCOUT_PROFILE_POST_LOAD", 1200*time.Millisecond),
		},
		Query: QueryConfig{
			MaxResults:      envIntOr("DOCSCOUT_MAX_RESULTS", 8),
			MaxCards:        envIntOr("DOCSCOUT_MAX_CARDS", 20),
			Reviews:         envIntOr("DOCSCOUT_REVIEWS", 5),
			ValidateWorkers: envIntOr("DOCSCOUT_VALIDATE_WORKERS", 1),
			OutputDir:       envOr("DOCSCOUT_OUTPUT_DIR", "."),
		},
		Store: StoreConfig{
			Driver: envOr("DOCSCOUT_STORE", "csv"),
			Path:   envOr("DOCSCOUT_CSV_PATH", "doctors_knowledge_base.csv"),
			DSN:    envOr("DOCSCOUT_DSN", "doctors.db"),
		},
		LLM: LLMConfig{
			APIKey:      envOr("GROQ_API_KEY", os.Getenv("DOCSCOUT_LLM_API_KEY")),
			BaseURL:     envOr("DOCSCOUT_LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:       envOr("DOCSCOUT_LLM_MODEL", "llama-3.1-8b-instant"),
			Temperature: envFloatOr("DOCSCOUT_LLM_TEMPERATURE", 0.3),
			MaxTokens:   envIntOr("DOCSCOUT_LLM_MAX_TOKENS", 300),
			Timeout:     envDurationOr("DOCSCOUT_LLM_TIMEOUT", 30*time.Second),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("DOCSCOUT_WEBHOOK_URL"),
			Secret: os.Getenv("DOCSCOUT_WEBHOOK_SECRET"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("DOCSCOUT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("DOCSCOUT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("DOCSCOUT_RATE_RPS", 1.0),
			Burst:             envIntOr("DOCSCOUT_RATE_BURST", 3),
		},
		Log: LogConfig{
			Level:  envOr("DOCSCOUT_LOG_LEVEL", "info"),
			Format: envOr("DOCSCOUT_LOG_FORMAT", "text"),
		},
	}
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]time.Duration, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if d, err := time.ParseDuration(trimmed); err == nil {
					result = append(result, d)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
