package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	APIPort              string
	WatchBaseURL         string
	DefaultLanguage      string
	CaptionFormat        string // "xml" (default) or "json3"
	OutputFormat         string // "txt" (default) or "md"
	MaxBatchSize         int
	BatchConcurrency     int
	FetchTimeout         time.Duration
	MaxPageBytes         int64
	MaxCaptionBytes      int64
	StrictMetadata       bool // fail items whose title cannot be resolved instead of using placeholders
	UseBrowserClient     bool // fetch watch pages through BrowserClient when it is set
	CORSOrigins          []string
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = plain HTTPClient only
}

// Defaults used when a Config field is left zero.
const (
	DefaultWatchBaseURL     = "https://www.youtube.com/watch?v="
	DefaultLanguageCode     = "en"
	DefaultMaxBatchSize     = 10
	DefaultBatchConcurrency = 4
	DefaultFetchTimeout     = 15 * time.Second
	DefaultMaxPageBytes     = 6 * 1024 * 1024
	DefaultMaxCaptionBytes  = 2 * 1024 * 1024
)

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, batch).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c.withDefaults()
	Cfg = &cfg
}

// BrowserTimeoutSeconds is FetchTimeout in whole seconds (rounded up, at least 1)
// for clients configured in seconds.
func (c Config) BrowserTimeoutSeconds() int {
	d := c.FetchTimeout
	if d <= 0 {
		d = DefaultFetchTimeout
	}
	return max(1, int((d+time.Second-1)/time.Second))
}

func (c Config) withDefaults() Config {
	if c.WatchBaseURL == "" {
		c.WatchBaseURL = DefaultWatchBaseURL
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = DefaultLanguageCode
	}
	if c.CaptionFormat == "" {
		c.CaptionFormat = FormatXML
	}
	if c.OutputFormat == "" {
		c.OutputFormat = ExtText
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = DefaultBatchConcurrency
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.MaxPageBytes <= 0 {
		c.MaxPageBytes = DefaultMaxPageBytes
	}
	if c.MaxCaptionBytes <= 0 {
		c.MaxCaptionBytes = DefaultMaxCaptionBytes
	}
	if c.HTTPClient == nil {
		c.HTTPClient = newFetchClient()
	}
	return c
}
