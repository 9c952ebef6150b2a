package page2doc

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout       time.Duration
	styleInput    string // style name, file path, or CSS content
	resolvedStyle string // CSS after resolution
	assetPath     string
	dateFormat    string
	browserOpts   BrowserOptions
	mermaidScript string
	httpClient    *http.Client
	preload       []Kind
	logger        zerolog.Logger
	now           func() time.Time
}

// defaultTimeout bounds the browser work of one conversion.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the render timeout of each conversion. Waiting for the
// browser to launch is not counted.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("page2doc: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithStyle sets the Markdown page style: a style name, a path to a CSS file,
// or CSS content.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.styleInput = style
	}
}

// WithAssetPath sets a directory whose styles/ and templates/ override the
// embedded ones.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithDateFormat sets the timestamp layout of generated file names.
func WithDateFormat(format string) Option {
	return func(c *Converter) {
		c.cfg.dateFormat = format
	}
}

// WithBrowserOptions configures the Chrome launch.
func WithBrowserOptions(opts BrowserOptions) Option {
	return func(c *Converter) {
		c.cfg.browserOpts = opts
	}
}

// WithMermaidScript sets the Mermaid library source: a file path or an
// http(s) URL.
func WithMermaidScript(source string) Option {
	return func(c *Converter) {
		c.cfg.mermaidScript = source
	}
}

// WithHTTPClient sets the client used to download the Mermaid library.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Converter) {
		c.cfg.httpClient = client
	}
}

// WithReadiness injects shared futures. A nil argument keeps the default.
// An injected browser belongs to the caller and is not closed by Close.
func WithReadiness(browser *BrowserReadiness, mermaid *Readiness[string]) Option {
	return func(c *Converter) {
		if browser != nil {
			c.browser = browser
		}
		if mermaid != nil {
			c.mermaid = mermaid
		}
	}
}

// WithPreload starts resolving what kinds need at construction instead of on
// first use: the browser for both, the Mermaid library for KindMermaid.
func WithPreload(kinds ...Kind) Option {
	return func(c *Converter) {
		c.cfg.preload = append(c.cfg.preload, kinds...)
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Converter) {
		c.cfg.logger = l
	}
}

// withRenderer replaces the browser renderer (tests).
func withRenderer(r renderer) Option {
	return func(c *Converter) {
		c.renderer = r
	}
}

// withClock replaces time.Now for file names (tests).
func withClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.cfg.now = now
	}
}
