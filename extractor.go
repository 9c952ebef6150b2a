package page2doc

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/alnah/go-page2doc/internal/classify"
	"github.com/alnah/go-page2doc/internal/extract"
	"github.com/alnah/go-page2doc/internal/fileutil"
)

// Rule building blocks for user-defined site strategies.
type (
	// SiteStrategy is a named set of rules tried first on matching hosts.
	SiteStrategy = extract.Strategy
	// SelectorRule pairs a CSS selector with a derivation mode.
	SelectorRule = extract.Rule
)

// Derivation modes for SelectorRule.
const (
	DeriveText     = extract.ModeText
	DeriveCode     = extract.ModeCode
	DeriveMarkdown = extract.ModeMarkdown
)

// Extractor finds Markdown or Mermaid content in web pages and HTML files.
type Extractor struct {
	kind   Kind
	inner  *extract.Extractor
	loader PageLoader
	logger zerolog.Logger
}

type extractorConfig struct {
	sites       []SiteStrategy
	readability bool
	loader      PageLoader
	logger      zerolog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*extractorConfig)

// WithSites places strategies ahead of the built-in site rules.
func WithSites(sites ...SiteStrategy) ExtractorOption {
	return func(c *extractorConfig) {
		c.sites = append(c.sites, sites...)
	}
}

// WithReadabilityFallback tries a readability pass over the page before the
// last-resort `pre code` scan. Markdown only.
func WithReadabilityFallback(enabled bool) ExtractorOption {
	return func(c *extractorConfig) {
		c.readability = enabled
	}
}

// WithLoader sets how URLs are loaded. The default is a plain HTTP GET.
func WithLoader(l PageLoader) ExtractorOption {
	return func(c *extractorConfig) {
		c.loader = l
	}
}

// WithExtractorLogger sets the logger used for rule tracing.
func WithExtractorLogger(l zerolog.Logger) ExtractorOption {
	return func(c *extractorConfig) {
		c.logger = l
	}
}

// NewExtractor creates an Extractor for kind.
func NewExtractor(kind Kind, opts ...ExtractorOption) (*Extractor, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	cfg := extractorConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.loader == nil {
		cfg.loader = &HTTPLoader{}
	}

	inner, err := extract.New(string(kind),
		extract.WithSites(cfg.sites...),
		extract.WithReadability(cfg.readability),
		extract.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, err
	}

	return &Extractor{kind: kind, inner: inner, loader: cfg.loader, logger: cfg.logger}, nil
}

// Kind returns the content kind this extractor looks for.
func (e *Extractor) Kind() Kind {
	return e.kind
}

// ExtractDocument returns the first content block of the extractor's kind in
// doc. pageURL selects site rules and resolves links; it may be nil.
// Fails with ErrExtractionNotFound when every rule is exhausted.
func (e *Extractor) ExtractDocument(doc *goquery.Document, pageURL *url.URL) (string, error) {
	m, err := e.inner.Extract(doc, pageURL)
	if err != nil {
		return "", err
	}
	if e.kind == KindMermaid {
		e.logger.Debug().Str("diagram", classify.DiagramType(m.Text)).Msg("diagram detected")
	}
	return m.Text, nil
}

// Extract loads target, an http(s) URL or a local HTML file, and extracts
// from it.
func (e *Extractor) Extract(ctx context.Context, target string) (string, error) {
	if !fileutil.IsURL(target) {
		doc, err := LoadFile(target)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", target, err)
		}
		return e.ExtractDocument(doc, nil)
	}

	pageURL, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	doc, err := e.loader.Load(ctx, target)
	if err != nil {
		return "", err
	}
	return e.ExtractDocument(doc, pageURL)
}

// Handle answers an extraction request with the message envelope. A request
// for another kind is answered with an error response.
func (e *Extractor) Handle(ctx context.Context, req Request) Response {
	kind, err := req.Kind()
	if err != nil {
		return NewResponse(e.kind, "", err)
	}
	if kind != e.kind {
		return NewResponse(e.kind, "", fmt.Errorf("%w: %s extractor cannot serve %q", ErrInvalidKind, e.kind, req.Action))
	}
	content, err := e.Extract(ctx, req.URL)
	return NewResponse(kind, content, err)
}
