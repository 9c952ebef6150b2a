// Package extract locates a content block in an HTML document using ordered
// CSS selector rules and a text classifier.
//
// The rule order for a page is resolved once from its hostname into a Plan:
// site-specific rules first, then generic selectors, then a scan of every
// `pre code` block. The first element whose derived text is accepted by the
// classifier wins; there is no scoring.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"

	"github.com/alnah/go-page2doc/internal/classify"
)

// Match describes the element that produced the extracted text.
type Match struct {
	Text     string
	Selector string
	Origin   Origin
	Strategy string
}

// Extractor finds one content block of a fixed kind.
type Extractor struct {
	kind        string
	table       Table
	accept      func(string) bool
	readability bool
	logger      zerolog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSites prepends user-defined strategies to the built-in ones.
func WithSites(sites ...Strategy) Option {
	return func(e *Extractor) {
		e.table = e.table.WithSites(sites...)
	}
}

// WithReadability enables the main-content fallback before the `pre code`
// scan. Only Markdown extraction uses it.
func WithReadability(enabled bool) Option {
	return func(e *Extractor) {
		e.readability = enabled
	}
}

// WithLogger sets the logger used for rule tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// New creates an Extractor for kind ("markdown" or "mermaid").
func New(kind string, opts ...Option) (*Extractor, error) {
	table, err := TableFor(kind)
	if err != nil {
		return nil, err
	}

	e := &Extractor{
		kind:   kind,
		table:  table,
		accept: func(s string) bool { return classify.Matches(kind, s) },
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Plan returns the rule order used for host.
func (e *Extractor) Plan(host string) Plan {
	return e.table.Plan(host)
}

// Extract walks the plan for pageURL's host and returns the first accepted
// block. pageURL may be nil for local documents; only generic rules and the
// fallback then apply.
func (e *Extractor) Extract(doc *goquery.Document, pageURL *url.URL) (Match, error) {
	if doc == nil {
		return Match{}, ErrNilDocument
	}

	var host string
	if pageURL != nil {
		host = pageURL.Hostname()
	}
	plan := e.table.Plan(host)
	e.logger.Debug().Str("kind", e.kind).Str("host", host).Int("steps", len(plan.Steps)).Msg("extraction plan")

	triedReadability := false
	for _, step := range plan.Steps {
		if step.Origin == OriginFallback && !triedReadability {
			triedReadability = true
			if m, ok := e.tryReadability(doc, pageURL); ok {
				return m, nil
			}
		}

		if m, ok := e.tryStep(doc, step, pageURL); ok {
			e.logger.Debug().
				Str("selector", m.Selector).
				Str("origin", string(m.Origin)).
				Str("strategy", m.Strategy).
				Int("bytes", len(m.Text)).
				Msg("content located")
			return m, nil
		}
	}

	where := host
	if where == "" {
		where = "document"
	}
	return Match{}, fmt.Errorf("%w: no %s detected on %s", ErrNotFound, noun(e.kind), where)
}

func noun(kind string) string {
	if kind == KindMermaid {
		return "mermaid diagram"
	}
	return "markdown content"
}

// tryStep tests every element matched by step in document order.
func (e *Extractor) tryStep(doc *goquery.Document, step Step, base *url.URL) (Match, bool) {
	var found Match
	ok := false
	doc.Find(step.Selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		candidates, err := derive(sel, step.Mode, base)
		if err != nil {
			e.logger.Debug().Err(err).Str("selector", step.Selector).Msg("derive failed")
			return true
		}
		for _, text := range candidates {
			if text == "" || !e.accept(text) {
				continue
			}
			found = Match{Text: text, Selector: step.Selector, Origin: step.Origin, Strategy: step.Strategy}
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// tryReadability offers the readability article body to the classifier.
func (e *Extractor) tryReadability(doc *goquery.Document, pageURL *url.URL) (Match, bool) {
	if !e.readability || e.kind != KindMarkdown {
		return Match{}, false
	}

	html, err := doc.Html()
	if err != nil {
		return Match{}, false
	}
	u := pageURL
	if u == nil {
		u = &url.URL{}
	}
	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(html), u)
	if err != nil {
		e.logger.Debug().Err(err).Msg("readability failed")
		return Match{}, false
	}

	text, err := HTMLToMarkdown(article.Content, pageURL)
	if err != nil || text == "" || !e.accept(text) {
		return Match{}, false
	}
	e.logger.Debug().Str("title", article.Title).Msg("content located by readability")
	return Match{Text: text, Selector: "readability", Origin: OriginGeneric}, true
}

// ValidateSelector reports whether s is a CSS selector the extractor can run.
func ValidateSelector(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSelector)
	}
	if _, err := cascadia.ParseGroup(s); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSelector, s, err)
	}
	return nil
}
