package extract

import (
	"fmt"
	"strings"
)

// Mode selects how text is derived from a matched element.
type Mode int

const (
	// ModeText uses the trimmed text content of the element.
	ModeText Mode = iota
	// ModeCode reads code: a <code> element's text, a <pre>'s nested
	// <code> text, or the element's own text otherwise.
	ModeCode
	// ModeMarkdown converts the element's HTML back to Markdown.
	ModeMarkdown
)

// String returns the name used in configuration files.
func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeCode:
		return "code"
	case ModeMarkdown:
		return "markdown"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a configuration name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return ModeText, nil
	case "code":
		return ModeCode, nil
	case "markdown", "":
		return ModeMarkdown, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Rule is a CSS selector paired with its derivation mode.
type Rule struct {
	Selector string
	Mode     Mode
}

// Strategy groups the rules that apply to a family of hosts.
type Strategy struct {
	Name  string
	Hosts []string
	Rules []Rule
}

// MatchesHost reports whether host equals one of the strategy's hosts or is a
// subdomain of one.
func (s Strategy) MatchesHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return false
	}
	for _, h := range s.Hosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Table is the complete, ordered rule set for one content kind.
type Table struct {
	Kind     string
	Sites    []Strategy
	Generic  []Rule
	Fallback []Rule
}

// Origin labels where a planned rule came from.
type Origin string

const (
	OriginSite     Origin = "site"
	OriginGeneric  Origin = "generic"
	OriginFallback Origin = "fallback"
)

// Step is one rule of a Plan, tagged with its origin.
type Step struct {
	Rule
	Origin   Origin
	Strategy string
}

// Plan is the ordered list of rules to try for one host.
type Plan struct {
	Kind  string
	Host  string
	Steps []Step
}

// Plan resolves the rule order for host: every matching site strategy in
// table order, then the generic rules, then the fallback.
func (t Table) Plan(host string) Plan {
	p := Plan{Kind: t.Kind, Host: host}
	for _, s := range t.Sites {
		if !s.MatchesHost(host) {
			continue
		}
		for _, r := range s.Rules {
			p.Steps = append(p.Steps, Step{Rule: r, Origin: OriginSite, Strategy: s.Name})
		}
	}
	for _, r := range t.Generic {
		p.Steps = append(p.Steps, Step{Rule: r, Origin: OriginGeneric})
	}
	for _, r := range t.Fallback {
		p.Steps = append(p.Steps, Step{Rule: r, Origin: OriginFallback})
	}
	return p
}

// WithSites returns a copy of t with sites placed ahead of the built-in ones.
func (t Table) WithSites(sites ...Strategy) Table {
	if len(sites) == 0 {
		return t
	}
	merged := make([]Strategy, 0, len(sites)+len(t.Sites))
	merged = append(merged, sites...)
	merged = append(merged, t.Sites...)
	t.Sites = merged
	return t
}

// Kinds understood by TableFor.
const (
	KindMarkdown = "markdown"
	KindMermaid  = "mermaid"
)

// TableFor returns the built-in table for kind.
func TableFor(kind string) (Table, error) {
	switch kind {
	case KindMarkdown:
		return MarkdownTable(), nil
	case KindMermaid:
		return MermaidTable(), nil
	default:
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func rules(mode Mode, selectors ...string) []Rule {
	out := make([]Rule, len(selectors))
	for i, s := range selectors {
		out[i] = Rule{Selector: s, Mode: mode}
	}
	return out
}

// MarkdownTable returns the built-in rules for locating Markdown content.
func MarkdownTable() Table {
	return Table{
		Kind: KindMarkdown,
		Sites: []Strategy{
			{
				Name:  "github",
				Hosts: []string{"github.com"},
				Rules: rules(ModeMarkdown,
					"article.markdown-body",
					".markdown-body",
					`[data-testid="readme-content"]`,
					".Box-body",
				),
			},
			{
				Name:  "gitlab",
				Hosts: []string{"gitlab.com"},
				Rules: rules(ModeMarkdown,
					".wiki-content",
					".md",
					".markdown",
					"article",
				),
			},
		},
		Generic: rules(ModeMarkdown,
			"article",
			".markdown",
			".markdown-body",
			`[class*="markdown"]`,
			`[class*="md"]`,
			"main",
			".content",
			"#content",
		),
		Fallback: rules(ModeText, "pre code"),
	}
}

// MermaidTable returns the built-in rules for locating Mermaid definitions.
func MermaidTable() Table {
	return Table{
		Kind: KindMermaid,
		Sites: []Strategy{
			{
				Name:  "github",
				Hosts: []string{"github.com"},
				Rules: rules(ModeCode,
					"article.markdown-body pre code.language-mermaid",
					"article.markdown-body pre code.lang-mermaid",
					".markdown-body pre code.language-mermaid",
					".markdown-body pre code.lang-mermaid",
					`pre[lang="mermaid"]`,
				),
			},
			{
				Name:  "gitlab",
				Hosts: []string{"gitlab.com"},
				Rules: rules(ModeCode,
					".wiki-content pre code.language-mermaid",
					".wiki-content pre code.lang-mermaid",
					".md pre code.language-mermaid",
					".md pre code.lang-mermaid",
				),
			},
		},
		Generic: rules(ModeCode,
			"code.language-mermaid",
			"code.lang-mermaid",
			"pre code.language-mermaid",
			"pre code.lang-mermaid",
			".mermaid",
			`[class*="mermaid"]`,
			"pre:has(code.language-mermaid)",
			"pre:has(code.lang-mermaid)",
		),
		Fallback: rules(ModeText, "pre code"),
	}
}
