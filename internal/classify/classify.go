// Package classify decides whether a block of text looks like Markdown or a
// Mermaid diagram definition.
//
// Every function is pure: no I/O, no state, safe for concurrent use.
package classify

import (
	"regexp"
	"strings"
)

// Kind names accepted by Matches.
const (
	KindMarkdown = "markdown"
	KindMermaid  = "mermaid"
)

// MinDiagramLength is the shortest trimmed text considered a diagram.
const MinDiagramLength = 10

// markdownPatterns match anywhere in the text. One hit is enough.
var markdownPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{1,6}\s+`),   // header
	regexp.MustCompile(`(?m)^\s*[-*+]\s+`), // unordered list
	regexp.MustCompile(`(?m)^\s*\d+\.\s+`), // ordered list
	regexp.MustCompile("(?s)```.*?```"),    // fenced code
	regexp.MustCompile("`[^`]+`"),          // inline code
	regexp.MustCompile(`\[.*?\]\(.*?\)`),   // link
	regexp.MustCompile(`!\[.*?\]\(.*?\)`),  // image
	regexp.MustCompile(`(?m)^\s*>\s+`),     // blockquote
}

// diagramPattern pairs a diagram family with the regex its first line must match.
type diagramPattern struct {
	name string
	re   *regexp.Regexp
}

const directions = `(TD|LR|BT|RL|TB)`

// diagramPatterns are tested against the first non-empty line, case-insensitively.
var diagramPatterns = []diagramPattern{
	{"graph", regexp.MustCompile(`(?i)^graph\s+` + directions)},
	{"flowchart", regexp.MustCompile(`(?i)^flowchart\s+` + directions)},
	{"sequenceDiagram", regexp.MustCompile(`(?i)^sequenceDiagram`)},
	{"classDiagram", regexp.MustCompile(`(?i)^classDiagram`)},
	{"stateDiagram", regexp.MustCompile(`(?i)^stateDiagram`)},
	{"erDiagram", regexp.MustCompile(`(?i)^erDiagram`)},
	{"journey", regexp.MustCompile(`(?i)^journey`)},
	{"gantt", regexp.MustCompile(`(?i)^gantt`)},
	{"pie", regexp.MustCompile(`(?i)^pie`)},
	{"gitgraph", regexp.MustCompile(`(?i)^gitgraph`)},
	{"mindmap", regexp.MustCompile(`(?i)^mindmap`)},
	{"timeline", regexp.MustCompile(`(?i)^timeline`)},
	{"C4Context", regexp.MustCompile(`(?i)^C4Context`)},
	{"C4Container", regexp.MustCompile(`(?i)^C4Container`)},
	{"C4Component", regexp.MustCompile(`(?i)^C4Component`)},
	{"C4Dynamic", regexp.MustCompile(`(?i)^C4Dynamic`)},
	{"C4Deployment", regexp.MustCompile(`(?i)^C4Deployment`)},
	{"quadrantChart", regexp.MustCompile(`(?i)^quadrantChart`)},
	{"requirement", regexp.MustCompile(`(?i)^requirement`)},
	{"sankey-beta", regexp.MustCompile(`(?i)^sankey-beta`)},
}

// IsMarkdown reports whether text contains at least one Markdown construct.
func IsMarkdown(text string) bool {
	for _, re := range markdownPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsDiagram reports whether text starts with a known Mermaid diagram keyword.
func IsDiagram(text string) bool {
	return DiagramType(text) != ""
}

// DiagramType returns the diagram family of text, or "" when text is not a
// diagram.
func DiagramType(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinDiagramLength {
		return ""
	}

	line := firstLine(trimmed)
	for _, p := range diagramPatterns {
		if p.re.MatchString(line) {
			return p.name
		}
	}
	return ""
}

// Matches dispatches to the classifier for kind. Unknown kinds never match.
func Matches(kind, text string) bool {
	switch kind {
	case KindMarkdown:
		return IsMarkdown(text)
	case KindMermaid:
		return IsDiagram(text)
	default:
		return false
	}
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for line := range strings.Lines(s) {
		if l := strings.TrimSpace(line); l != "" {
			return l
		}
	}
	return ""
}
