package page2doc

import (
	"encoding/json"
	"fmt"
	"io"
)

// Message actions.
const (
	ActionExtractMarkdown = "extractMarkdown"
	ActionExtractMermaid  = "extractMermaid"
)

// Request asks an Extractor for content. URL may be a page URL or a local
// HTML file path.
type Request struct {
	Action string `json:"action"`
	URL    string `json:"url"`
}

// Kind returns the content kind the action asks for.
func (r Request) Kind() (Kind, error) {
	switch r.Action {
	case ActionExtractMarkdown:
		return KindMarkdown, nil
	case ActionExtractMermaid:
		return KindMermaid, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidKind, r.Action)
	}
}

// Response carries the extracted content or the failure message. Exactly one
// of Markdown and Mermaid is set on success.
type Response struct {
	Success  bool   `json:"success"`
	Markdown string `json:"markdown,omitempty"`
	Mermaid  string `json:"mermaid,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewResponse builds the envelope for an extraction outcome.
func NewResponse(kind Kind, content string, err error) Response {
	if err != nil {
		return Response{Error: err.Error()}
	}
	r := Response{Success: true}
	if kind == KindMermaid {
		r.Mermaid = content
	} else {
		r.Markdown = content
	}
	return r
}

// Content returns whichever payload field is set.
func (r Response) Content() string {
	if r.Mermaid != "" {
		return r.Mermaid
	}
	return r.Markdown
}

// WriteJSON writes r as indented JSON followed by a newline.
func (r Response) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
