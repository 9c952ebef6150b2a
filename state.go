package page2doc

import (
	"fmt"
	"strings"
)

// Source is where the current content came from.
type Source string

// Content sources.
const (
	SourceWeb    Source = "web"
	SourceFile   Source = "file"
	SourceManual Source = "manual"
)

// State is the content held between extraction and conversion. Transitions
// return a new value and never mutate the receiver.
type State struct {
	Kind    Kind
	Source  Source
	Content string
	Status  string
}

// NewState returns an empty state for kind with the web source selected.
func NewState(kind Kind) State {
	return State{Kind: kind, Source: SourceWeb}
}

// SwitchSource selects src. Switching to a different source discards the
// content and the status; selecting the current source changes nothing.
func (s State) SwitchSource(src Source) State {
	if src == s.Source {
		return s
	}
	return State{Kind: s.Kind, Source: src}
}

// Load stores content and the success status for the current source.
// Whitespace-only manual input leaves the state empty.
func (s State) Load(content string) State {
	s.Content = content
	s.Status = ""
	if strings.TrimSpace(content) != "" {
		s.Status = s.successStatus()
	}
	return s
}

// Clear discards the content and the status. The source is kept.
func (s State) Clear() State {
	return State{Kind: s.Kind, Source: s.Source}
}

// Ready returns the content to convert, or ErrEmptyContent.
func (s State) Ready() (string, error) {
	if strings.TrimSpace(s.Content) == "" {
		return "", fmt.Errorf("%w: no %s to convert", ErrEmptyContent, s.Kind.Noun())
	}
	return s.Content, nil
}

func (s State) successStatus() string {
	switch s.Source {
	case SourceFile:
		return "File loaded successfully!"
	case SourceManual:
		if s.Kind == KindMermaid {
			return "Mermaid diagram ready for conversion"
		}
		return "Markdown ready for conversion"
	default:
		if s.Kind == KindMermaid {
			return "Mermaid diagram extracted successfully!"
		}
		return "Markdown extracted successfully!"
	}
}
