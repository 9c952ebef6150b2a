package assets

import (
	"slices"
)

// Names of the built-in assets the converter relies on.
const (
	DefaultStyleName = "default"

	// DocumentTemplate wraps rendered Markdown. Fields: Title, Lang, Body.
	DocumentTemplate = "document"
	// DiagramTemplate is the blank page Mermaid renders into.
	DiagramTemplate = "diagram"
)

// Library looks assets up layer by layer. The zero value is not usable;
// call Open.
type Library struct {
	layers []Source
}

// Open returns a Library over the built-in assets, shadowed by overlay when
// it is non-empty. A non-empty overlay must be a readable directory.
func Open(overlay string) (*Library, error) {
	lib := &Library{}
	if overlay != "" {
		dir, err := NewDirSource(overlay)
		if err != nil {
			return nil, err
		}
		lib.layers = append(lib.layers, dir)
	}
	lib.layers = append(lib.layers, Builtin())
	return lib, nil
}

// Style returns the CSS of the named style.
func (l *Library) Style(name string) (string, error) {
	return l.Lookup(Style, name)
}

// Template returns the source of the named HTML template.
func (l *Library) Template(name string) (string, error) {
	return l.Lookup(Template, name)
}

// Lookup returns the first layer's copy of the asset. Only not-found errors
// move the search to the next layer.
func (l *Library) Lookup(k Kind, name string) (string, error) {
	var err error
	for _, src := range l.layers {
		var content string
		content, err = src.Read(k, name)
		if err == nil {
			return content, nil
		}
		if !IsNotFound(err) {
			return "", err
		}
	}
	return "", err
}

// Overlaid reports whether a user directory shadows the built-in assets.
func (l *Library) Overlaid() bool {
	return len(l.layers) > 1
}

// Names lists the assets of kind k across all layers, sorted and
// deduplicated. Unreadable layers are skipped.
func (l *Library) Names(k Kind) []string {
	var all []string
	for _, src := range l.layers {
		names, err := src.Names(k)
		if err != nil {
			continue
		}
		all = append(all, names...)
	}
	slices.Sort(all)
	return slices.Compact(all)
}

// StyleNames lists the built-in styles, sorted.
func StyleNames() []string {
	names, _ := Builtin().Names(Style)
	slices.Sort(names)
	return names
}
