package page2doc

import (
	"fmt"
	"strings"
	"time"
)

// Kind selects the conversion: Markdown to PDF or Mermaid to PNG.
type Kind string

// Supported kinds.
const (
	KindMarkdown Kind = "markdown"
	KindMermaid  Kind = "mermaid"
)

// ParseKind maps a user-supplied name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMarkdown, "md":
		return KindMarkdown, nil
	case KindMermaid, "diagram":
		return KindMermaid, nil
	default:
		return "", fmt.Errorf("%w: %q (must be markdown or mermaid)", ErrInvalidKind, s)
	}
}

// Validate reports whether k is a supported kind.
func (k Kind) Validate() error {
	switch k {
	case KindMarkdown, KindMermaid:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
	}
}

// Extension is the file extension of the artifact produced for k.
func (k Kind) Extension() string {
	if k == KindMermaid {
		return "png"
	}
	return "pdf"
}

// Action is the message action that extracts content of kind k.
func (k Kind) Action() string {
	if k == KindMermaid {
		return ActionExtractMermaid
	}
	return ActionExtractMarkdown
}

// Noun is the wording used in status messages.
func (k Kind) Noun() string {
	if k == KindMermaid {
		return "mermaid diagram"
	}
	return "markdown content"
}

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Render modes for Markdown.
const (
	// ModeRaster screenshots the rendered page and slices it into PDF pages.
	ModeRaster = "raster"
	// ModePrint uses the browser's vector print engine.
	ModePrint = "print"
)

// Margin bounds in inches. Margins apply to print mode only; raster pages
// carry their padding in the style sheet.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// Scale bounds for raster mode.
const (
	MinScale     = 1.0
	MaxScale     = 4.0
	DefaultScale = 2.0
)

// PageSettings configures the Markdown document pages.
type PageSettings struct {
	Size        string  // "a4", "letter", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, print mode only
	Mode        string  // "raster", "print"
	Scale       float64 // device scale factor, raster mode only
}

// DefaultPageSettings returns A4 portrait raster pages at scale 2.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
		Mode:        ModeRaster,
		Scale:       DefaultScale,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults). Zero Mode and Scale mean
// their defaults.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	switch strings.ToLower(p.Mode) {
	case "", ModeRaster, ModePrint:
	default:
		return fmt.Errorf("%w: %q (must be raster or print)", ErrInvalidMode, p.Mode)
	}

	if p.Scale != 0 && (p.Scale < MinScale || p.Scale > MaxScale) {
		return fmt.Errorf("%w: %.2f (must be between %.0f and %.0f)", ErrInvalidScale, p.Scale, MinScale, MaxScale)
	}

	return nil
}

func (p *PageSettings) mode() string {
	if p == nil || p.Mode == "" {
		return ModeRaster
	}
	return strings.ToLower(p.Mode)
}

func (p *PageSettings) scale() float64 {
	if p == nil || p.Scale == 0 {
		return DefaultScale
	}
	return p.Scale
}

// isValidPageSize checks if size is a known page size (case-insensitive).
func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case PageSizeLetter, PageSizeA4, PageSizeLegal:
		return true
	}
	return false
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Diagram defaults.
const (
	DefaultDiagramTheme   = "default"
	DefaultDiagramPadding = 40
	DefaultMinWidth       = 800
	DefaultMinHeight      = 600
	DefaultSettle         = 500 * time.Millisecond

	// Used when the SVG declares neither a viewBox nor a size.
	fallbackDiagramWidth  = 800
	fallbackDiagramHeight = 600
)

// DiagramSettings configures Mermaid rendering and the PNG canvas.
type DiagramSettings struct {
	Theme     string        // Mermaid theme name
	Padding   int           // white margin around the diagram, in pixels
	MinWidth  int           // minimum canvas width
	MinHeight int           // minimum canvas height
	Settle    time.Duration // delay between render and measurement
}

// DefaultDiagramSettings returns the defaults: default theme, 40px padding,
// an 800x600 minimum canvas and a 500ms settle delay.
func DefaultDiagramSettings() *DiagramSettings {
	return &DiagramSettings{
		Theme:     DefaultDiagramTheme,
		Padding:   DefaultDiagramPadding,
		MinWidth:  DefaultMinWidth,
		MinHeight: DefaultMinHeight,
		Settle:    DefaultSettle,
	}
}

// Validate checks that diagram settings are usable.
// Returns nil if d is nil.
func (d *DiagramSettings) Validate() error {
	if d == nil {
		return nil
	}
	if d.Padding < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPadding, d.Padding)
	}
	if d.MinWidth < 0 || d.MinHeight < 0 {
		return fmt.Errorf("%w: minimum canvas %dx%d", ErrInvalidPadding, d.MinWidth, d.MinHeight)
	}
	if d.Settle < 0 {
		return fmt.Errorf("%w: negative settle delay %v", ErrInvalidPadding, d.Settle)
	}
	return nil
}

// withDefaults fills zero fields. A nil receiver yields the defaults.
func (d *DiagramSettings) withDefaults() DiagramSettings {
	out := *DefaultDiagramSettings()
	if d == nil {
		return out
	}
	if d.Theme != "" {
		out.Theme = d.Theme
	}
	out.Padding = d.Padding
	if d.MinWidth > 0 {
		out.MinWidth = d.MinWidth
	}
	if d.MinHeight > 0 {
		out.MinHeight = d.MinHeight
	}
	if d.Settle > 0 {
		out.Settle = d.Settle
	}
	return out
}

// Input contains conversion parameters.
type Input struct {
	Kind      Kind             // required
	Content   string           // Markdown or Mermaid definition (required)
	SourceDir string           // directory or page URL for relative links (Markdown)
	CSS       string           // extra CSS appended after the style (Markdown)
	Page      *PageSettings    // nil = defaults (Markdown)
	Diagram   *DiagramSettings // nil = defaults (Mermaid)
	HTMLOnly  bool             // skip the browser (Markdown)
}

// Result holds the artifact of one conversion.
type Result struct {
	Kind     Kind
	Data     []byte // PDF or PNG bytes; nil when HTMLOnly
	HTML     []byte // intermediate page (Markdown only)
	Filename string // generated artifact name
}
