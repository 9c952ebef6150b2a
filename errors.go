package page2doc

import (
	"errors"

	"github.com/alnah/go-page2doc/internal/extract"
)

// Domain errors. Every failure a caller can act on wraps one of these.
var (
	// ErrExtractionNotFound means no rule produced text the classifier accepts.
	ErrExtractionNotFound = extract.ErrNotFound

	// ErrLibraryUnavailable means a rendering collaborator (the browser or the
	// Mermaid script) could not be made ready.
	ErrLibraryUnavailable = errors.New("rendering library unavailable")

	// ErrRenderFailure covers render timeouts, script exceptions, empty
	// output and rasterization errors.
	ErrRenderFailure = errors.New("render failed")
)

// Input validation errors.
var (
	ErrEmptyContent       = errors.New("content cannot be empty")
	ErrInvalidContent     = errors.New("content is not text")
	ErrInvalidKind        = errors.New("invalid content kind")
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidMode        = errors.New("invalid render mode")
	ErrInvalidScale       = errors.New("invalid scale")
	ErrInvalidPadding     = errors.New("invalid diagram padding")
)

// Browser plumbing errors.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
)

// Asset errors.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
