package main

import (
	"context"
	"errors"
	"os"
	"strings"

	page2doc "github.com/alnah/go-page2doc"
	"github.com/alnah/go-page2doc/internal/assets"
	"github.com/alnah/go-page2doc/internal/config"
	"github.com/alnah/go-page2doc/internal/dateutil"
	"github.com/alnah/go-page2doc/internal/fileutil"
	"github.com/alnah/go-page2doc/internal/hints"
)

// Exit codes for the page2doc CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Successful conversion
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitIO       = 3 // File not found, permission denied
	ExitBrowser  = 4 // Browser, Mermaid library or render errors
	ExitNotFound = 5 // No content of the requested kind on the page
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Nothing to convert on the page (exit 5)
	if errors.Is(err, page2doc.ErrExtractionNotFound) {
		return ExitNotFound
	}

	// Browser and rendering errors (exit 4)
	if errors.Is(err, page2doc.ErrBrowserConnect) ||
		errors.Is(err, page2doc.ErrPageCreate) ||
		errors.Is(err, page2doc.ErrPageLoad) ||
		errors.Is(err, page2doc.ErrLibraryUnavailable) ||
		errors.Is(err, page2doc.ErrRenderFailure) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, fileutil.ErrInvalidUTF8) ||
		errors.Is(err, fileutil.ErrFileTooLarge) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, page2doc.ErrEmptyContent) ||
		errors.Is(err, page2doc.ErrInvalidContent) ||
		errors.Is(err, page2doc.ErrInvalidKind) ||
		errors.Is(err, page2doc.ErrInvalidPageSize) ||
		errors.Is(err, page2doc.ErrInvalidOrientation) ||
		errors.Is(err, page2doc.ErrInvalidMargin) ||
		errors.Is(err, page2doc.ErrInvalidMode) ||
		errors.Is(err, page2doc.ErrInvalidScale) ||
		errors.Is(err, page2doc.ErrInvalidPadding) ||
		errors.Is(err, page2doc.ErrStyleNotFound) ||
		errors.Is(err, page2doc.ErrInvalidAssetPath) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, kind page2doc.Kind, configName string) string {
	var h hints.Hint
	switch {
	case errors.Is(err, page2doc.ErrExtractionNotFound):
		h = hints.NotFound(string(kind))
	case errors.Is(err, page2doc.ErrBrowserConnect):
		h = hints.System().Browser()
	case errors.Is(err, page2doc.ErrLibraryUnavailable) && strings.Contains(err.Error(), "mermaid"):
		h = hints.MermaidLibrary()
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "timed out"):
		h = hints.Timeout()
	case errors.Is(err, page2doc.ErrStyleNotFound):
		h = hints.Style(assets.StyleNames())
	case errors.Is(err, config.ErrConfigNotFound):
		h = hints.Config(config.SearchPaths(configName))
	case errors.Is(err, ErrWriteOutput):
		h = hints.OutputDir()
	}
	return h.String()
}
