package page2doc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/alnah/go-page2doc/internal/fileutil"
)

// renderer is the browser side of a conversion. It exists so the pipeline
// can be tested without Chrome.
type renderer interface {
	// Screenshot renders an HTML page at the given viewport and returns a
	// full-page PNG.
	Screenshot(ctx context.Context, html string, width, height int, scale float64) ([]byte, error)
	// PrintPDF renders an HTML page with the browser's print engine.
	PrintPDF(ctx context.Context, html string, page *PageSettings) ([]byte, error)
	// RenderDiagram runs Mermaid on a definition inside the diagram page.
	RenderDiagram(ctx context.Context, page, definition string, d DiagramSettings) (*diagramShot, error)
	Close() error
}

// Compile-time interface check.
var _ renderer = (*rodRenderer)(nil)

// rodRenderer implements renderer with go-rod.
type rodRenderer struct {
	browser     *BrowserReadiness
	mermaid     *Readiness[string]
	ownsBrowser bool
	timeout     time.Duration
	logger      zerolog.Logger
}

// Close releases the browser when this renderer launched it.
func (r *rodRenderer) Close() error {
	if r.ownsBrowser && r.browser != nil {
		return r.browser.Close()
	}
	return nil
}

// openPage writes html to a temp file and loads it in a new tab. The returned
// page is bound to ctx; cleanup closes it and removes the file.
func (r *rodRenderer) openPage(ctx context.Context, html string) (*rod.Page, func(), error) {
	browser, err := r.browser.Wait(ctx)
	if err != nil {
		return nil, nil, err
	}

	path, removeFile, err := fileutil.WritePage(html)
	if err != nil {
		return nil, nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: fileURL(path)})
	if err != nil {
		removeFile()
		return nil, nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	cleanup := func() {
		_ = page.Close()
		removeFile()
	}

	page = page.Context(ctx)
	if err := page.WaitLoad(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return page, cleanup, nil
}

// withTimeout bounds the browser work of one conversion.
func (r *rodRenderer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// renderError tags a failure as ErrRenderFailure unless the caller's own
// context ended, in which case that error is returned untouched.
func renderError(parent context.Context, stage string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: timed out", ErrRenderFailure, stage)
	}
	if errors.Is(err, ErrRenderFailure) || errors.Is(err, ErrLibraryUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrRenderFailure, stage, err)
}

// Screenshot sets the viewport and device scale factor, then captures the
// whole document.
func (r *rodRenderer) Screenshot(ctx context.Context, html string, width, height int, scale float64) ([]byte, error) {
	if _, err := r.browser.Wait(ctx); err != nil {
		return nil, err
	}

	tctx, cancel := r.withTimeout(ctx)
	defer cancel()

	page, cleanup, err := r.openPage(tctx, html)
	if err != nil {
		return nil, renderError(ctx, "loading page", err)
	}
	defer cleanup()

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: scale,
	})
	if err != nil {
		return nil, renderError(ctx, "setting viewport", err)
	}

	shot, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, renderError(ctx, "capturing page", err)
	}
	return shot, nil
}

// PrintPDF prints the page to PDF with the configured paper and margins.
func (r *rodRenderer) PrintPDF(ctx context.Context, html string, settings *PageSettings) ([]byte, error) {
	if _, err := r.browser.Wait(ctx); err != nil {
		return nil, err
	}

	tctx, cancel := r.withTimeout(ctx)
	defer cancel()

	page, cleanup, err := r.openPage(tctx, html)
	if err != nil {
		return nil, renderError(ctx, "loading page", err)
	}
	defer cleanup()

	reader, err := page.PDF(printOptions(settings))
	if err != nil {
		return nil, renderError(ctx, "printing", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, renderError(ctx, "reading PDF stream", err)
	}
	return data, nil
}

// RenderDiagram injects the Mermaid library into the diagram page, renders
// definition, waits for the settle delay, pins the SVG to its intrinsic size
// and screenshots it.
func (r *rodRenderer) RenderDiagram(ctx context.Context, pageHTML, definition string, d DiagramSettings) (*diagramShot, error) {
	script, err := r.mermaid.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := r.browser.Wait(ctx); err != nil {
		return nil, err
	}

	tctx, cancel := r.withTimeout(ctx)
	defer cancel()

	page, cleanup, err := r.openPage(tctx, pageHTML)
	if err != nil {
		return nil, renderError(ctx, "loading diagram page", err)
	}
	defer cleanup()

	if err := page.AddScriptTag("", script); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: mermaid: injecting script: %v", ErrLibraryUnavailable, err)
	}

	res, err := page.Eval(renderDiagramJS, definition, d.Theme)
	if err != nil {
		return nil, renderError(ctx, "mermaid render", err)
	}
	svg := res.Value.Str()
	if strings.TrimSpace(svg) == "" {
		return nil, fmt.Errorf("%w: mermaid returned no SVG", ErrRenderFailure)
	}

	if err := sleep(tctx, d.Settle); err != nil {
		return nil, renderError(ctx, "settling", err)
	}

	w, h := measureSVG(svg)
	r.logger.Debug().Int("width", w).Int("height", h).Msg("diagram measured")

	el, err := page.Element("#diagram svg")
	if err != nil {
		return nil, renderError(ctx, "locating SVG", err)
	}
	if _, err := el.Eval(sizeDiagramJS, w, h); err != nil {
		return nil, renderError(ctx, "sizing SVG", err)
	}
	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             w,
		Height:            h,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return nil, renderError(ctx, "setting viewport", err)
	}

	shot, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, renderError(ctx, "capturing SVG", err)
	}
	return &diagramShot{SVG: svg, PNG: shot, Width: w, Height: h}, nil
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// fileURL converts an absolute path to a file:// URL.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive paths
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
