// Package page2doc turns content found on web pages into documents:
// Markdown into a paginated PDF and Mermaid diagram definitions into a PNG.
//
// # Quick Start
//
// Extract Markdown from a page, convert it, and close when done:
//
//	ext, err := page2doc.NewExtractor(page2doc.KindMarkdown)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	md, err := ext.Extract(ctx, "https://github.com/owner/repo")
//	if err != nil {
//	    log.Fatal(err) // errors.Is(err, page2doc.ErrExtractionNotFound)
//	}
//
//	conv, err := page2doc.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, page2doc.Input{
//	    Kind:    page2doc.KindMarkdown,
//	    Content: md,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Filename, result.Data, 0644)
//
// # Extraction
//
// An Extractor looks the page host up once in a rule table: site rules
// (github.com, gitlab.com and any added with WithSites), then generic
// selectors, then every `pre code` block. Each matched element's text is
// offered to a classifier for the kind; the first accepted block wins.
// Pages can be fetched over plain HTTP (HTTPLoader) or rendered in Chrome
// (BrowserLoader) when the content is built by scripts.
//
// # Conversion
//
// Markdown is normalized, rendered with Goldmark, wrapped in a styled page
// and captured by headless Chrome. In raster mode (the default) the full-page
// screenshot is cut into page-height bands and assembled with gofpdf; print
// mode uses Chrome's vector PDF output instead.
//
// Mermaid definitions are rendered by the Mermaid library inside Chrome. The
// SVG is measured, captured at its intrinsic size and composited onto a white
// canvas with padding.
//
// # Readiness
//
// The browser and the Mermaid library are resolved once, in the background,
// by Readiness futures. A failed resolution is reported to every conversion
// that needs it as ErrLibraryUnavailable.
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to manage several browsers:
//
//	pool := page2doc.NewConverterPool(4)
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// # Browser Requirements
//
// Rendering requires Chrome/Chromium. The go-rod library downloads a managed
// Chromium on first run (~/.cache/rod/browser/). For containers and CI, set
// ROD_NO_SANDBOX=1; use ROD_BROWSER_BIN to point at a custom binary.
package page2doc
