package page2doc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/alnah/go-page2doc/internal/assets"
	"github.com/alnah/go-page2doc/internal/fileutil"
	"github.com/alnah/go-page2doc/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector          = (*pipeline.CSSInjection)(nil)
)

// Converter renders Markdown to PDF and Mermaid definitions to PNG.
// Create with NewConverter, call Convert any number of times, and Close when
// done. A Converter drives one browser and is not safe for concurrent use;
// use a ConverterPool for parallel work.
type Converter struct {
	cfg           converterConfig
	library       *assets.Library
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	cssInjector   pipeline.CSSInjector
	document      *pipeline.PageWrapper
	diagramPage   string

	browser  *BrowserReadiness
	mermaid  *Readiness[string]
	renderer renderer
}

// NewConverter creates a Converter. Browser launch and the Mermaid download
// are deferred to first use unless WithPreload asks otherwise.
// Returns an error if assets cannot be loaded or the style is unknown.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:    defaultTimeout,
			dateFormat: DefaultDateFormat,
			logger:     zerolog.Nop(),
			now:        time.Now,
		},
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		cssInjector:   &pipeline.CSSInjection{},
	}

	for _, opt := range opts {
		opt(c)
	}

	lib, err := assets.Open(c.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	c.library = lib

	if err := c.resolveStyle(); err != nil {
		return nil, err
	}
	if err := c.loadTemplates(); err != nil {
		return nil, err
	}

	if c.renderer == nil {
		ownsBrowser := c.browser == nil
		if ownsBrowser {
			c.browser = NewBrowserReadiness(c.cfg.browserOpts)
			c.browser.SetLogger(c.cfg.logger)
		}
		if c.mermaid == nil {
			c.mermaid = NewMermaidReadiness(c.cfg.mermaidScript, c.cfg.httpClient)
			c.mermaid.SetLogger(c.cfg.logger)
		}
		c.renderer = &rodRenderer{
			browser:     c.browser,
			mermaid:     c.mermaid,
			ownsBrowser: ownsBrowser,
			timeout:     c.cfg.timeout,
			logger:      c.cfg.logger,
		}
		c.preloadFutures()
	}

	return c, nil
}

func (c *Converter) preloadFutures() {
	for _, k := range c.cfg.preload {
		c.browser.Start()
		if k == KindMermaid {
			c.mermaid.Start()
		}
	}
}

// Convert runs the pipeline for input.Kind and returns the artifact.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := validateInput(input); err != nil {
		return nil, err
	}

	name, err := FilenameWithFormat(input.Kind, c.cfg.dateFormat, c.cfg.now())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	switch input.Kind {
	case KindMermaid:
		result, err = c.convertDiagram(ctx, input)
	default:
		result, err = c.convertMarkdown(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	result.Kind = input.Kind
	result.Filename = name
	c.cfg.logger.Debug().
		Str("kind", string(input.Kind)).
		Str("file", name).
		Int("bytes", len(result.Data)).
		Dur("took", time.Since(start)).
		Msg("converted")
	return result, nil
}

func (c *Converter) convertMarkdown(ctx context.Context, input Input) (*Result, error) {
	md := c.preprocessor.PreprocessMarkdown(ctx, input.Content)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	frag, err := c.htmlConverter.ToHTML(ctx, md)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	fragment := frag.HTML
	if input.SourceDir != "" {
		fragment, err = pipeline.RewriteRelativePaths(fragment, input.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("rewriting relative paths: %w", err)
		}
	}

	page, err := c.document.Wrap(ctx, frag.Title, fragment)
	if err != nil {
		return nil, fmt.Errorf("wrapping page: %w", err)
	}

	// Style first, user CSS last so it can override.
	css := c.cfg.resolvedStyle
	if input.CSS != "" {
		css += "\n" + input.CSS
	}
	page = c.cssInjector.InjectCSS(ctx, page, css)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res := &Result{HTML: []byte(page)}
	if input.HTMLOnly {
		return res, nil
	}

	settings := input.Page
	if settings == nil {
		settings = DefaultPageSettings()
	}

	if settings.mode() == ModePrint {
		res.Data, err = c.renderer.PrintPDF(ctx, page, settings)
		if err != nil {
			return nil, err
		}
		return res, nil
	}

	w, h := viewportFor(settings)
	shot, err := c.renderer.Screenshot(ctx, page, w, h, settings.scale())
	if err != nil {
		return nil, err
	}
	res.Data, err = assemblePDF(shot, settings)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Converter) convertDiagram(ctx context.Context, input Input) (*Result, error) {
	d := input.Diagram.withDefaults()

	shot, err := c.renderer.RenderDiagram(ctx, c.diagramPage, strings.TrimSpace(input.Content), d)
	if err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewReader(shot.PNG))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding diagram: %v", ErrRenderFailure, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, composite(img, shot.Width, shot.Height, d)); err != nil {
		return nil, fmt.Errorf("%w: encoding PNG: %v", ErrRenderFailure, err)
	}
	return &Result{Data: buf.Bytes()}, nil
}

// Close releases the browser this converter launched.
func (c *Converter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS
// content. An empty input selects the default style.
func (c *Converter) resolveStyle() error {
	input := c.cfg.styleInput
	if input == "" {
		input = assets.DefaultStyleName
	}

	if fileutil.IsFilePath(input) && !isCSS(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("%w: reading %q: %v", ErrStyleNotFound, input, err)
		}
		c.cfg.resolvedStyle = string(content)
		return nil
	}

	if isCSS(input) {
		c.cfg.resolvedStyle = input
		return nil
	}

	css, err := c.library.Style(input)
	if err != nil {
		if assets.IsNotFound(err) || errors.Is(err, assets.ErrInvalidAssetName) {
			return fmt.Errorf("%w: %q", ErrStyleNotFound, input)
		}
		return fmt.Errorf("loading style %q: %w", input, err)
	}
	c.cfg.resolvedStyle = css
	return nil
}

// isCSS reports whether s is CSS content rather than a name or path.
func isCSS(s string) bool {
	return strings.Contains(s, "{")
}

func (c *Converter) loadTemplates() error {
	docSrc, err := c.library.Template(assets.DocumentTemplate)
	if err != nil {
		return fmt.Errorf("loading document template: %w", err)
	}
	c.document, err = pipeline.NewPageWrapper(docSrc)
	if err != nil {
		return err
	}

	c.diagramPage, err = c.library.Template(assets.DiagramTemplate)
	if err != nil {
		return fmt.Errorf("loading diagram template: %w", err)
	}
	return nil
}

// validateInput checks the fields every conversion needs.
func validateInput(input Input) error {
	if err := input.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(input.Content) == "" {
		return fmt.Errorf("%w: no %s to convert", ErrEmptyContent, input.Kind.Noun())
	}
	if !utf8.ValidString(input.Content) || strings.ContainsRune(input.Content, 0) {
		return ErrInvalidContent
	}
	if err := input.Page.Validate(); err != nil {
		return err
	}
	return input.Diagram.Validate()
}
