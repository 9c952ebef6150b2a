package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrTemplateRender indicates the page template failed to execute.
var ErrTemplateRender = errors.New("page template rendering failed")

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block before </head>, after <body>, or at the
// start of the content, whichever is found first. The CSS is sanitized so it
// cannot close the style element.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" || ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes "</" so user CSS cannot terminate the <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// PageData fills the document template.
type PageData struct {
	Title string
	Lang  string
	Body  template.HTML
}

// PageWrapper places an HTML fragment into a full page.
type PageWrapper struct {
	tmpl *template.Template
}

// NewPageWrapper parses the document template source.
func NewPageWrapper(src string) (*PageWrapper, error) {
	tmpl, err := template.New("document").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}
	return &PageWrapper{tmpl: tmpl}, nil
}

// Wrap renders fragment into the page. The fragment is trusted: it comes from
// Goldmark with raw HTML disabled.
func (w *PageWrapper) Wrap(ctx context.Context, title, fragment string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if title == "" {
		title = "Document"
	}

	var buf bytes.Buffer
	data := PageData{
		Title: title,
		Lang:  "en",
		Body:  template.HTML(fragment), // #nosec G203 -- goldmark output, raw HTML disabled
	}
	if err := w.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}
