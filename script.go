package page2doc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/alnah/go-page2doc/internal/fileutil"
)

// DefaultMermaidScript is where the Mermaid library is fetched from when no
// local copy is configured.
const DefaultMermaidScript = "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.min.js"

// maxScriptSize caps the downloaded library (the minified bundle is ~3MB).
const maxScriptSize = 32 << 20

// NewMermaidReadiness creates a future that loads the Mermaid library source
// from a file path or an http(s) URL. An empty source means
// DefaultMermaidScript. client may be nil.
func NewMermaidReadiness(source string, client *http.Client) *Readiness[string] {
	if source == "" {
		source = DefaultMermaidScript
	}
	if client == nil {
		client = http.DefaultClient
	}
	return NewReadiness("mermaid", func(ctx context.Context) (string, error) {
		script, err := loadScript(ctx, source, client)
		if err != nil {
			return "", err
		}
		if !strings.Contains(script, "mermaid") {
			return "", fmt.Errorf("%s does not look like the Mermaid library", source)
		}
		return script, nil
	})
}

func loadScript(ctx context.Context, source string, client *http.Client) (string, error) {
	if !fileutil.IsURL(source) {
		script, err := fileutil.ReadText(source)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", source, err)
		}
		return script, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", source, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: %s", source, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptSize))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", source, err)
	}
	return string(body), nil
}
