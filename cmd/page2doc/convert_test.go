package main

// Notes:
// - End-to-end runs of pdf/png go through runConvertCmd with fakePool, so
//   inputs, outputs and exit codes are checked without Chrome.
// - TestConvert_HTMLOnly_RealPool uses the real converter pool; --html-only
//   never starts a browser.
// - Pure helpers (resolveInputs, mergeFlags, splitOutput, outputNamer,
//   resolveTimeout, validateWorkers) are tested directly.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	page2doc "github.com/alnah/go-page2doc"
	"github.com/alnah/go-page2doc/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ---------------------------------------------------------------------------
// TestConvert - pdf and png runs against a fake pool
// ---------------------------------------------------------------------------

func TestConvert_PDF_Files(t *testing.T) {
	t.Parallel()

	in, out := t.TempDir(), filepath.Join(t.TempDir(), "docs")
	a := writeFile(t, in, "a.md", "# A")
	b := writeFile(t, in, "b.markdown", "# B")

	pool := newFakePool()
	env, stdout, stderr := newTestEnv(pool)

	code := runConvertCmd(context.Background(), cmdPDF, []string{"-w", "2", "-o", out, a, b}, env)
	require.Equal(t, ExitSuccess, code, stderr.String())

	first := filepath.Join(out, "markdown-"+fakeStamp+".pdf")
	second := filepath.Join(out, "markdown-"+fakeStamp+"-2.pdf")
	assert.FileExists(t, first)
	assert.FileExists(t, second)
	assert.Contains(t, stdout.String(), "Created ")
	assert.Contains(t, stdout.String(), "2 succeeded, 0 failed")
	assert.Contains(t, stderr.String(), "File loaded successfully!")

	inputs := pool.conv.received()
	require.Len(t, inputs, 2)
	absIn, err := filepath.Abs(in)
	require.NoError(t, err)
	for _, got := range inputs {
		assert.Equal(t, page2doc.KindMarkdown, got.Kind)
		assert.Equal(t, absIn, got.SourceDir)
		require.NotNil(t, got.Page)
		assert.Equal(t, page2doc.ModeRaster, got.Page.Mode)
		assert.Equal(t, "a4", got.Page.Size)
	}
	assert.True(t, pool.closed)
	assert.Equal(t, 2, pool.size)
}

func TestConvert_PDF_TextToFile(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "notes.pdf")
	pool := newFakePool()
	env, stdout, stderr := newTestEnv(pool)

	code := runConvertCmd(context.Background(), cmdPDF, []string{
		"--text", "# Notes", "-o", out, "--mode", "print", "--page-size", "letter", "--margin", "1",
	}, env)
	require.Equal(t, ExitSuccess, code, stderr.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "artifact:# Notes", string(data))
	assert.Contains(t, stdout.String(), "Created "+out)
	assert.Contains(t, stderr.String(), "Markdown ready for conversion")

	inputs := pool.conv.received()
	require.Len(t, inputs, 1)
	assert.Empty(t, inputs[0].SourceDir)
	assert.Equal(t, page2doc.ModePrint, inputs[0].Page.Mode)
	assert.Equal(t, "letter", inputs[0].Page.Size)
	assert.InDelta(t, 1.0, inputs[0].Page.Margin, 1e-9)
}

func TestConvert_PDF_Stdin(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	pool := newFakePool()
	env, _, stderr := newTestEnv(pool)
	env.Stdin = strings.NewReader("# From stdin\n")

	code := runConvertCmd(context.Background(), cmdPDF, []string{"-o", out, "-"}, env)
	require.Equal(t, ExitSuccess, code, stderr.String())

	inputs := pool.conv.received()
	require.Len(t, inputs, 1)
	assert.Equal(t, "# From stdin\n", inputs[0].Content)
}

func TestConvert_PDF_HTMLAlongside(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "doc.pdf")
	env, _, stderr := newTestEnv(newFakePool())

	code := runConvertCmd(context.Background(), cmdPDF, []string{"--text", "# Hi", "--html", "-o", out}, env)
	require.Equal(t, ExitSuccess, code, stderr.String())

	assert.FileExists(t, out)
	html, err := os.ReadFile(filepath.Join(filepath.Dir(out), "doc.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "# Hi")
}

func TestConvert_PDF_CSSFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	css := writeFile(t, dir, "extra.css", "h1 { color: red; }")
	pool := newFakePool()
	env, _, stderr := newTestEnv(pool)

	code := runConvertCmd(context.Background(), cmdPDF, []string{"--text", "# Hi", "--css", css, "-o", dir}, env)
	require.Equal(t, ExitSuccess, code, stderr.String())

	inputs := pool.conv.received()
	require.Len(t, inputs, 1)
	assert.Equal(t, "h1 { color: red; }", inputs[0].CSS)
}

func TestConvert_PNG_DiagramSettings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "flow.mmd", "graph TD\nA-->B")
	pool := newFakePool()
	env, _, stderr := newTestEnv(pool)

	code := runConvertCmd(context.Background(), cmdPNG, []string{
		"-o", dir, "--theme", "dark", "--padding", "0", "--min-width", "1024", "--settle", "1s", src,
	}, env)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.FileExists(t, filepath.Join(dir, "mermaid-"+fakeStamp+".png"))

	inputs := pool.conv.received()
	require.Len(t, inputs, 1)
	got := inputs[0]
	assert.Equal(t, page2doc.KindMermaid, got.Kind)
	require.NotNil(t, got.Diagram)
	assert.Equal(t, "dark", got.Diagram.Theme)
	assert.Equal(t, 0, got.Diagram.Padding)
	assert.Equal(t, 1024, got.Diagram.MinWidth)
	assert.Equal(t, 600, got.Diagram.MinHeight)
	assert.Equal(t, time.Second, got.Diagram.Settle)
}

func TestConvert_PNG_DefaultPadding(t *testing.T) {
	t.Parallel()

	pool := newFakePool()
	env, _, stderr := newTestEnv(pool)

	code := runConvertCmd(context.Background(), cmdPNG, []string{"--text", "graph TD\nA-->B", "-o", t.TempDir()}, env)
	require.Equal(t, ExitSuccess, code, stderr.String())

	inputs := pool.conv.received()
	require.Len(t, inputs, 1)
	assert.Equal(t, 40, inputs[0].Diagram.Padding)
}

func TestConvert_HTMLFileIsExtracted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	page := writeFile(t, dir, "readme.html", `<!DOCTYPE html><html><body>
<article class="markdown-body"><h1>Project</h1><p>Hello.</p>
<pre><code class="language-mermaid">graph TD
A-->B</code></pre></article></body></html>`)

	pool := newFakePool()
	env, _, stderr := newTestEnv(pool)

	code := runConvertCmd(context.Background(), cmdPNG, []string{"-o", dir, page}, env)
	require.Equal(t, ExitSuccess, code, stderr.String())

	inputs := pool.conv.received()
	require.Len(t, inputs, 1)
	assert.Equal(t, "graph TD\nA-->B", inputs[0].Content)
}

func TestConvert_Failures(t *testing.T) {
	t.Parallel()

	t.Run("empty file is not converted", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		empty := writeFile(t, dir, "empty.md", "   \n")
		pool := newFakePool()
		env, _, stderr := newTestEnv(pool)

		code := runConvertCmd(context.Background(), cmdPDF, []string{"-o", dir, empty}, env)
		assert.Equal(t, ExitUsage, code)
		assert.Contains(t, stderr.String(), "Failed to generate PDF: "+empty)
		assert.Contains(t, stderr.String(), "no markdown content to convert")
		assert.Empty(t, pool.conv.received())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		env, _, stderr := newTestEnv(newFakePool())

		code := runConvertCmd(context.Background(), cmdPDF, []string{"-o", dir, filepath.Join(dir, "nope.md")}, env)
		assert.Equal(t, ExitIO, code)
		assert.Contains(t, stderr.String(), "failed to read input")
	})

	t.Run("render failure", func(t *testing.T) {
		t.Parallel()

		pool := newFakePool()
		pool.conv.err = fmt.Errorf("%w: screenshot: boom", page2doc.ErrRenderFailure)
		env, _, stderr := newTestEnv(pool)

		code := runConvertCmd(context.Background(), cmdPNG, []string{"--text", "graph TD", "-o", t.TempDir()}, env)
		assert.Equal(t, ExitBrowser, code)
		assert.Contains(t, stderr.String(), "Failed to generate PNG: text: ")
		assert.Contains(t, stderr.String(), "boom")
	})

	t.Run("browser unavailable", func(t *testing.T) {
		t.Parallel()

		pool := newFakePool()
		pool.acquireErr = fmt.Errorf("%w: no chrome", page2doc.ErrBrowserConnect)
		env, _, stderr := newTestEnv(pool)

		code := runConvertCmd(context.Background(), cmdPDF, []string{"--text", "# x", "-o", t.TempDir()}, env)
		assert.Equal(t, ExitBrowser, code)
		assert.Contains(t, stderr.String(), "no chrome")
	})

	t.Run("file output with several inputs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a := writeFile(t, dir, "a.md", "# A")
		b := writeFile(t, dir, "b.md", "# B")
		env, _, stderr := newTestEnv(newFakePool())

		code := runConvertCmd(context.Background(), cmdPDF, []string{"-o", filepath.Join(dir, "out.pdf"), a, b}, env)
		assert.Equal(t, ExitUsage, code)
		assert.Contains(t, stderr.String(), "names a file")
	})

	t.Run("missing css file", func(t *testing.T) {
		t.Parallel()

		env, _, stderr := newTestEnv(newFakePool())

		code := runConvertCmd(context.Background(), cmdPDF, []string{"--text", "# x", "--css", "/nonexistent/extra.css"}, env)
		assert.Equal(t, ExitIO, code)
		assert.Contains(t, stderr.String(), "failed to read CSS file")
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		pool := newFakePool()
		env, _, stderr := newTestEnv(pool)

		code := runConvertCmd(ctx, cmdPDF, []string{"--text", "# x", "-o", t.TempDir()}, env)
		assert.Equal(t, ExitGeneral, code)
		assert.Contains(t, stderr.String(), "interrupted")
		assert.Empty(t, pool.conv.received())
	})
}

func TestConvert_HTMLOnly_RealPool(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	env, stdout, stderr := newTestEnv(nil)
	env.NewPool = newConverterPool

	code := runConvertCmd(context.Background(), cmdPDF, []string{
		"--text", "# Release Notes\n\nShipped ==today==.", "--html-only", "-o", out,
	}, env)
	require.Equal(t, ExitSuccess, code, stderr.String())

	matches, err := filepath.Glob(filepath.Join(out, "markdown-*.html"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	html, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(html), `<h1 id="release-notes">`)
	assert.Contains(t, string(html), "<mark>today</mark>")
	assert.Contains(t, stdout.String(), "Created "+matches[0])

	pdfs, err := filepath.Glob(filepath.Join(out, "*.pdf"))
	require.NoError(t, err)
	assert.Empty(t, pdfs)
}

// ---------------------------------------------------------------------------
// TestResolveInputs - Argument classification
// ---------------------------------------------------------------------------

func TestResolveInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    page2doc.Kind
		args    []string
		text    string
		stdin   string
		want    []inputSource
		wantErr error
	}{
		{
			name: "text input",
			kind: page2doc.KindMarkdown,
			text: "# Hi",
			want: []inputSource{{Label: "text", Source: page2doc.SourceManual, Content: "# Hi"}},
		},
		{
			name:    "text with inputs",
			kind:    page2doc.KindMarkdown,
			text:    "# Hi",
			args:    []string{"a.md"},
			wantErr: ErrUsage,
		},
		{
			name:    "nothing",
			kind:    page2doc.KindMarkdown,
			wantErr: ErrNoInput,
		},
		{
			name:  "stdin",
			kind:  page2doc.KindMermaid,
			args:  []string{"-"},
			stdin: "graph TD",
			want:  []inputSource{{Label: "stdin", Source: page2doc.SourceManual, Content: "graph TD"}},
		},
		{
			name:    "stdin twice",
			kind:    page2doc.KindMermaid,
			args:    []string{"-", "-"},
			stdin:   "graph TD",
			wantErr: ErrUsage,
		},
		{
			name: "url and files",
			kind: page2doc.KindMarkdown,
			args: []string{"https://example.com/readme", "page.HTML", "notes.md", "notes.txt"},
			want: []inputSource{
				{Label: "https://example.com/readme", Source: page2doc.SourceWeb, Target: "https://example.com/readme", Extract: true},
				{Label: "page.HTML", Source: page2doc.SourceFile, Target: "page.HTML", Extract: true},
				{Label: "notes.md", Source: page2doc.SourceFile, Target: "notes.md"},
				{Label: "notes.txt", Source: page2doc.SourceFile, Target: "notes.txt"},
			},
		},
		{
			name: "mermaid files",
			kind: page2doc.KindMermaid,
			args: []string{"flow.mmd", "seq.mermaid"},
			want: []inputSource{
				{Label: "flow.mmd", Source: page2doc.SourceFile, Target: "flow.mmd"},
				{Label: "seq.mermaid", Source: page2doc.SourceFile, Target: "seq.mermaid"},
			},
		},
		{
			name:    "markdown file for png",
			kind:    page2doc.KindMermaid,
			args:    []string{"notes.md"},
			wantErr: ErrInvalidExtension,
		},
		{
			name:    "no extension",
			kind:    page2doc.KindMarkdown,
			args:    []string{"README"},
			wantErr: ErrInvalidExtension,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveInputs(tt.kind, tt.args, tt.text, strings.NewReader(tt.stdin))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - Flag precedence over config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("unset flags keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Diagram.Padding = 12
		flags := &convertFlags{diagram: diagramFlags{padding: unsetInt}}

		mergeFlags(flags, cfg)

		assert.Equal(t, config.DefaultConfig().Markdown, cfg.Markdown)
		assert.Equal(t, 12, cfg.Diagram.Padding)
		assert.False(t, cfg.Extract.NoJS)
	})

	t.Run("set flags override config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Output.Dir = "from-config"
		flags := &convertFlags{
			io:   ioFlags{output: "from-flag"},
			load: loadFlags{noJS: true, readability: true},
			markdown: markdownFlags{
				style: "github", mode: "print", pageSize: "legal",
				orientation: "landscape", margin: 1.5, scale: 3,
			},
			diagram: diagramFlags{
				theme: "forest", padding: 0, minWidth: 1000, minHeight: 700,
				settle: "2s", mermaidScript: "/opt/mermaid.min.js",
			},
		}

		mergeFlags(flags, cfg)

		assert.Equal(t, "from-flag", cfg.Output.Dir)
		assert.True(t, cfg.Extract.NoJS)
		assert.True(t, cfg.Extract.Readability)
		assert.Equal(t, "github", cfg.Markdown.Style)
		assert.Equal(t, "print", cfg.Markdown.Mode)
		assert.Equal(t, "legal", cfg.Markdown.Page.Size)
		assert.Equal(t, "landscape", cfg.Markdown.Page.Orientation)
		assert.InDelta(t, 1.5, cfg.Markdown.Page.Margin, 1e-9)
		assert.InDelta(t, 3.0, cfg.Markdown.Scale, 1e-9)
		assert.Equal(t, "forest", cfg.Diagram.Theme)
		assert.Equal(t, 0, cfg.Diagram.Padding)
		assert.Equal(t, 1000, cfg.Diagram.MinWidth)
		assert.Equal(t, 700, cfg.Diagram.MinHeight)
		assert.Equal(t, "2s", cfg.Diagram.Settle)
		assert.Equal(t, "/opt/mermaid.min.js", cfg.Diagram.Script)
	})
}

// ---------------------------------------------------------------------------
// TestSplitOutput - File or directory
// ---------------------------------------------------------------------------

func TestSplitOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		output   string
		kind     page2doc.Kind
		htmlOnly bool
		count    int
		wantDir  string
		wantFile string
		wantErr  bool
	}{
		{name: "empty", kind: page2doc.KindMarkdown, count: 1},
		{name: "directory", output: "out", kind: page2doc.KindMarkdown, count: 3, wantDir: "out"},
		{name: "pdf file", output: "out/doc.pdf", kind: page2doc.KindMarkdown, count: 1, wantFile: "out/doc.pdf"},
		{name: "png file", output: "chart.PNG", kind: page2doc.KindMermaid, count: 1, wantFile: "chart.PNG"},
		{name: "pdf name for png is a directory", output: "x.pdf", kind: page2doc.KindMermaid, count: 1, wantDir: "x.pdf"},
		{name: "html file with html-only", output: "doc.html", kind: page2doc.KindMarkdown, htmlOnly: true, count: 1, wantFile: "doc.html"},
		{name: "file with several inputs", output: "doc.pdf", kind: page2doc.KindMarkdown, count: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir, file, err := splitOutput(tt.output, tt.kind, tt.htmlOnly, tt.count)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, dir)
			assert.Equal(t, tt.wantFile, file)
		})
	}
}

// ---------------------------------------------------------------------------
// TestOutputNamer - Collision-free names
// ---------------------------------------------------------------------------

func TestOutputNamer_Reserve(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := writeFile(t, dir, "mermaid-x.png", "old")

	n := newOutputNamer()
	assert.Equal(t, filepath.Join(dir, "mermaid-x-2.png"), n.Reserve(existing))
	assert.Equal(t, filepath.Join(dir, "mermaid-x-3.png"), n.Reserve(existing))

	fresh := filepath.Join(dir, "markdown-y.pdf")
	assert.Equal(t, fresh, n.Reserve(fresh))
	assert.Equal(t, filepath.Join(dir, "markdown-y-2.pdf"), n.Reserve(fresh))
}

func TestHTMLOutputPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "out/doc.html", htmlOutputPath("out/doc.pdf"))
	assert.Equal(t, "markdown-1.html", htmlOutputPath("markdown-1.pdf"))
}

// ---------------------------------------------------------------------------
// TestResolveTimeout / TestValidateWorkers - Numeric flags
// ---------------------------------------------------------------------------

func TestResolveTimeout(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Browser.Timeout = "45s"

	tests := []struct {
		name    string
		flag    string
		want    time.Duration
		wantErr bool
	}{
		{name: "config value", want: 45 * time.Second},
		{name: "flag wins", flag: "2m", want: 2 * time.Minute},
		{name: "unparseable", flag: "soon", wantErr: true},
		{name: "zero", flag: "0s", wantErr: true},
		{name: "negative", flag: "-5s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveTimeout(tt.flag, cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeout)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateWorkers(0))
	assert.NoError(t, validateWorkers(page2doc.MaxPoolSize))
	assert.ErrorIs(t, validateWorkers(-1), ErrInvalidWorkerCount)
	assert.ErrorIs(t, validateWorkers(page2doc.MaxPoolSize+1), ErrInvalidWorkerCount)
}

// ---------------------------------------------------------------------------
// TestConvertBatch - Worker behavior
// ---------------------------------------------------------------------------

func TestConvertBatch_Empty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, convertBatch(context.Background(), newFakePool(), nil, &conversionParams{}))
}

func TestCountResults(t *testing.T) {
	t.Parallel()

	got := countResults([]ConversionResult{{}, {Err: errors.New("x")}, {}})
	assert.Equal(t, ResultSummary{Succeeded: 2, Failed: 1}, got)
}
