package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// Fragment is rendered Markdown: a body fragment and the plain text of its
// top-level heading.
type Fragment struct {
	HTML  string
	Title string
}

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (Fragment, error)
}

// GoldmarkConverter renders Markdown with goldmark: GFM, footnotes, heading
// IDs and class-based chroma highlighting. Raw HTML stays escaped.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

func NewGoldmarkConverter() *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML renders content. goldmark takes no context, so the work runs in a
// goroutine that is abandoned when ctx ends.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (Fragment, error) {
	if err := ctx.Err(); err != nil {
		return Fragment{}, err
	}

	type result struct {
		frag Fragment
		err  error
	}
	done := make(chan result, 1)

	go func() {
		frag, err := c.render([]byte(content))
		done <- result{frag, err}
	}()

	select {
	case <-ctx.Done():
		return Fragment{}, ctx.Err()
	case r := <-done:
		return r.frag, r.err
	}
}

func (c *GoldmarkConverter) render(src []byte) (Fragment, error) {
	doc := c.md.Parser().Parse(text.NewReader(src))
	title := headingTitle(doc, src)

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, src, doc); err != nil {
		return Fragment{}, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return Fragment{HTML: ConvertMarkPlaceholders(buf.String()), Title: title}, nil
}

// headingTitle returns the text of the first heading of the highest level
// present, or "" when the document has none.
func headingTitle(doc ast.Node, src []byte) string {
	var (
		title string
		level = 7
	)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if h.Level < level {
			level = h.Level
			title = inlineText(h, src)
		}
		if level == 1 {
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})
	return title
}

var stripMarks = strings.NewReplacer(MarkStartPlaceholder, "", MarkEndPlaceholder, "")

// inlineText flattens the inline children of n to plain text.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(resolveText(t.Segment.Value(src)))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(stripMarks.Replace(b.String()))
}

// resolveText applies the escapes goldmark resolves at render time.
func resolveText(v []byte) []byte {
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	return util.ResolveEntityNames(v)
}

var _ HTMLConverter = (*GoldmarkConverter)(nil)
