package extract

import (
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
)

// derive produces the candidate texts for sel according to mode, in the
// order they are offered to the classifier.
//
// Markdown mode converts the subtree back to Markdown and falls back to the
// raw text, since a container holding Markdown source as plain text comes
// out of the converter escaped ("\# Title"). A container with no child
// elements only offers its raw text.
func derive(sel *goquery.Selection, mode Mode, base *url.URL) ([]string, error) {
	switch mode {
	case ModeCode:
		return []string{strings.TrimSpace(codeText(sel))}, nil
	case ModeMarkdown:
		raw := strings.TrimSpace(sel.Text())
		if sel.Children().Length() == 0 {
			return []string{raw}, nil
		}
		md, err := toMarkdown(sel, base)
		if err != nil {
			return nil, err
		}
		if md == raw {
			return []string{md}, nil
		}
		return []string{md, raw}, nil
	default:
		return []string{strings.TrimSpace(sel.Text())}, nil
	}
}

// codeText reads the source text of a code-bearing element.
func codeText(sel *goquery.Selection) string {
	switch goquery.NodeName(sel) {
	case "code":
		return sel.Text()
	case "pre":
		if code := sel.Find("code").First(); code.Length() > 0 {
			return code.Text()
		}
		return sel.Text()
	default:
		return sel.Text()
	}
}

// toMarkdown converts the element and its subtree back into Markdown.
// Relative links are resolved against base when it is set.
func toMarkdown(sel *goquery.Selection, base *url.URL) (string, error) {
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return "", fmt.Errorf("rendering element: %w", err)
	}
	return HTMLToMarkdown(html, base)
}

// HTMLToMarkdown converts an HTML fragment to Markdown.
func HTMLToMarkdown(html string, base *url.URL) (string, error) {
	var opts []converter.ConvertOptionFunc
	if base != nil && base.Host != "" {
		opts = append(opts, converter.WithDomain(base.Scheme+"://"+base.Host))
	}
	md, err := htmltomarkdown.ConvertString(html, opts...)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}
