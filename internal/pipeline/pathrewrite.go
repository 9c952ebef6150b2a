package pipeline

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// linkAttrs lists the elements whose references are rebased, and the
// attribute holding the reference.
var linkAttrs = []struct{ selector, attr string }{
	{"img[src]", "src"},
	{"a[href]", "href"},
}

// RewriteRelativePaths rebases img[src] and a[href] so the page still finds
// its images and links once it is loaded from a temp file.
//
// base is a local directory or an http(s) page URL. Against a directory,
// references become file:// URLs and must stay inside it. Against a URL,
// they resolve the way a browser would. Anchors, schemes such as data: or
// mailto:, and absolute references are left alone. An empty base returns
// the input.
func RewriteRelativePaths(htmlContent, base string) (string, error) {
	if base == "" {
		return htmlContent, nil
	}

	rebase, err := rebaser(base)
	if err != nil {
		return "", err
	}

	full := isFullDocument(htmlContent)
	doc, err := parseHTML(htmlContent, full)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, la := range linkAttrs {
		doc.Find(la.selector).Each(func(_ int, s *goquery.Selection) {
			ref, _ := s.Attr(la.attr)
			if !isRelativeRef(ref) {
				return
			}
			if abs, ok := rebase(ref); ok {
				s.SetAttr(la.attr, abs)
			}
		})
	}

	if full {
		return doc.Html()
	}
	return doc.Selection.Html()
}

// parseHTML parses a full document as is. A fragment is parsed in a body
// context so leading script, style or link elements stay where they are
// instead of moving to a synthesized head.
func parseHTML(s string, full bool) (*goquery.Document, error) {
	if full {
		return goquery.NewDocumentFromReader(strings.NewReader(s))
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return goquery.NewDocumentFromNode(body), nil
}

func isFullDocument(s string) bool {
	head := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

// rebaser returns the function mapping one relative reference to an
// absolute one; ok is false when the reference must be left alone.
func rebaser(base string) (func(ref string) (string, bool), error) {
	if u, err := url.Parse(base); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return func(ref string) (string, bool) {
			r, err := url.Parse(ref)
			if err != nil {
				return "", false
			}
			return u.ResolveReference(r).String(), true
		}, nil
	}

	dir, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolving source directory: %w", err)
	}
	return func(ref string) (string, bool) {
		if strings.HasPrefix(ref, "/") || filepath.IsAbs(ref) {
			return "", false
		}
		target := filepath.Join(dir, filepath.FromSlash(ref))
		rel, err := filepath.Rel(dir, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", false
		}
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(target)}).String(), true
	}, nil
}

var untouchedSchemes = []string{"http:", "https:", "file:", "data:", "mailto:", "javascript:", "tel:"}

// isRelativeRef reports whether ref has no scheme and is not a bare anchor.
// Root-relative references count; only URL bases resolve them.
func isRelativeRef(ref string) bool {
	if ref == "" || ref[0] == '#' {
		return false
	}
	lower := strings.ToLower(ref)
	for _, scheme := range untouchedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	return true
}
