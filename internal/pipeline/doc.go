// Package pipeline turns Markdown text into a styled, self-contained HTML page
// ready for the browser renderer.
//
// Stages:
//   - Markdown preprocessing (line endings, front matter, highlight syntax)
//   - Markdown to HTML conversion via Goldmark
//   - Relative link resolution against a directory or page URL
//   - Page wrapping from a template and CSS injection
//
// Rasterization and PDF assembly live in the root package; this package only
// deals with document structure.
package pipeline
