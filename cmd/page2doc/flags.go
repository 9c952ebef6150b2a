package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// unsetInt marks an int flag the user did not pass, where 0 is a valid value.
const unsetInt = -1

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// ioFlags holds input/output flags shared by pdf and png.
type ioFlags struct {
	output  string
	workers int
	timeout string
	text    string
}

// loadFlags holds page loading flags.
type loadFlags struct {
	noJS        bool
	readability bool
}

// markdownFlags holds Markdown to PDF flags.
type markdownFlags struct {
	style       string
	css         string
	mode        string
	pageSize    string
	orientation string
	margin      float64
	scale       float64
	html        bool // write HTML alongside the PDF
	htmlOnly    bool // write HTML only, skip the browser
}

// diagramFlags holds Mermaid to PNG flags.
type diagramFlags struct {
	theme         string
	padding       int
	minWidth      int
	minHeight     int
	settle        string
	mermaidScript string
}

// convertFlags holds all flags for the pdf and png commands.
type convertFlags struct {
	common   commonFlags
	io       ioFlags
	load     loadFlags
	markdown markdownFlags
	diagram  diagramFlags
}

// extractFlags holds flags for the extract command.
type extractFlags struct {
	common commonFlags
	load   loadFlags
	kind   string
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addIOFlags adds input/output flags to a FlagSet.
func addIOFlags(fs *flag.FlagSet, f *ioFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render timeout per input (e.g., 30s, 2m)")
	fs.StringVar(&f.text, "text", "", "convert this text instead of inputs")
}

// addLoadFlags adds page loading flags to a FlagSet.
func addLoadFlags(fs *flag.FlagSet, f *loadFlags) {
	fs.BoolVar(&f.noJS, "no-js", false, "fetch pages over HTTP without running scripts")
	fs.BoolVar(&f.readability, "readability", false, "try a readability pass before the last-resort scan")
}

// addMarkdownFlags adds Markdown rendering flags to a FlagSet.
func addMarkdownFlags(fs *flag.FlagSet, f *markdownFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.css, "css", "", "extra CSS file applied after the style")
	fs.StringVar(&f.mode, "mode", "", "render mode: raster, print")
	fs.StringVarP(&f.pageSize, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "print margin in inches (0.25-3.0)")
	fs.Float64Var(&f.scale, "scale", 0, "raster device scale factor (1-4)")
	fs.BoolVar(&f.html, "html", false, "write HTML alongside the PDF")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write HTML only, skip the PDF")
}

// addDiagramFlags adds Mermaid rendering flags to a FlagSet.
func addDiagramFlags(fs *flag.FlagSet, f *diagramFlags) {
	fs.StringVar(&f.theme, "theme", "", "mermaid theme: default, dark, forest, neutral, base")
	fs.IntVar(&f.padding, "padding", unsetInt, "white padding around the diagram in pixels")
	fs.IntVar(&f.minWidth, "min-width", 0, "minimum canvas width")
	fs.IntVar(&f.minHeight, "min-height", 0, "minimum canvas height")
	fs.StringVar(&f.settle, "settle", "", "delay between render and capture (e.g., 500ms)")
	fs.StringVar(&f.mermaidScript, "mermaid-script", "", "mermaid.min.js file path or URL")
}

// parseConvertFlags parses pdf or png flags and returns positional args.
func parseConvertFlags(cmd string, args []string, usage io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &convertFlags{}

	addCommonFlags(fs, &f.common)
	addIOFlags(fs, &f.io)
	addLoadFlags(fs, &f.load)
	if cmd == cmdPNG {
		addDiagramFlags(fs, &f.diagram)
		fs.Usage = func() { printPNGUsage(usage) }
	} else {
		addMarkdownFlags(fs, &f.markdown)
		f.diagram.padding = unsetInt
		fs.Usage = func() { printPDFUsage(usage) }
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseExtractFlags parses extract flags and returns positional args.
func parseExtractFlags(args []string, usage io.Writer) (*extractFlags, []string, error) {
	fs := flag.NewFlagSet(cmdExtract, flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &extractFlags{}

	addCommonFlags(fs, &f.common)
	addLoadFlags(fs, &f.load)
	fs.StringVarP(&f.kind, "kind", "k", "markdown", "content to extract: markdown, mermaid")
	fs.BoolVar(&f.json, "json", false, "print the response envelope as JSON")
	fs.Usage = func() { printExtractUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
