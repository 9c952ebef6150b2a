package page2doc

import (
	"image"
	"image/draw"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// renderDiagramJS renders a definition with the injected Mermaid library and
// mounts the SVG into #diagram.
const renderDiagramJS = `async (definition, theme) => {
	mermaid.initialize({ startOnLoad: false, theme: theme, securityLevel: 'loose' });
	const { svg } = await mermaid.render('page2doc-diagram', definition);
	document.getElementById('diagram').innerHTML = svg;
	return svg;
}`

// sizeDiagramJS pins the mounted SVG to its measured size. It runs with the
// <svg> element as this.
const sizeDiagramJS = `function (width, height) {
	this.setAttribute('width', width);
	this.setAttribute('height', height);
	this.setAttribute('xmlns', 'http://www.w3.org/2000/svg');
	this.style.maxWidth = 'none';
}`

// diagramShot is a rendered diagram at its intrinsic size.
type diagramShot struct {
	SVG    string
	PNG    []byte
	Width  int
	Height int
}

var leadingNumber = regexp.MustCompile(`^\s*[-+]?(\d+\.?\d*|\.\d+)`)

// parseLength reads the numeric prefix of an SVG length ("120.5px" is 120.5).
func parseLength(s string) (float64, bool) {
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// measureSVG returns the intrinsic size of the first <svg> in markup. The
// viewBox size wins over width and height attributes; anything missing falls
// back to 800x600.
func measureSVG(markup string) (width, height int) {
	w, h := float64(fallbackDiagramWidth), float64(fallbackDiagramHeight)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return int(w), int(h)
	}
	svg := doc.Find("svg").First()
	if svg.Length() == 0 {
		return int(w), int(h)
	}

	if v, ok := parseLength(svg.AttrOr("width", "")); ok {
		w = v
	}
	if v, ok := parseLength(svg.AttrOr("height", "")); ok {
		h = v
	}

	viewBox, ok := svg.Attr("viewBox")
	if !ok {
		viewBox = svg.AttrOr("viewbox", "")
	}
	parts := strings.FieldsFunc(viewBox, func(r rune) bool { return r == ' ' || r == ',' })
	if len(parts) == 4 {
		if v, ok := parseLength(parts[2]); ok {
			w = v
		}
		if v, ok := parseLength(parts[3]); ok {
			h = v
		}
	}

	return int(math.Ceil(w)), int(math.Ceil(h))
}

// canvasSize is the PNG size for a w x h diagram: the diagram plus padding on
// every side, never smaller than the minimum canvas.
func canvasSize(w, h int, d DiagramSettings) (int, int) {
	return max(w+2*d.Padding, d.MinWidth), max(h+2*d.Padding, d.MinHeight)
}

// composite draws the w x h top-left region of shot onto a white canvas at
// (padding, padding).
func composite(shot image.Image, w, h int, d DiagramSettings) *image.RGBA {
	cw, ch := canvasSize(w, h, d)
	canvas := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	target := image.Rect(d.Padding, d.Padding, d.Padding+w, d.Padding+h)
	draw.Draw(canvas, target, shot, shot.Bounds().Min, draw.Over)
	return canvas
}
