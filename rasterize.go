package page2doc

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/go-rod/rod/lib/proto"
	"github.com/jung-kurt/gofpdf"
)

// cssPixelsPerInch is the browser's CSS reference resolution.
const cssPixelsPerInch = 96

// paperInches maps page sizes to portrait width and height in inches.
var paperInches = map[string][2]float64{
	PageSizeA4:     {210 / 25.4, 297 / 25.4},
	PageSizeLetter: {8.5, 11},
	PageSizeLegal:  {8.5, 14},
}

// paperSize returns the oriented width and height in inches.
func paperSize(p *PageSettings) (w, h float64) {
	size, orientation := PageSizeA4, OrientationPortrait
	if p != nil {
		size, orientation = strings.ToLower(p.Size), strings.ToLower(p.Orientation)
	}
	dims, ok := paperInches[size]
	if !ok {
		dims = paperInches[PageSizeA4]
	}
	w, h = dims[0], dims[1]
	if orientation == OrientationLandscape {
		w, h = h, w
	}
	return w, h
}

// viewportFor returns the page size in CSS pixels.
func viewportFor(p *PageSettings) (w, h int) {
	wi, hi := paperSize(p)
	return int(math.Round(wi * cssPixelsPerInch)), int(math.Round(hi * cssPixelsPerInch))
}

// pageSlices cuts an imgW x imgH image into bands that each fill one page of
// pageW x pageH when scaled to the page width. Every band but the last is
// exactly one page tall; together they cover the image once.
func pageSlices(imgW, imgH int, pageW, pageH float64) []image.Rectangle {
	if imgW <= 0 || imgH <= 0 || pageW <= 0 || pageH <= 0 {
		return nil
	}
	band := max(int(math.Round(pageH*float64(imgW)/pageW)), 1)

	slices := make([]image.Rectangle, 0, (imgH+band-1)/band)
	for y := 0; y < imgH; y += band {
		slices = append(slices, image.Rect(0, y, imgW, min(y+band, imgH)))
	}
	return slices
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// assemblePDF places a full-page screenshot onto PDF pages, one band per
// page, each drawn at the top of its page at full page width.
func assemblePDF(screenshot []byte, p *PageSettings) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(screenshot))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding screenshot: %v", ErrRenderFailure, err)
	}
	src, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported screenshot image %T", ErrRenderFailure, img)
	}

	orientation, size := "P", PageSizeA4
	if p != nil {
		size = strings.ToLower(p.Size)
		if strings.EqualFold(p.Orientation, OrientationLandscape) {
			orientation = "L"
		}
	}

	pdf := gofpdf.New(orientation, "mm", size, "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pageW, pageH := pdf.GetPageSize()

	bounds := img.Bounds()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	for i, r := range pageSlices(bounds.Dx(), bounds.Dy(), pageW, pageH) {
		var buf bytes.Buffer
		if err := png.Encode(&buf, src.SubImage(r.Add(bounds.Min))); err != nil {
			return nil, fmt.Errorf("%w: encoding page %d: %v", ErrRenderFailure, i+1, err)
		}

		name := fmt.Sprintf("page-%d", i+1)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.AddPage()
		h := float64(r.Dy()) * pageW / float64(r.Dx())
		pdf.ImageOptions(name, 0, 0, pageW, h, false, opts, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("%w: assembling PDF: %v", ErrRenderFailure, err)
	}
	return out.Bytes(), nil
}

// printOptions builds the PrintToPDF request for print mode.
func printOptions(p *PageSettings) *proto.PagePrintToPDF {
	if p == nil {
		p = DefaultPageSettings()
	}
	w, h := paperSize(&PageSettings{Size: p.Size})
	return &proto.PagePrintToPDF{
		Landscape:       strings.EqualFold(p.Orientation, OrientationLandscape),
		PaperWidth:      floatPtr(w),
		PaperHeight:     floatPtr(h),
		MarginTop:       floatPtr(p.Margin),
		MarginBottom:    floatPtr(p.Margin),
		MarginLeft:      floatPtr(p.Margin),
		MarginRight:     floatPtr(p.Margin),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
