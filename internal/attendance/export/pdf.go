package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoding for size measurement

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/sync/singleflight"
)

// Rasterizer turns a standalone HTML document into a single JPEG image at
// its natural content size. The production implementation is backed by a
// headless Chromium screenshot; tests supply an in-memory fake.
type Rasterizer interface {
	Rasterize(ctx context.Context, html string) ([]byte, error)
}

var (
	// ErrRasterize indicates the HTML could not be turned into an image.
	ErrRasterize = errors.New("export: rasterization failed")
	// ErrEmptyImage indicates the rasterizer produced an undecodable image.
	ErrEmptyImage = errors.New("export: empty or undecodable image")
)

// heightEpsilon tolerates floating-point overshoot in the pagination
// loop; an image whose scaled height lands within this of a page
// boundary does not get a trailing blank page.
const heightEpsilon = 0.5 // mm

// PDFExporter slices one tall report image across landscape A4 pages.
type PDFExporter struct {
	rasterizer Rasterizer
	group      singleflight.Group
}

// NewPDFExporter wires the exporter.
func NewPDFExporter(r Rasterizer) *PDFExporter {
	return &PDFExporter{rasterizer: r}
}

// Export rasterizes the document and paginates the image into a PDF.
//
// Concurrent exports for the same key collapse into one rasterization;
// the upstream console let double-clicks race each other, which this
// guard closes.
func (e *PDFExporter) Export(ctx context.Context, key, html string) ([]byte, error) {
	result, err, _ := e.group.Do(key, func() (interface{}, error) {
		return e.export(ctx, html)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (e *PDFExporter) export(ctx context.Context, html string) ([]byte, error) {
	if e == nil || e.rasterizer == nil {
		return nil, fmt.Errorf("export: rasterizer not configured")
	}
	img, err := e.rasterizer.Rasterize(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrEmptyImage
	}
	return paginate(img, cfg.Width, cfg.Height)
}

// paginate places the image once per page with a shifting negative
// vertical offset, so each page shows the next slice of the full image.
func paginate(jpeg []byte, pxWidth, pxHeight int) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pageWidth, pageHeight := pdf.GetPageSize()

	imgWidth := pageWidth
	imgHeight := pageWidth * float64(pxHeight) / float64(pxWidth)

	opts := gofpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("report", opts, bytes.NewReader(jpeg))

	pdf.AddPage()
	pdf.ImageOptions("report", 0, 0, imgWidth, imgHeight, false, opts, 0, "")

	heightLeft := imgHeight - pageHeight
	for heightLeft > heightEpsilon {
		position := heightLeft - imgHeight
		pdf.AddPage()
		pdf.ImageOptions("report", 0, position, imgWidth, imgHeight, false, opts, 0, "")
		heightLeft -= pageHeight
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("export: write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// PageCount returns how many pages an image of the given pixel size
// produces when scaled to the page width.
func PageCount(pxWidth, pxHeight int) int {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pageWidth, pageHeight := pdf.GetPageSize()
	imgHeight := pageWidth * float64(pxHeight) / float64(pxWidth)

	pages := 1
	for heightLeft := imgHeight - pageHeight; heightLeft > heightEpsilon; heightLeft -= pageHeight {
		pages++
	}
	return pages
}
