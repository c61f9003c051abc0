package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

type fakeRasterizer struct {
	width  int
	height int
	calls  atomic.Int64
	delay  time.Duration
	err    error
}

func (f *fakeRasterizer) Rasterize(context.Context, string) ([]byte, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	buf := &bytes.Buffer{}
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func TestExportProducesPDF(t *testing.T) {
	exporter := NewPDFExporter(&fakeRasterizer{width: 1000, height: 400})
	data, err := exporter.Export(context.Background(), "grid:2024-03", "<html></html>")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", data[:8])
	}
	if !bytes.Contains(data, []byte("/Count 1")) {
		t.Fatal("expected a single page document")
	}
}

func TestExportPaginatesTallImage(t *testing.T) {
	// Scaled height 594mm against a 210mm page: three pages.
	exporter := NewPDFExporter(&fakeRasterizer{width: 1000, height: 2000})
	data, err := exporter.Export(context.Background(), "grid:tall", "<html></html>")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.Contains(data, []byte("/Count 3")) {
		t.Fatal("expected three pages")
	}
}

func TestExportRasterizeFailure(t *testing.T) {
	exporter := NewPDFExporter(&fakeRasterizer{err: errors.New("boom")})
	_, err := exporter.Export(context.Background(), "grid:fail", "<html></html>")
	if !errors.Is(err, ErrRasterize) {
		t.Fatalf("expected ErrRasterize, got %v", err)
	}
}

func TestExportUndecodableImage(t *testing.T) {
	exporter := NewPDFExporter(rasterizerFunc(func(context.Context, string) ([]byte, error) {
		return []byte("not a jpeg"), nil
	}))
	_, err := exporter.Export(context.Background(), "grid:bad", "<html></html>")
	if !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
}

type rasterizerFunc func(context.Context, string) ([]byte, error)

func (f rasterizerFunc) Rasterize(ctx context.Context, html string) ([]byte, error) {
	return f(ctx, html)
}

func TestExportCollapsesConcurrentCalls(t *testing.T) {
	rast := &fakeRasterizer{width: 1000, height: 400, delay: 50 * time.Millisecond}
	exporter := NewPDFExporter(rast)

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			_, err := exporter.Export(context.Background(), "grid:2024-03", "<html></html>")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent export: %v", err)
	}
	if got := rast.calls.Load(); got != 1 {
		t.Fatalf("expected one rasterization, got %d", got)
	}
}

func TestPageCountCeiling(t *testing.T) {
	cases := []struct {
		pxW, pxH int
		want     int
	}{
		{1000, 700, 1},  // 207.9mm, fits one page
		{1000, 1400, 2}, // 415.8mm
		{1000, 2000, 3}, // 594mm
		{990, 700, 1},   // exactly 210mm, no trailing blank page
		{2000, 1400, 1},
	}
	for _, tc := range cases {
		if got := PageCount(tc.pxW, tc.pxH); got != tc.want {
			t.Fatalf("PageCount(%d, %d) = %d, want %d", tc.pxW, tc.pxH, got, tc.want)
		}
	}
}

func TestPageCountCoversHeight(t *testing.T) {
	// Every scaled height must be covered by pages with no gap: for n
	// pages, (n-1)*P < H <= n*P (within the epsilon tolerance).
	const pageHeight = 210.0
	const pageWidth = 297.0
	for pxH := 100; pxH <= 4000; pxH += 137 {
		n := PageCount(1000, pxH)
		imgH := pageWidth * float64(pxH) / 1000.0
		if float64(n)*pageHeight+heightEpsilon < imgH {
			t.Fatalf("height %f not covered by %d pages", imgH, n)
		}
		if n > 1 && float64(n-1)*pageHeight >= imgH+heightEpsilon {
			t.Fatalf("height %f has a fully blank page among %d", imgH, n)
		}
	}
}

func TestGridFileName(t *testing.T) {
	p := period(2024, 3)
	if got := GridFileName(p); got != "تقرير الحضور_مارس_2024.pdf" {
		t.Fatalf("grid filename = %q", got)
	}
}

func TestEmployeeFileName(t *testing.T) {
	p := period(2024, 3)
	if got := EmployeeFileName("Ahmed  Ali\tHassan", p); got != "Ahmed_Ali_Hassan_Monthly_Report_مارس_2024.pdf" {
		t.Fatalf("employee filename = %q", got)
	}
	if got := EmployeeFileName("  ", p); got != "Employee_Monthly_Report_مارس_2024.pdf" {
		t.Fatalf("blank name filename = %q", got)
	}
}

func TestCSVFileName(t *testing.T) {
	if got := CSVFileName(period(2024, 3)); got != fmt.Sprintf("attendance_%s.csv", "2024-03") {
		t.Fatalf("csv filename = %q", got)
	}
}
