// Package report renders printable inventory reports.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	title = "Restock List"

	fontFamily = "Helvetica"
	fontSize   = 12

	// Layout in points from the top-left corner
	leftX        = 100.0
	titleY       = 42.0
	firstLineY   = 82.0
	lineSpacing  = 20.0
	bottomMargin = 36.0
)

// fixedDate keeps output byte-stable across renders
var fixedDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// PDFRenderer renders the low-stock restock list
type PDFRenderer struct {
	compress bool
}

// Option configures a PDFRenderer
type Option func(*PDFRenderer)

// WithCompression toggles stream compression
func WithCompression(on bool) Option {
	return func(r *PDFRenderer) { r.compress = on }
}

// NewPDFRenderer creates a new PDF renderer
func NewPDFRenderer(opts ...Option) *PDFRenderer {
	r := &PDFRenderer{compress: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderLowStockReport renders one line per item name under the title. An
// empty list yields a page with the title only.
func (r *PDFRenderer) RenderLowStockReport(names []string) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(fixedDate)
	pdf.SetModificationDate(fixedDate)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(false, bottomMargin)

	// core fonts are cp1252 encoded
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(fontFamily, "", fontSize)
	pdf.Text(leftX, titleY, tr(title))

	_, pageHeight := pdf.GetPageSize()
	y := firstLineY
	for _, name := range names {
		if y > pageHeight-bottomMargin {
			pdf.AddPage()
			pdf.SetFont(fontFamily, "", fontSize)
			y = titleY
		}
		pdf.Text(leftX, y, tr(name))
		y += lineSpacing
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render restock report: %w", err)
	}
	return buf.Bytes(), nil
}
