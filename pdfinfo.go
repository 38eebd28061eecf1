package mdnotes

import (
	"bytes"
	"fmt"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// A4 page size in PDF points (1/72 inch), as printed by the renderer.
const (
	A4WidthPoints  = paperWidthInches * 72
	A4HeightPoints = paperHeightInches * 72

	// geometryTolerance absorbs the engine's rounding of page boxes.
	geometryTolerance = 2.0
)

// PDFInfo describes the page geometry of a PDF.
type PDFInfo struct {
	Pages  int
	Width  float64 // first page, points
	Height float64 // first page, points
}

// IsA4 reports whether the first page is portrait A4.
func (i PDFInfo) IsA4() bool {
	return math.Abs(i.Width-A4WidthPoints) <= geometryTolerance &&
		math.Abs(i.Height-A4HeightPoints) <= geometryTolerance
}

// SameGeometry reports whether two PDFs have the same page count and size.
func (i PDFInfo) SameGeometry(o PDFInfo) bool {
	return i.Pages == o.Pages &&
		math.Abs(i.Width-o.Width) <= geometryTolerance &&
		math.Abs(i.Height-o.Height) <= geometryTolerance
}

// InspectPDF reads page count and first-page dimensions from a PDF.
// Returns ErrInvalidPDF if the data cannot be parsed.
func InspectPDF(data []byte) (PDFInfo, error) {
	if len(data) == 0 {
		return PDFInfo{}, fmt.Errorf("%w: empty data", ErrInvalidPDF)
	}

	conf := model.NewDefaultConfiguration()

	pages, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return PDFInfo{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		return PDFInfo{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if len(dims) == 0 {
		return PDFInfo{}, fmt.Errorf("%w: no pages", ErrInvalidPDF)
	}

	return PDFInfo{
		Pages:  pages,
		Width:  dims[0].Width,
		Height: dims[0].Height,
	}, nil
}
