package extractor

import (
	"fmt"
	"io"
	"math"

	"github.com/ledongthuc/pdf"
)

// Glyphs closer than this fraction of the font size on the same baseline
// belong to the same fragment.
const (
	joinGapRatio      = 0.25
	baselineTolerance = 0.5
)

// PDFSource reads statement PDFs from disk.
type PDFSource struct{}

// Pages returns the text fragments of every page of the PDF at filePath,
// in page order and reading order within a page.
func (PDFSource) Pages(filePath string) ([][]string, error) {
	f, r, err := openPDF(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readPages(r)
}

// ReadPages is Pages for an in-memory document, such as an upload.
func ReadPages(data io.ReaderAt, size int64) ([][]string, error) {
	r, err := newReader(data, size)
	if err != nil {
		return nil, err
	}
	return readPages(r)
}

func openPDF(filePath string) (f io.Closer, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("PDF library crashed opening %s: %v", filePath, rec)
		}
	}()
	file, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening PDF %s: %w", filePath, err)
	}
	return file, reader, nil
}

func newReader(data io.ReaderAt, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("PDF library crashed: %v", rec)
		}
	}()
	r, err = pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("reading PDF: %w", err)
	}
	return r, nil
}

func readPages(r *pdf.Reader) (pages [][]string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("PDF library crashed: %v", rec)
		}
	}()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages = make([][]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, fragments(page.Content().Text))
	}
	return pages, nil
}

// fragments merges the positioned glyphs of a page into text runs, keeping
// content-stream order. A change of baseline closes the run and emits an
// empty fragment, the same end-of-line marker a text-layer reader produces.
func fragments(texts []pdf.Text) []string {
	var (
		out  []string
		run  []byte
		prev *pdf.Text
	)
	flush := func() {
		if len(run) > 0 {
			out = append(out, string(run))
			run = run[:0]
		}
	}

	for i := range texts {
		t := &texts[i]
		if prev != nil {
			newLine := math.Abs(t.Y-prev.Y) > baselineTolerance
			gap := t.X - (prev.X + prev.W)
			split := t.Font != prev.Font || t.FontSize != prev.FontSize ||
				gap > prev.FontSize*joinGapRatio || gap < -prev.FontSize
			switch {
			case newLine:
				flush()
				out = append(out, "")
			case split:
				flush()
			}
		}
		run = append(run, t.S...)
		prev = t
	}
	flush()
	return out
}
