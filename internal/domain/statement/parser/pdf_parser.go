package parser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DefaultDetailsPage is the 1-based page carrying the itemised charges.
const DefaultDetailsPage = 2

var disableConfigDir sync.Once

// PDFLoader reads the text of a single page from a statement PDF.
type PDFLoader struct{}

// NewPDFLoader creates a new PDF loader instance.
func NewPDFLoader() *PDFLoader {
	// pdfcpu otherwise creates a config directory under the user's home.
	disableConfigDir.Do(api.DisableConfigDir)
	return &PDFLoader{}
}

// LoadPage returns the text of the given 1-based page. Words are joined by
// single spaces and rows by newlines, keeping phrases adjacent for matching.
// The file is closed before LoadPage returns.
func (l *PDFLoader) LoadPage(ctx context.Context, path string, page int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if page < 1 {
		return "", &LoadError{Path: path, Page: page, Err: ErrPageOutOfRange}
	}

	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return "", &LoadError{Path: path, Page: page, Err: fmt.Errorf("validate pdf: %w", err)}
	}
	if page > pageCount {
		return "", &LoadError{Path: path, Page: page,
			Err: fmt.Errorf("%w: document has %d pages", ErrPageOutOfRange, pageCount)}
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", &LoadError{Path: path, Page: page, Err: fmt.Errorf("open pdf: %w", err)}
	}
	defer f.Close()

	text, err := pageText(r, page)
	if err != nil {
		return "", &LoadError{Path: path, Page: page, Err: err}
	}
	return text, nil
}

func pageText(r *pdf.Reader, page int) (text string, err error) {
	// The pdf package panics on some malformed content streams.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("extract text: %v", rec)
		}
	}()

	if page > r.NumPage() {
		return "", fmt.Errorf("%w: document has %d pages", ErrPageOutOfRange, r.NumPage())
	}

	p := r.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("%w: page %d is empty", ErrPageOutOfRange, page)
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	var sb strings.Builder
	for _, row := range rows {
		for i, word := range row.Content {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(word.S)
		}
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}
