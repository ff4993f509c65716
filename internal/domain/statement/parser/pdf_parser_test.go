package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/bill-summary/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/bill-summary/internal/domain/statement/statementtest"
)

var pdfStringEscaper = strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)

// buildPDF assembles a minimal PDF with one Helvetica text line per entry on
// each page, computing the xref offsets.
func buildPDF(pages ...[]string) []byte {
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	for i, lines := range pages {
		var content strings.Builder
		for j, line := range lines {
			fmt.Fprintf(&content, "BT /F1 10 Tf 72 %d Td (%s) Tj ET\n", 720-14*j, pdfStringEscaper.Replace(line))
		}
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

// writeStatementPDF writes a two-page statement whose second page carries s.
func writeStatementPDF(t *testing.T, s statementtest.Statement) string {
	t.Helper()
	cover := []string{"Spectrum", "Your monthly statement", "Page 1 of 2"}
	details := strings.Split(strings.TrimSpace(s.Text()), "\n")

	path := filepath.Join(t.TempDir(), "statement.pdf")
	require.NoError(t, os.WriteFile(path, buildPDF(cover, details), 0o600))
	return path
}

func promoStatement() statementtest.Statement {
	s := statementtest.Example()
	s.PromoCents = statementtest.Cents(-2000)
	s.PromoExpiry = statementtest.Date(2024, time.August, 14)
	return s
}

func TestPDFLoader_LoadPage(t *testing.T) {
	path := writeStatementPDF(t, promoStatement())

	text, err := NewPDFLoader().LoadPage(context.Background(), path, DefaultDetailsPage)
	require.NoError(t, err)

	assert.Contains(t, text, "Service from 01/15/24 through 02/14/24")
	assert.Contains(t, text, "Promotional Discount -20.00")
	assert.Contains(t, text, "Total Due by 03/10/24 $77.33")
	assert.NotContains(t, text, "Your monthly statement")

	cover, err := NewPDFLoader().LoadPage(context.Background(), path, 1)
	require.NoError(t, err)
	assert.Contains(t, cover, "Your monthly statement")
}

func TestPDFLoader_LoadPage_PastLastPage(t *testing.T) {
	path := writeStatementPDF(t, statementtest.Example())

	_, err := NewPDFLoader().LoadPage(context.Background(), path, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, path, loadErr.Path)
	assert.Equal(t, 3, loadErr.Page)
	assert.Contains(t, err.Error(), "document has 2 pages")
}

func TestPDFLoader_ExtractsFields(t *testing.T) {
	s := promoStatement()
	path := writeStatementPDF(t, s)

	text, err := NewPDFLoader().LoadPage(context.Background(), path, DefaultDetailsPage)
	require.NoError(t, err)

	fields, err := NewExtractor("").Extract(normalizer.NewTextNormalizer().Normalize(text))
	require.NoError(t, err)

	assert.Equal(t, s.ServiceFrom, fields.ServiceFrom)
	assert.Equal(t, s.ServiceTo, fields.ServiceTo)
	assert.Equal(t, int64(500), fields.WifiCharge.Amount())
	assert.Equal(t, int64(7999), fields.InternetCharge.Amount())
	assert.Equal(t, int64(1234), fields.Taxes.Amount())
	require.True(t, fields.Promo.Present)
	assert.Equal(t, int64(-2000), fields.Promo.Discount.Amount())
	assert.Equal(t, s.PromoExpiry, fields.Promo.Expiry)
	assert.False(t, fields.OneTimeCharge.Present)
	assert.Equal(t, s.DueDate, fields.DueDate)
	assert.Equal(t, int64(7733), fields.PrintedTotal.Amount())
}

func TestPDFLoader_LoadPage_Errors(t *testing.T) {
	loader := NewPDFLoader()
	dir := t.TempDir()

	notPDF := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("just some text, not a pdf"), 0o600))

	tests := []struct {
		name string
		path string
		page int
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.pdf"), page: 2},
		{name: "not a pdf", path: notPDF, page: 2},
		{name: "page below one", path: notPDF, page: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := loader.LoadPage(context.Background(), tt.path, tt.page)
			require.Error(t, err)
			assert.Empty(t, text)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.path, loadErr.Path)
			assert.Equal(t, tt.page, loadErr.Page)
		})
	}
}

func TestPDFLoader_LoadPage_PageBelowOne(t *testing.T) {
	_, err := NewPDFLoader().LoadPage(context.Background(), "whatever.pdf", 0)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestPDFLoader_LoadPage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPDFLoader().LoadPage(ctx, "whatever.pdf", 2)
	assert.ErrorIs(t, err, context.Canceled)
}
