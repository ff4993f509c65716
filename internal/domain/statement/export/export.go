// Package export writes a finalized summary table as a spreadsheet.
// The format is picked from the output file extension: .xlsx (excelize) or
// .csv (gocsv). Both share the same column order.
package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/FACorreiaa/bill-summary/internal/domain/statement"
	"github.com/FACorreiaa/bill-summary/pkg/money"
)

// Columns is the header row, in output order.
var Columns = []string{
	"id",
	"statement_date",
	"service_from",
	"service_to",
	"wifi_service_charge",
	"spectrum_internet_charge",
	"one_time_charge",
	"promo_applied",
	"promo_discount",
	"promo_expiry",
	"taxes",
	"computed_total",
	"printed_total",
	"totals_match",
	"due_date",
	"source_file",
}

// ErrUnsupportedFormat is returned for output paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Writer renders summary rows to w.
type Writer interface {
	Write(w io.Writer, rows []statement.BillingRecord) error
	ContentType() string
}

// Options tune how rows are rendered.
type Options struct {
	// ToleranceCents feeds the totals_match column.
	ToleranceCents int64
}

// ForPath returns the writer matching the extension of path.
func ForPath(path string, opts Options) (Writer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return NewExcelWriter(opts), nil
	case ".csv":
		return NewCSVWriter(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatOptionalAmount(m *money.Money) string {
	if m == nil {
		return ""
	}
	return m.String()
}
