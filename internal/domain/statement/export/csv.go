package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/bill-summary/internal/domain/statement"
)

// summaryRow is one csv line; tags follow Columns.
type summaryRow struct {
	ID                     int    `csv:"id"`
	StatementDate          string `csv:"statement_date"`
	ServiceFrom            string `csv:"service_from"`
	ServiceTo              string `csv:"service_to"`
	WifiServiceCharge      string `csv:"wifi_service_charge"`
	SpectrumInternetCharge string `csv:"spectrum_internet_charge"`
	OneTimeCharge          string `csv:"one_time_charge"`
	PromoApplied           string `csv:"promo_applied"`
	PromoDiscount          string `csv:"promo_discount"`
	PromoExpiry            string `csv:"promo_expiry"`
	Taxes                  string `csv:"taxes"`
	ComputedTotal          string `csv:"computed_total"`
	PrintedTotal           string `csv:"printed_total"`
	TotalsMatch            string `csv:"totals_match"`
	DueDate                string `csv:"due_date"`
	SourceFile             string `csv:"source_file"`
}

// CSVWriter writes the summary as comma separated values with a header row.
// Amounts are plain two-decimal strings and dates are ISO formatted.
type CSVWriter struct {
	opts Options
}

// NewCSVWriter creates a csv writer.
func NewCSVWriter(opts Options) *CSVWriter {
	return &CSVWriter{opts: opts}
}

func (c *CSVWriter) ContentType() string { return "text/csv" }

func (c *CSVWriter) Write(w io.Writer, rows []statement.BillingRecord) error {
	out := make([]*summaryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, &summaryRow{
			ID:                     r.ID,
			StatementDate:          formatDate(r.StatementDate),
			ServiceFrom:            formatDate(r.ServiceFrom),
			ServiceTo:              formatDate(r.ServiceTo),
			WifiServiceCharge:      formatOptionalAmount(r.WifiCharge),
			SpectrumInternetCharge: formatOptionalAmount(r.InternetCharge),
			OneTimeCharge:          formatOptionalAmount(r.OneTimeCharge),
			PromoApplied:           strconv.FormatBool(r.PromoApplied),
			PromoDiscount:          formatOptionalAmount(r.PromoDiscount),
			PromoExpiry:            formatOptionalDate(r.PromoExpiry),
			Taxes:                  formatOptionalAmount(r.Taxes),
			ComputedTotal:          formatOptionalAmount(r.ComputedTotal),
			PrintedTotal:           formatOptionalAmount(r.PrintedTotal),
			TotalsMatch:            strconv.FormatBool(r.TotalsMatch(c.opts.ToleranceCents)),
			DueDate:                formatDate(r.DueDate),
			SourceFile:             r.SourceFile,
		})
	}

	if err := gocsv.Marshal(&out, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
