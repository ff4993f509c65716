package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/bill-summary/internal/domain/statement"
	"github.com/FACorreiaa/bill-summary/internal/domain/statement/statementtest"
	"github.com/FACorreiaa/bill-summary/pkg/money"
)

func usd(cents int64) *money.Money { return money.New(cents, money.USD) }

func sampleRows() []statement.BillingRecord {
	expiry := statementtest.Date(2024, time.August, 14)
	return []statement.BillingRecord{
		{
			ID:             1,
			SourceFile:     "jan.pdf",
			StatementDate:  statementtest.Date(2024, time.January, 15),
			ServiceFrom:    statementtest.Date(2024, time.January, 15),
			ServiceTo:      statementtest.Date(2024, time.February, 14),
			DueDate:        statementtest.Date(2024, time.March, 10),
			WifiCharge:     usd(500),
			InternetCharge: usd(7999),
			Taxes:          usd(1234),
			ComputedTotal:  usd(9733),
			PrintedTotal:   usd(9733),
		},
		{
			ID:             2,
			SourceFile:     "feb.pdf",
			StatementDate:  statementtest.Date(2024, time.February, 15),
			ServiceFrom:    statementtest.Date(2024, time.February, 15),
			ServiceTo:      statementtest.Date(2024, time.March, 14),
			DueDate:        statementtest.Date(2024, time.April, 10),
			WifiCharge:     usd(500),
			InternetCharge: usd(7999),
			Taxes:          usd(1234),
			OneTimeCharge:  usd(4999),
			PromoApplied:   true,
			PromoDiscount:  usd(-2000),
			PromoExpiry:    &expiry,
			ComputedTotal:  usd(12732),
			PrintedTotal:   usd(12730),
		},
	}
}

func TestForPath(t *testing.T) {
	w, err := ForPath("out/output.xlsx", Options{})
	require.NoError(t, err)
	assert.IsType(t, &ExcelWriter{}, w)

	w, err = ForPath("summary.CSV", Options{})
	require.NoError(t, err)
	assert.IsType(t, &CSVWriter{}, w)
	assert.Equal(t, "text/csv", w.ContentType())

	_, err = ForPath("summary.json", Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExcelWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelWriter(Options{}).Write(&buf, sampleRows()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Columns, rows[0])

	col := columnIndex(t)
	assert.Equal(t, "1", rows[1][col["id"]])
	assert.Equal(t, "2", rows[2][col["id"]])
	assert.Equal(t, "jan.pdf", rows[1][col["source_file"]])
	assert.Equal(t, "97.33", rows[1][col["printed_total"]])
	assert.Equal(t, "-20", rows[2][col["promo_discount"]])
	assert.Equal(t, "", rows[1][col["one_time_charge"]])
	assert.Equal(t, "", rows[1][col["promo_discount"]])
	assert.Equal(t, "49.99", rows[2][col["one_time_charge"]])
	assert.Equal(t, "1", rows[1][col["totals_match"]])
	assert.Equal(t, "0", rows[2][col["totals_match"]])
	assert.Equal(t, "1", rows[2][col["promo_applied"]])

	// Dates are stored as Excel serial numbers with a date format.
	dateCell, err := excelize.CoordinatesToCellName(col["statement_date"]+1, 2)
	require.NoError(t, err)
	formatted, err := f.GetCellValue(SheetName, dateCell)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", formatted)
}

func TestExcelWriter_Tolerance(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelWriter(Options{ToleranceCents: 2}).Write(&buf, sampleRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1", rows[2][columnIndex(t)["totals_match"]])
}

func TestExcelWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelWriter(Options{}).Write(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Columns, rows[0])
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(Options{}).Write(&buf, sampleRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])

	col := columnIndex(t)
	jan, feb := records[1], records[2]
	assert.Equal(t, "1", jan[col["id"]])
	assert.Equal(t, "2024-01-15", jan[col["statement_date"]])
	assert.Equal(t, "97.33", jan[col["printed_total"]])
	assert.Equal(t, "", jan[col["one_time_charge"]])
	assert.Equal(t, "false", jan[col["promo_applied"]])
	assert.Equal(t, "", jan[col["promo_expiry"]])
	assert.Equal(t, "true", jan[col["totals_match"]])

	assert.Equal(t, "-20.00", feb[col["promo_discount"]])
	assert.Equal(t, "2024-08-14", feb[col["promo_expiry"]])
	assert.Equal(t, "49.99", feb[col["one_time_charge"]])
	assert.Equal(t, "false", feb[col["totals_match"]])
	assert.Equal(t, "feb.pdf", feb[col["source_file"]])
}

func TestCSVWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, NewCSVWriter(Options{}).Write(&buf, nil))
}

func columnIndex(t *testing.T) map[string]int {
	t.Helper()
	idx := make(map[string]int, len(Columns))
	for i, c := range Columns {
		idx[c] = i
	}
	return idx
}
