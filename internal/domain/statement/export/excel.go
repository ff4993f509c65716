package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/bill-summary/internal/domain/statement"
	"github.com/FACorreiaa/bill-summary/pkg/money"
)

// SheetName is the worksheet holding the summary.
const SheetName = "Summary"

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	amountFormat    = "#,##0.00"
	dateFormat      = "yyyy-mm-dd"
)

// ExcelWriter writes the summary as a single-sheet workbook with typed cells:
// dates as dates, amounts as numbers, totals_match as a boolean.
type ExcelWriter struct {
	opts Options
}

// NewExcelWriter creates an xlsx writer.
func NewExcelWriter(opts Options) *ExcelWriter {
	return &ExcelWriter{opts: opts}
}

func (x *ExcelWriter) ContentType() string { return xlsxContentType }

// Write renders rows into a new workbook and streams it to w.
func (x *ExcelWriter) Write(w io.Writer, rows []statement.BillingRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := x.rowValues(r)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r.ID, err)
		}
	}

	if err := x.applyStyles(f, len(rows)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (x *ExcelWriter) rowValues(r statement.BillingRecord) []interface{} {
	return []interface{}{
		r.ID,
		dateCell(r.StatementDate),
		dateCell(r.ServiceFrom),
		dateCell(r.ServiceTo),
		amountCell(r.WifiCharge),
		amountCell(r.InternetCharge),
		amountCell(r.OneTimeCharge),
		r.PromoApplied,
		amountCell(r.PromoDiscount),
		optionalDateCell(r.PromoExpiry),
		amountCell(r.Taxes),
		amountCell(r.ComputedTotal),
		amountCell(r.PrintedTotal),
		r.TotalsMatch(x.opts.ToleranceCents),
		dateCell(r.DueDate),
		r.SourceFile,
	}
}

// applyStyles sets number formats per column, freezes the header row and
// adds an autofilter.
func (x *ExcelWriter) applyStyles(f *excelize.File, n int) error {
	amountFmt := amountFormat
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}
	dateFmt := dateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	last, err := excelize.ColumnNumberToName(len(Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", last, 14); err != nil {
		return err
	}

	if n > 0 {
		for i, col := range Columns {
			var style int
			switch col {
			case "statement_date", "service_from", "service_to", "promo_expiry", "due_date":
				style = dateStyle
			case "wifi_service_charge", "spectrum_internet_charge", "one_time_charge",
				"promo_discount", "taxes", "computed_total", "printed_total":
				style = amountStyle
			default:
				continue
			}
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(SheetName, name+"2", fmt.Sprintf("%s%d", name, n+1), style); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if n == 0 {
		return nil
	}
	return f.AutoFilter(SheetName, fmt.Sprintf("A1:%s%d", last, n+1), nil)
}

func dateCell(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func optionalDateCell(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func amountCell(m *money.Money) interface{} {
	if m == nil {
		return nil
	}
	return m.ToFloat64()
}
