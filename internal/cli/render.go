package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/FACorreiaa/bill-summary/internal/domain/statement"
	"github.com/FACorreiaa/bill-summary/internal/domain/statement/service"
	"github.com/FACorreiaa/bill-summary/pkg/money"
)

var (
	colorBorder  = lipgloss.Color("#45475A")
	colorHeader  = lipgloss.Color("#7C3AED")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorError   = lipgloss.Color("#F38BA8")
	colorMuted   = lipgloss.Color("#6C7086")

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorHeader).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	mismatchStyle = cellStyle.Foreground(colorWarning)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)

var consoleHeaders = []string{
	"ID", "Statement", "Through", "WiFi", "Internet", "Promo", "One-time",
	"Taxes", "Computed", "Printed", "Match", "Due", "File",
}

// renderResult prints the summary table, the insights line, any failures and
// the output location.
func renderResult(w io.Writer, res *service.Result, toleranceCents int64) {
	rows := res.Table.Rows()
	if len(rows) > 0 {
		fmt.Fprintln(w, renderTable(rows, toleranceCents))
	} else {
		fmt.Fprintln(w, mutedStyle.Render("No statements found."))
	}

	if res.Insights != nil && res.Insights.Statements > 0 {
		fmt.Fprintln(w, formatInsights(res.Insights))
	}

	for _, f := range res.Failures {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("failed: %s: %v", f.File, f.Err)))
	}

	if res.Output != nil {
		fmt.Fprintf(w, "Summary written to %s\n", res.Output.Path)
	}
}

// renderTable lays the records out with lipgloss. Rows whose totals do not
// reconcile are highlighted.
func renderTable(rows []statement.BillingRecord, toleranceCents int64) string {
	mismatched := make(map[int]bool)
	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		match := r.TotalsMatch(toleranceCents)
		if !match {
			mismatched[i] = true
		}
		data = append(data, []string{
			strconv.Itoa(r.ID),
			shortDate(r.StatementDate),
			shortDate(r.ServiceTo),
			amount(r.WifiCharge),
			amount(r.InternetCharge),
			amount(r.PromoDiscount),
			amount(r.OneTimeCharge),
			amount(r.Taxes),
			amount(r.ComputedTotal),
			amount(r.PrintedTotal),
			matchMark(match),
			shortDate(r.DueDate),
			r.SourceFile,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(consoleHeaders...).
		Rows(data...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case mismatched[row]:
				return mismatchStyle
			default:
				return cellStyle
			}
		})

	return t.String()
}

func formatInsights(ins *statement.Insights) string {
	line := fmt.Sprintf("%d statements from %s to %s, total %s, average %s",
		ins.Statements,
		shortDate(ins.FirstStatement),
		shortDate(ins.LastStatement),
		ins.TotalPrinted.Display(),
		ins.AveragePrinted.Display(),
	)
	if ins.Statements > 1 {
		line += fmt.Sprintf(", last change %s", signed(ins.LastChange))
	}
	if ins.PromoMonths > 0 && ins.LatestPromoExpiry != nil {
		line += fmt.Sprintf(", promo on %d, expires %s", ins.PromoMonths, shortDate(*ins.LatestPromoExpiry))
	}
	if ins.Mismatches > 0 {
		line += fmt.Sprintf(", %d mismatched", ins.Mismatches)
	}
	return line
}

func shortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func amount(m *money.Money) string {
	if m == nil {
		return ""
	}
	return m.String()
}

func signed(m *money.Money) string {
	if m.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func matchMark(ok bool) string {
	if ok {
		return "yes"
	}
	return "NO"
}
