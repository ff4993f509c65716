package statement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/bill-summary/pkg/money"
)

// Insights are aggregate figures over a finalized summary table.
type Insights struct {
	Statements     int
	Mismatches     int
	PromoMonths    int
	OneTimeMonths  int
	TotalPrinted   *money.Money
	AveragePrinted *money.Money
	FirstStatement time.Time
	LastStatement  time.Time
	// LatestPromoExpiry is nil when no statement carried a promotion.
	LatestPromoExpiry *time.Time
	// LastChange is the printed total of the last statement minus the one
	// before it; zero with fewer than two statements.
	LastChange *money.Money
}

// Summarize computes insights over the table rows in their current order,
// which after Finalize is chronological.
func Summarize(t *SummaryTable, toleranceCents int64) (*Insights, error) {
	rows := t.Rows()
	currency := money.USD
	if len(rows) > 0 && rows[0].PrintedTotal.Currency() != "" {
		currency = rows[0].PrintedTotal.Currency()
	}

	ins := &Insights{
		Statements:     len(rows),
		TotalPrinted:   money.Zero(currency),
		AveragePrinted: money.Zero(currency),
		LastChange:     money.Zero(currency),
	}
	if len(rows) == 0 {
		return ins, nil
	}

	printed := make([]*money.Money, 0, len(rows))
	for _, r := range rows {
		printed = append(printed, r.PrintedTotal)
		if !r.TotalsMatch(toleranceCents) {
			ins.Mismatches++
		}
		if r.OneTimeCharge != nil {
			ins.OneTimeMonths++
		}
		if r.PromoApplied {
			ins.PromoMonths++
			if r.PromoExpiry != nil && (ins.LatestPromoExpiry == nil || r.PromoExpiry.After(*ins.LatestPromoExpiry)) {
				expiry := *r.PromoExpiry
				ins.LatestPromoExpiry = &expiry
			}
		}
	}

	total, err := money.Sum(currency, printed...)
	if err != nil {
		return nil, err
	}
	ins.TotalPrinted = total
	ins.AveragePrinted = money.NewFromDecimal(total.ToDecimal().Div(decimal.NewFromInt(int64(len(rows)))), currency)

	ins.FirstStatement = rows[0].StatementDate
	ins.LastStatement = rows[len(rows)-1].StatementDate

	if n := len(rows); n >= 2 {
		change, err := rows[n-1].PrintedTotal.Subtract(rows[n-2].PrintedTotal)
		if err != nil {
			return nil, err
		}
		ins.LastChange = change
	}

	return ins, nil
}
