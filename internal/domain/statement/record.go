// Package statement holds the billing record model, the totals reconciler and
// the summary table that orders statements chronologically.
package statement

import (
	"errors"
	"fmt"
	"time"

	"github.com/FACorreiaa/bill-summary/internal/domain/statement/parser"
	"github.com/FACorreiaa/bill-summary/pkg/money"
)

var (
	// ErrTotalsMismatch is returned in strict mode when the computed total
	// differs from the printed total by more than the tolerance.
	ErrTotalsMismatch = errors.New("computed total does not match printed total")

	// ErrAlreadyFinalized is returned when a finalized table is appended to or
	// finalized again.
	ErrAlreadyFinalized = errors.New("summary table already finalized")
)

// BillingRecord is one row of the summary: the values of a single statement
// plus the reconciled total. ID is zero until the table is finalized.
type BillingRecord struct {
	ID            int
	SourceFile    string
	StatementDate time.Time
	ServiceFrom   time.Time
	ServiceTo     time.Time
	DueDate       time.Time

	WifiCharge     *money.Money
	InternetCharge *money.Money
	Taxes          *money.Money
	// OneTimeCharge is nil when the statement has no one-time charges.
	OneTimeCharge *money.Money

	PromoApplied bool
	// PromoDiscount and PromoExpiry are nil unless PromoApplied.
	PromoDiscount *money.Money
	PromoExpiry   *time.Time

	ComputedTotal *money.Money
	PrintedTotal  *money.Money
}

// NewBillingRecord builds the record for sourceFile from extracted fields and
// computes its total. The statement date is the start of the service period.
func NewBillingRecord(sourceFile string, f *parser.Fields) (*BillingRecord, error) {
	if f == nil {
		return nil, fmt.Errorf("no fields for %s", sourceFile)
	}

	computed, err := ComputeTotal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to compute total for %s: %w", sourceFile, err)
	}

	rec := &BillingRecord{
		SourceFile:     sourceFile,
		StatementDate:  f.ServiceFrom,
		ServiceFrom:    f.ServiceFrom,
		ServiceTo:      f.ServiceTo,
		DueDate:        f.DueDate,
		WifiCharge:     f.WifiCharge,
		InternetCharge: f.InternetCharge,
		Taxes:          f.Taxes,
		ComputedTotal:  computed,
		PrintedTotal:   f.PrintedTotal,
	}

	if f.OneTimeCharge.Present {
		rec.OneTimeCharge = f.OneTimeCharge.Amount
	}
	if f.Promo.Present {
		expiry := f.Promo.Expiry
		rec.PromoApplied = true
		rec.PromoDiscount = f.Promo.Discount
		rec.PromoExpiry = &expiry
	}

	return rec, nil
}

// TotalsMatch reports whether the computed and printed totals agree within
// toleranceCents.
func (r *BillingRecord) TotalsMatch(toleranceCents int64) bool {
	return r.ComputedTotal.Within(r.PrintedTotal, toleranceCents)
}

// Delta returns computed minus printed, in cents.
func (r *BillingRecord) Delta() int64 {
	return r.ComputedTotal.Amount() - r.PrintedTotal.Amount()
}

// CheckTotals returns an error wrapping ErrTotalsMismatch when the totals
// disagree beyond toleranceCents.
func (r *BillingRecord) CheckTotals(toleranceCents int64) error {
	if r.TotalsMatch(toleranceCents) {
		return nil
	}
	return fmt.Errorf("%w: %s computed %s printed %s",
		ErrTotalsMismatch, r.SourceFile, r.ComputedTotal, r.PrintedTotal)
}
