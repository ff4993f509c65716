package statement

import (
	"github.com/FACorreiaa/bill-summary/internal/domain/statement/parser"
	"github.com/FACorreiaa/bill-summary/pkg/money"
)

// ComputeTotal sums the charges of a statement: wifi, internet and taxes,
// plus the promotional discount and one-time charges when present. The
// discount is already negative, so adding it lowers the total.
func ComputeTotal(f *parser.Fields) (*money.Money, error) {
	parts := []*money.Money{f.WifiCharge, f.InternetCharge, f.Taxes}
	if f.Promo.Present {
		parts = append(parts, f.Promo.Discount)
	}
	if f.OneTimeCharge.Present {
		parts = append(parts, f.OneTimeCharge.Amount)
	}

	return money.Sum(currencyOf(f), parts...)
}

func currencyOf(f *parser.Fields) string {
	for _, m := range []*money.Money{f.PrintedTotal, f.WifiCharge, f.InternetCharge, f.Taxes} {
		if c := m.Currency(); c != "" {
			return c
		}
	}
	return money.USD
}
