// Package statementtest builds synthetic statement page text with known values
// for tests. Random statements come from gofakeit so runs are reproducible
// with a fixed seed.
package statementtest

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/FACorreiaa/bill-summary/pkg/money"
)

// Statement holds the values printed on a details page. Amounts are cents.
type Statement struct {
	ServiceFrom   time.Time
	ServiceTo     time.Time
	WifiCents     int64
	InternetCents int64
	// PromoCents is the (non-positive) discount; nil when the statement has none.
	PromoCents  *int64
	PromoExpiry time.Time
	// OneTimeCents is nil when the statement has no one-time charges.
	OneTimeCents *int64
	TaxesCents   int64
	DueDate      time.Time
	// PrintedCents overrides the printed total; nil prints the exact sum.
	PrintedCents *int64

	// Omit drops phrases from the rendered text, keyed by phrase prefix
	// ("taxes", "wifi", "expiry", ...).
	Omit map[string]bool
}

// Cents returns a pointer to c for the optional fields.
func Cents(c int64) *int64 { return &c }

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Example is the statement from the documented end-to-end example: no promo,
// no one-time charge, 5.00 + 79.99 + 12.34 = 97.33.
func Example() Statement {
	return Statement{
		ServiceFrom:   Date(2024, time.January, 15),
		ServiceTo:     Date(2024, time.February, 14),
		WifiCents:     500,
		InternetCents: 7999,
		TaxesCents:    1234,
		DueDate:       Date(2024, time.March, 10),
	}
}

// ExpectedTotalCents is wifi + internet + taxes + promo + one-time.
func (s Statement) ExpectedTotalCents() int64 {
	total := s.WifiCents + s.InternetCents + s.TaxesCents
	if s.PromoCents != nil {
		total += *s.PromoCents
	}
	if s.OneTimeCents != nil {
		total += *s.OneTimeCents
	}
	return total
}

// PrintedTotalCents is the total as it will appear on the page.
func (s Statement) PrintedTotalCents() int64 {
	if s.PrintedCents != nil {
		return *s.PrintedCents
	}
	return s.ExpectedTotalCents()
}

// Text renders the statement as extracted page text, with header noise and
// the phrases the extractor anchors on.
func (s Statement) Text() string {
	var b strings.Builder
	line := func(key, format string, args ...any) {
		if s.Omit[key] {
			return
		}
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("header", "Page 2 of 4")
	line("header", "Account Number: 8353 12 345 6789012")
	line("period", "Service from %s through %s", short(s.ServiceFrom), short(s.ServiceTo))
	line("header", "Charge Details")
	line("internet", "Spectrum Internet %s", amount(s.InternetCents))
	line("wifi", "WiFi Service %s", amount(s.WifiCents))
	if s.PromoCents != nil {
		line("promo", "Promotional Discount %s", amount(*s.PromoCents))
	}
	line("header", "Spectrum Internet Total $%s", amount(s.WifiCents+s.InternetCents))
	if s.OneTimeCents != nil {
		line("onetime", "One-Time Charges Total $%s", amount(*s.OneTimeCents))
	}
	line("taxes", "Taxes, Fees and Charges Total $%s", amount(s.TaxesCents))
	if s.PromoCents != nil {
		line("expiry", "Your promotional price will expire on %s", short(s.PromoExpiry))
	}
	line("due", "Total Due by %s $%s", short(s.DueDate), amount(s.PrintedTotalCents()))

	return b.String()
}

func short(t time.Time) string {
	return t.Format("01/02/06")
}

func amount(cents int64) string {
	return money.New(cents, money.USD).String()
}

// Generator produces random, internally consistent statements.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator with a fixed seed for reproducibility.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Statement generates one statement whose service period starts on start.
func (g *Generator) Statement(start time.Time) Statement {
	s := Statement{
		ServiceFrom:   start,
		ServiceTo:     start.AddDate(0, 1, -1),
		WifiCents:     int64(g.faker.Number(0, 1000)),
		InternetCents: int64(g.faker.Number(4999, 12999)),
		TaxesCents:    int64(g.faker.Number(0, 2500)),
		DueDate:       start.AddDate(0, 1, 10),
	}

	if g.faker.Bool() {
		s.PromoCents = Cents(-int64(g.faker.Number(1, 3000)))
		s.PromoExpiry = start.AddDate(0, g.faker.Number(1, 12), 0)
	}
	if g.faker.Number(1, 4) == 1 {
		s.OneTimeCents = Cents(int64(g.faker.Number(100, 19999)))
	}

	return s
}

// Months generates n consecutive monthly statements beginning at first.
func (g *Generator) Months(first time.Time, n int) []Statement {
	out := make([]Statement, n)
	for i := range out {
		out[i] = g.Statement(first.AddDate(0, i, 0))
	}
	return out
}
