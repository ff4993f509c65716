// Package money provides currency-safe arithmetic for statement amounts using
// integer cents. It wraps go-money for arithmetic and shopspring/decimal for
// parsing, so a printed "79.99" becomes exactly 7999 cents.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD is the ISO-4217 code statements are printed in by default.
const USD = "USD"

// statementFraction is the number of decimals every printed amount carries.
const statementFraction = 2

var (
	// ErrInvalidAmount is returned when a printed amount does not have the
	// statement shape: digits, optional thousands commas, exactly two decimals.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUnsupportedCurrency is returned for unknown ISO-4217 codes and for
	// currencies whose minor unit is not hundredths.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// CheckCurrency verifies that code is a known currency with two decimals, so
// printed amounts convert to minor units without rounding.
func CheckCurrency(code string) error {
	currency := money.GetCurrency(code)
	if currency == nil {
		return fmt.Errorf("%w: %q is not an ISO-4217 code", ErrUnsupportedCurrency, code)
	}
	if currency.Fraction != statementFraction {
		return fmt.Errorf("%w: %s has %d decimals, statements print %d",
			ErrUnsupportedCurrency, code, currency.Fraction, statementFraction)
	}
	return nil
}

// statementAmount matches "-1,234.56", "79.99", "$12.34".
var statementAmount = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})*\.\d{2}$|^-?\d+\.\d{2}$`)

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a new Money value from cents (minor units) and currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amountCents, currencyCode),
	}
}

// NewFromDecimal creates Money from a decimal.Decimal value, rounding to the
// currency's minor unit.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
		currencyCode = USD
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()

	return New(cents, currencyCode)
}

// ParseAmount parses an amount as printed on a statement. Currency symbols and
// surrounding whitespace are stripped; the remainder must carry exactly two
// fractional digits.
func ParseAmount(amount string, currencyCode string) (*Money, error) {
	cleaned := strings.TrimSpace(amount)
	for _, sym := range []string{"$", "€", "£"} {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	if !statementAmount.MatchString(cleaned) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(cleaned, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, amount, err)
	}

	return NewFromDecimal(d, currencyCode), nil
}

// MustParse is ParseAmount for literals in tests and fixtures; it panics on error.
func MustParse(amount string, currencyCode string) *Money {
	m, err := ParseAmount(amount, currencyCode)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero Money value for the given currency
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the amount in minor units (cents)
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero returns true if the amount is zero
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// IsNegative returns true if the amount is less than zero
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// IsPositive returns true if the amount is greater than zero
func (m *Money) IsPositive() bool {
	return m != nil && m.m != nil && m.m.IsPositive()
}

// Add adds two Money values. Returns error if currencies don't match.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Subtract subtracts other from m. Returns error if currencies don't match.
func (m *Money) Subtract(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		if other == nil || other.m == nil {
			return Zero(USD), nil
		}
		return &Money{m: other.m.Negative()}, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Subtract(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Sum adds all non-nil values. A nil entry contributes nothing.
func Sum(currencyCode string, values ...*Money) (*Money, error) {
	total := Zero(currencyCode)
	for _, v := range values {
		if v == nil {
			continue
		}
		next, err := total.Add(v)
		if err != nil {
			return nil, fmt.Errorf("sum: %w", err)
		}
		total = next
	}
	return total, nil
}

// Within reports whether |m - other| <= toleranceCents. Mismatched currencies
// are never within tolerance.
func (m *Money) Within(other *Money, toleranceCents int64) bool {
	if m != nil && other != nil && m.m != nil && other.m != nil && !m.m.SameCurrency(other.m) {
		return false
	}
	delta := m.Amount() - other.Amount()
	if delta < 0 {
		delta = -delta
	}
	return delta <= toleranceCents
}

// Display returns a formatted string for display (e.g., "$1,234.56")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// String returns the amount as a fixed two-decimal string (e.g., "1234.56")
func (m *Money) String() string {
	if m == nil || m.m == nil {
		return "0.00"
	}
	return m.ToDecimal().StringFixed(int32(m.m.Currency().Fraction))
}

// ToDecimal converts to decimal.Decimal for precise calculations
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	d := decimal.NewFromInt(m.m.Amount())
	divisor := decimal.New(1, int32(currency.Fraction))
	return d.Div(divisor)
}

// ToFloat64 converts to float64 (use with caution for display and export only)
func (m *Money) ToFloat64() float64 {
	return m.ToDecimal().InexactFloat64()
}
