// Package parser turns a recurring-biller PDF statement into typed fields.
// Extraction is anchored on literal phrases of the statement's details page.
package parser

import (
	"fmt"
	"regexp"
	"time"

	"github.com/FACorreiaa/bill-summary/pkg/money"
)

// Field names used in errors and logs.
const (
	FieldServicePeriod = "service_period"
	FieldWifiCharge    = "wifi_service_charge"
	FieldInternet      = "spectrum_internet_charge"
	FieldPromoDiscount = "promo_discount"
	FieldPromoExpiry   = "promo_expiry"
	FieldOneTimeCharge = "one_time_charge"
	FieldTaxes         = "taxes"
	FieldTotalDue      = "total_due"
)

const (
	datePattern   = `(\d{2}/\d{2}/\d{2})`
	amountPattern = `(\d[\d,]*\.\d{2})`
)

var (
	servicePeriodRe = regexp.MustCompile(`(?i)service\s+from\s+` + datePattern + `\s+through\s+` + datePattern)
	wifiRe          = regexp.MustCompile(`(?i)wifi\s+service\s+\$?` + amountPattern)
	internetRe      = regexp.MustCompile(`(?i)spectrum\s+internet\s+\$?` + amountPattern)
	promoRe         = regexp.MustCompile(`(?i)promotional\s+discount\s+(-\s*\$?\d[\d,]*\.\d{2})`)
	promoExpiryRe   = regexp.MustCompile(`(?i)your\s+promotional\s+price\s+will\s+expire\s+on\s+` + datePattern)
	oneTimeRe       = regexp.MustCompile(`(?i)one-time\s+charges\s+total\s*\$` + amountPattern)
	taxesRe         = regexp.MustCompile(`(?i)taxes,\s*fees\s+and\s+charges\s+total\s*\$` + amountPattern)
	totalDueRe      = regexp.MustCompile(`(?i)total\s+due\s+by\s+` + datePattern + `\s+\$` + amountPattern)
)

// Optional is an amount that may be missing from a statement.
type Optional struct {
	Amount  *money.Money
	Present bool
}

// Promo is the recurring promotional discount and the date it stops applying.
type Promo struct {
	Discount *money.Money
	Expiry   time.Time
	Present  bool
}

// Fields are the typed values found on one statement's details page.
type Fields struct {
	ServiceFrom    time.Time
	ServiceTo      time.Time
	WifiCharge     *money.Money
	InternetCharge *money.Money
	Promo          Promo
	OneTimeCharge  Optional
	Taxes          *money.Money
	DueDate        time.Time
	PrintedTotal   *money.Money
}

// Extractor applies the statement's phrase patterns to page text.
// It holds no per-document state and is safe to reuse.
type Extractor struct {
	currency string
}

// NewExtractor creates an extractor producing amounts in currencyCode.
func NewExtractor(currencyCode string) *Extractor {
	if currencyCode == "" {
		currencyCode = money.USD
	}
	return &Extractor{currency: currencyCode}
}

// Extract pulls every field from text. The first required field that is
// missing or malformed aborts extraction.
func (e *Extractor) Extract(text string) (*Fields, error) {
	from, to, err := e.ServicePeriod(text)
	if err != nil {
		return nil, err
	}

	wifi, err := e.WifiCharge(text)
	if err != nil {
		return nil, err
	}

	internet, err := e.InternetCharge(text)
	if err != nil {
		return nil, err
	}

	promo, err := e.PromotionalDiscount(text)
	if err != nil {
		return nil, err
	}

	oneTime, err := e.OneTimeCharges(text)
	if err != nil {
		return nil, err
	}

	taxes, err := e.Taxes(text)
	if err != nil {
		return nil, err
	}

	printed, due, err := e.TotalDue(text)
	if err != nil {
		return nil, err
	}

	return &Fields{
		ServiceFrom:    from,
		ServiceTo:      to,
		WifiCharge:     wifi,
		InternetCharge: internet,
		Promo:          promo,
		OneTimeCharge:  oneTime,
		Taxes:          taxes,
		DueDate:        due,
		PrintedTotal:   printed,
	}, nil
}

// ServicePeriod returns the start and end of the billed service period.
func (e *Extractor) ServicePeriod(text string) (time.Time, time.Time, error) {
	m := servicePeriodRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, time.Time{}, notFound(FieldServicePeriod, servicePeriodRe)
	}

	from, err := ParseShortDate(m[1])
	if err != nil {
		return time.Time{}, time.Time{}, invalid(FieldServicePeriod, err)
	}
	to, err := ParseShortDate(m[2])
	if err != nil {
		return time.Time{}, time.Time{}, invalid(FieldServicePeriod, err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, invalid(FieldServicePeriod,
			fmt.Errorf("%w: %s through %s", ErrInvalidServicePeriod, m[1], m[2]))
	}

	return from, to, nil
}

// WifiCharge returns the wifi service line amount.
func (e *Extractor) WifiCharge(text string) (*money.Money, error) {
	return e.requiredAmount(text, FieldWifiCharge, wifiRe)
}

// InternetCharge returns the internet service line amount.
func (e *Extractor) InternetCharge(text string) (*money.Money, error) {
	return e.requiredAmount(text, FieldInternet, internetRe)
}

// Taxes returns the taxes, fees and charges total.
func (e *Extractor) Taxes(text string) (*money.Money, error) {
	return e.requiredAmount(text, FieldTaxes, taxesRe)
}

// PromotionalDiscount returns the discount line when present. A discount line
// without its expiry notice is a malformed statement.
func (e *Extractor) PromotionalDiscount(text string) (Promo, error) {
	m := promoRe.FindStringSubmatch(text)
	if m == nil {
		return Promo{}, nil
	}

	discount, err := money.ParseAmount(m[1], e.currency)
	if err != nil {
		return Promo{}, invalid(FieldPromoDiscount, err)
	}

	em := promoExpiryRe.FindStringSubmatch(text)
	if em == nil {
		return Promo{}, notFound(FieldPromoExpiry, promoExpiryRe)
	}
	expiry, err := ParseShortDate(em[1])
	if err != nil {
		return Promo{}, invalid(FieldPromoExpiry, err)
	}

	return Promo{Discount: discount, Expiry: expiry, Present: true}, nil
}

// OneTimeCharges returns the one-time charges total when present.
func (e *Extractor) OneTimeCharges(text string) (Optional, error) {
	m := oneTimeRe.FindStringSubmatch(text)
	if m == nil {
		return Optional{}, nil
	}

	amount, err := money.ParseAmount(m[1], e.currency)
	if err != nil {
		return Optional{}, invalid(FieldOneTimeCharge, err)
	}

	return Optional{Amount: amount, Present: true}, nil
}

// TotalDue returns the printed total and its due date.
func (e *Extractor) TotalDue(text string) (*money.Money, time.Time, error) {
	m := totalDueRe.FindStringSubmatch(text)
	if m == nil {
		return nil, time.Time{}, notFound(FieldTotalDue, totalDueRe)
	}

	due, err := ParseShortDate(m[1])
	if err != nil {
		return nil, time.Time{}, invalid(FieldTotalDue, err)
	}
	printed, err := money.ParseAmount(m[2], e.currency)
	if err != nil {
		return nil, time.Time{}, invalid(FieldTotalDue, err)
	}

	return printed, due, nil
}

func (e *Extractor) requiredAmount(text, field string, re *regexp.Regexp) (*money.Money, error) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, notFound(field, re)
	}

	amount, err := money.ParseAmount(m[1], e.currency)
	if err != nil {
		return nil, invalid(field, err)
	}
	return amount, nil
}

func notFound(field string, re *regexp.Regexp) error {
	return &FieldNotFoundError{Field: field, Pattern: re.String()}
}

func invalid(field string, err error) error {
	return &FieldNotFoundError{Field: field, Err: err}
}
