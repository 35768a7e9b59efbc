// Package format renders numbers, currency, and percentages with
// locale-aware separators for the dashboard's fixed target locale. This is
// presentation only; the transforms never touch formatted strings.
package format

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter formats values for one locale and currency.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// New creates a Formatter for a BCP 47 locale tag and an ISO 4217 currency
// code, e.g. ("es-CO", "COP").
func New(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}
	return &Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
	}, nil
}

// Number formats with grouping and exactly two fraction digits.
func (f *Formatter) Number(v float64) string {
	return f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// Currency formats an amount with the currency symbol.
func (f *Formatter) Currency(v float64) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(v)))
}

// Volume formats an integer count with grouping and no fraction digits.
func (f *Formatter) Volume(v int64) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}

// Percent renders a signed relative variation, e.g. "+1,25%".
func (f *Formatter) Percent(v float64) string {
	sign := ""
	if v >= 0 {
		sign = "+"
	}
	return sign + f.Number(v) + "%"
}
