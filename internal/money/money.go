// Package money provides fixed-point monetary arithmetic helpers.
//
// All amounts flowing through document and payment calculations are
// decimal.Decimal values; binary floats are never used for money. Rounding to
// the currency minor unit happens only at a document's final total.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	// Zero is the zero amount.
	Zero = decimal.Zero
	// Hundred is used for percent calculations.
	Hundred = decimal.NewFromInt(100)
)

// Parse normalises a raw monetary input into a decimal amount. Currency
// symbols, thousands separators and surrounding whitespace are stripped, so
// inputs like "$12.50", "1,200.00" or " 99 " all parse.
func Parse(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-':
			return r
		default:
			return -1
		}
	}, strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("money: empty amount %q", raw)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: parse %q: %w", raw, err)
	}
	return d, nil
}

// ValidateCurrency checks that code is a well-formed ISO 4217 currency.
func ValidateCurrency(code string) error {
	if _, err := currency.ParseISO(code); err != nil {
		return fmt.Errorf("money: currency %q: %w", code, err)
	}
	return nil
}

// MinorScale returns the number of minor-unit digits for the currency.
// Unknown codes fall back to two digits.
func MinorScale(code string) int32 {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// RoundTotal rounds an amount to the currency minor unit, half away from
// zero. Intermediate sums must never pass through here; only final totals.
func RoundTotal(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(MinorScale(code))
}

// ClampPercent constrains a percentage to the [0, 100] range.
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(Hundred) {
		return Hundred
	}
	return p
}

// PercentOf returns base * (p / 100) without rounding.
func PercentOf(base, p decimal.Decimal) decimal.Decimal {
	return base.Mul(p).Div(Hundred)
}
