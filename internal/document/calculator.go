package document

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/meridian-crm/meridian/internal/money"
	"github.com/meridian-crm/meridian/internal/shared"
)

// CalcOptions configures total derivation. ApplyLineTaxes folds the per-line
// tax rates into the total; it defaults to false, matching the product's
// observed behaviour of carrying tax rates as display metadata only.
type CalcOptions struct {
	ApplyLineTaxes bool
}

// Recompute derives subtotal, discount and total from the document's items
// and discount settings. It is a pure function of those inputs and is
// idempotent. Intermediate sums stay at full decimal precision; only the
// final total is rounded to the currency minor unit.
func Recompute(d Document, opts CalcOptions) Document {
	subtotal := decimal.Zero
	for _, line := range d.Items {
		subtotal = subtotal.Add(line.Amount)
	}

	var discount decimal.Decimal
	switch d.DiscountType {
	case DiscountPercent:
		discount = money.PercentOf(subtotal, money.ClampPercent(d.DiscountValue))
	case DiscountFixed:
		discount = d.DiscountValue
		if discount.IsNegative() {
			discount = decimal.Zero
		}
		// The discount can never exceed the subtotal; totals must not go
		// negative.
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
	default:
		discount = decimal.Zero
	}

	total := subtotal.Sub(discount)
	if opts.ApplyLineTaxes {
		total = total.Add(lineTaxes(d.Items, subtotal, discount))
	}

	d.Subtotal = subtotal
	d.Discount = discount
	d.Total = money.RoundTotal(total, d.Currency)
	return d
}

// VerifyTotals re-derives the document's totals and compares them to the
// stored ones. Divergence is a ConsistencyError; the record is flagged for
// audit rather than silently corrected.
func VerifyTotals(d Document, opts CalcOptions) error {
	derived := Recompute(d, opts)
	switch {
	case !d.Subtotal.Equal(derived.Subtotal):
		return consistency(d, "stored subtotal "+d.Subtotal.String()+" does not match derived "+derived.Subtotal.String())
	case !d.Discount.Equal(derived.Discount):
		return consistency(d, "stored discount "+d.Discount.String()+" does not match derived "+derived.Discount.String())
	case !d.Total.Equal(derived.Total):
		return consistency(d, "stored total "+d.Total.String()+" does not match derived "+derived.Total.String())
	}
	return nil
}

func consistency(d Document, detail string) error {
	ref := d.Number
	if ref == "" {
		ref = strconv.FormatInt(d.ID, 10)
	}
	return &shared.ConsistencyError{Entity: string(d.Kind), Ref: ref, Detail: detail}
}

// lineTaxes computes the tax carried by each line on its discounted base:
// the document-level discount is spread over lines in proportion to their
// amounts before the line's tax rates apply.
func lineTaxes(items []LineItem, subtotal, discount decimal.Decimal) decimal.Decimal {
	if subtotal.IsZero() {
		return decimal.Zero
	}
	taxes := decimal.Zero
	for _, line := range items {
		base := line.Amount.Sub(line.Amount.Mul(discount).Div(subtotal))
		rate := money.ClampPercent(line.Tax1Rate).Add(money.ClampPercent(line.Tax2Rate))
		taxes = taxes.Add(money.PercentOf(base, rate))
	}
	return taxes
}
