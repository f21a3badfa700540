package document

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meridian-crm/meridian/internal/catalog"
	"github.com/meridian-crm/meridian/internal/shared"
)

// FromCatalog clones a catalog item into a line item. It is a structural
// copy: later edits to the catalog entry never reach composed lines.
func FromCatalog(item catalog.Item, quantity int64) LineItem {
	line := LineItem{
		Description: item.Description,
		Quantity:    clampQuantity(quantity),
		Rate:        item.Rate.Copy(),
		Tax1Rate:    item.Tax1Rate.Copy(),
		Tax2Rate:    item.Tax2Rate.Copy(),
	}
	return line.withAmount()
}

// NewLine builds an ad-hoc line item. Rate zero is allowed (free items);
// negative rates are rejected.
func NewLine(description string, quantity int64, rate, tax1, tax2 decimal.Decimal) (LineItem, error) {
	if strings.TrimSpace(description) == "" {
		return LineItem{}, shared.Validation("description", "must not be empty")
	}
	if rate.IsNegative() {
		return LineItem{}, shared.Validation("rate", "must not be negative")
	}
	line := LineItem{
		Description: strings.TrimSpace(description),
		Quantity:    clampQuantity(quantity),
		Rate:        rate,
		Tax1Rate:    tax1,
		Tax2Rate:    tax2,
	}
	return line.withAmount(), nil
}

// WithQuantity returns a copy with the quantity changed and the amount
// recomputed. Values below one clamp to one; repeated edits are idempotent.
func (l LineItem) WithQuantity(quantity int64) LineItem {
	l.Quantity = clampQuantity(quantity)
	return l.withAmount()
}

// WithRate returns a copy with the rate changed and the amount recomputed. A
// negative rate fails with a ValidationError and the line is left unchanged.
func (l LineItem) WithRate(rate decimal.Decimal) (LineItem, error) {
	if rate.IsNegative() {
		return l, shared.Validation("rate", "must not be negative")
	}
	l.Rate = rate
	return l.withAmount(), nil
}

func (l LineItem) withAmount() LineItem {
	l.Amount = decimal.NewFromInt(l.Quantity).Mul(l.Rate)
	return l
}

func clampQuantity(q int64) int64 {
	if q < 1 {
		return 1
	}
	return q
}
