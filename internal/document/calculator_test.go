package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian/internal/shared"
)

func mustLine(t *testing.T, desc string, qty int64, rate, tax1, tax2 string) LineItem {
	t.Helper()
	line, err := NewLine(desc, qty, dec(rate), dec(tax1), dec(tax2))
	require.NoError(t, err)
	return line
}

func TestRecompute(t *testing.T) {
	t.Run("subtotal is the exact sum of line amounts", func(t *testing.T) {
		doc := Document{
			Currency: "USD",
			Items: []LineItem{
				mustLine(t, "a", 3, "0.10", "0", "0"),
				mustLine(t, "b", 7, "0.10", "0", "0"),
				mustLine(t, "c", 1, "0.01", "0", "0"),
			},
		}
		out := Recompute(doc, CalcOptions{})
		assert.True(t, out.Subtotal.Equal(dec("1.01")), "subtotal = %s", out.Subtotal)
		assert.True(t, out.Total.Equal(dec("1.01")), "total = %s", out.Total)
	})

	t.Run("percent discount above 100 clamps", func(t *testing.T) {
		doc := Document{
			Currency:      "USD",
			Items:         []LineItem{mustLine(t, "a", 10, "10", "0", "0")},
			DiscountType:  DiscountPercent,
			DiscountValue: dec("150"),
		}
		out := Recompute(doc, CalcOptions{})
		assert.True(t, out.Discount.Equal(dec("100")), "discount = %s", out.Discount)
		assert.True(t, out.Total.IsZero(), "total = %s", out.Total)
	})

	t.Run("fixed discount never exceeds subtotal", func(t *testing.T) {
		doc := Document{
			Currency:      "USD",
			Items:         []LineItem{mustLine(t, "a", 10, "10", "0", "0")},
			DiscountType:  DiscountFixed,
			DiscountValue: dec("500"),
		}
		out := Recompute(doc, CalcOptions{})
		assert.True(t, out.Discount.Equal(dec("100")), "discount = %s", out.Discount)
		assert.True(t, out.Total.IsZero(), "total = %s", out.Total)
	})

	t.Run("negative fixed discount is treated as zero", func(t *testing.T) {
		doc := Document{
			Currency:      "USD",
			Items:         []LineItem{mustLine(t, "a", 1, "100", "0", "0")},
			DiscountType:  DiscountFixed,
			DiscountValue: dec("-20"),
		}
		out := Recompute(doc, CalcOptions{})
		assert.True(t, out.Discount.IsZero())
		assert.True(t, out.Total.Equal(dec("100")))
	})

	t.Run("recompute is idempotent", func(t *testing.T) {
		doc := Document{
			Currency:      "USD",
			Items:         []LineItem{mustLine(t, "a", 3, "33.33", "5", "2.5"), mustLine(t, "b", 1, "0.07", "0", "0")},
			DiscountType:  DiscountPercent,
			DiscountValue: dec("12.5"),
		}
		once := Recompute(doc, CalcOptions{})
		twice := Recompute(once, CalcOptions{})
		assert.True(t, once.Subtotal.Equal(twice.Subtotal))
		assert.True(t, once.Discount.Equal(twice.Discount))
		assert.True(t, once.Total.Equal(twice.Total))
	})

	t.Run("line taxes are metadata by default", func(t *testing.T) {
		doc := Document{
			Currency: "USD",
			Items:    []LineItem{mustLine(t, "a", 1, "100", "10", "5")},
		}
		out := Recompute(doc, CalcOptions{})
		assert.True(t, out.Total.Equal(dec("100")), "total = %s", out.Total)
	})

	t.Run("rounding happens only at the final total", func(t *testing.T) {
		// Three lines of 1/3 dollar each would drift if rounded per line.
		doc := Document{
			Currency: "USD",
			Items: []LineItem{
				mustLine(t, "a", 1, "0.333", "0", "0"),
				mustLine(t, "b", 1, "0.333", "0", "0"),
				mustLine(t, "c", 1, "0.334", "0", "0"),
			},
		}
		out := Recompute(doc, CalcOptions{})
		assert.True(t, out.Subtotal.Equal(dec("1")), "subtotal = %s", out.Subtotal)
		assert.True(t, out.Total.Equal(dec("1")), "total = %s", out.Total)
	})
}

func TestRecomputeWithLineTaxes(t *testing.T) {
	opts := CalcOptions{ApplyLineTaxes: true}

	t.Run("taxes apply per line", func(t *testing.T) {
		doc := Document{
			Currency: "USD",
			Items: []LineItem{
				mustLine(t, "taxed", 1, "100", "10", "5"),
				mustLine(t, "exempt", 1, "100", "0", "0"),
			},
		}
		out := Recompute(doc, opts)
		// 100 * 15% tax on the first line only.
		assert.True(t, out.Total.Equal(dec("215")), "total = %s", out.Total)
	})

	t.Run("discount reduces the taxable base proportionally", func(t *testing.T) {
		doc := Document{
			Currency:      "USD",
			Items:         []LineItem{mustLine(t, "taxed", 1, "100", "10", "0")},
			DiscountType:  DiscountPercent,
			DiscountValue: dec("50"),
		}
		out := Recompute(doc, opts)
		// Subtotal 100, discount 50, tax 10% of the discounted 50 = 5.
		assert.True(t, out.Total.Equal(dec("55")), "total = %s", out.Total)
	})

	t.Run("idempotent with taxes enabled", func(t *testing.T) {
		doc := Document{
			Currency:      "USD",
			Items:         []LineItem{mustLine(t, "a", 3, "19.99", "7.25", "1.5")},
			DiscountType:  DiscountFixed,
			DiscountValue: dec("10"),
		}
		once := Recompute(doc, opts)
		twice := Recompute(once, opts)
		assert.True(t, once.Total.Equal(twice.Total))
		assert.True(t, once.Subtotal.Equal(twice.Subtotal))
		assert.True(t, once.Discount.Equal(twice.Discount))
	})
}

func TestVerifyTotals(t *testing.T) {
	doc := Document{
		Number:   "INV-000001",
		Kind:     KindInvoice,
		Currency: "USD",
		Items:    []LineItem{mustLine(t, "a", 2, "50", "0", "0")},
	}
	doc = Recompute(doc, CalcOptions{})
	require.NoError(t, VerifyTotals(doc, CalcOptions{}))

	t.Run("tampered total is flagged not corrected", func(t *testing.T) {
		tampered := doc
		tampered.Total = dec("1")
		err := VerifyTotals(tampered, CalcOptions{})
		require.Error(t, err)
		assert.True(t, shared.IsConsistency(err))
		assert.Contains(t, err.Error(), "INV-000001")
		// The document itself stays untouched.
		assert.True(t, tampered.Total.Equal(dec("1")))
	})
}
