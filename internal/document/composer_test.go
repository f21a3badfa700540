package document

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian/internal/catalog"
	"github.com/meridian-crm/meridian/internal/shared"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFromCatalog(t *testing.T) {
	item := catalog.Item{
		ID:          1,
		Description: "Consulting hour",
		Rate:        dec("150"),
		Tax1Rate:    dec("10"),
		OwnerID:     5,
	}

	line := FromCatalog(item, 3)
	assert.Equal(t, "Consulting hour", line.Description)
	assert.Equal(t, int64(3), line.Quantity)
	assert.True(t, line.Amount.Equal(dec("450")), "amount = %s", line.Amount)

	t.Run("later catalog edits do not reach composed lines", func(t *testing.T) {
		item.Rate = dec("999")
		item.Description = "changed"
		assert.Equal(t, "Consulting hour", line.Description)
		assert.True(t, line.Rate.Equal(dec("150")))
	})

	t.Run("non-positive quantity clamps to one", func(t *testing.T) {
		line := FromCatalog(item, 0)
		assert.Equal(t, int64(1), line.Quantity)
		line = FromCatalog(item, -4)
		assert.Equal(t, int64(1), line.Quantity)
	})
}

func TestNewLine(t *testing.T) {
	t.Run("zero rate is allowed", func(t *testing.T) {
		line, err := NewLine("Free sample", 2, decimal.Zero, decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, line.Amount.IsZero())
	})

	t.Run("empty description is rejected", func(t *testing.T) {
		_, err := NewLine("   ", 1, dec("10"), decimal.Zero, decimal.Zero)
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("negative rate is rejected", func(t *testing.T) {
		_, err := NewLine("Widget", 1, dec("-1"), decimal.Zero, decimal.Zero)
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestLineItemUpdates(t *testing.T) {
	line, err := NewLine("Widget", 2, dec("10"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.True(t, line.Amount.Equal(dec("20")))

	t.Run("quantity change recomputes amount", func(t *testing.T) {
		updated := line.WithQuantity(5)
		assert.True(t, updated.Amount.Equal(dec("50")), "amount = %s", updated.Amount)
	})

	t.Run("quantity clamp is idempotent across repeated edits", func(t *testing.T) {
		once := line.WithQuantity(-3)
		twice := once.WithQuantity(-3)
		assert.Equal(t, once, twice)
		assert.Equal(t, int64(1), twice.Quantity)
	})

	t.Run("rate change recomputes amount", func(t *testing.T) {
		updated, err := line.WithRate(dec("12.5"))
		require.NoError(t, err)
		assert.True(t, updated.Amount.Equal(dec("25")), "amount = %s", updated.Amount)
	})

	t.Run("negative rate fails and leaves the line unchanged", func(t *testing.T) {
		updated, err := line.WithRate(dec("-5"))
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		assert.Equal(t, line, updated)
	})
}
