package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStripsFormatting(t *testing.T) {
	cases := map[string]string{
		"$12.50":   "12.5",
		"1,200.00": "1200",
		" 99 ":     "99",
		"0":        "0",
		"€45.90":   "45.9",
		"-3.25":    "-3.25",
	}
	for raw, want := range cases {
		got, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%s -> %s", raw, got)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "$", "--", "1.2.3"} {
		_, err := Parse(raw)
		assert.Error(t, err, raw)
	}
}

func TestValidateCurrency(t *testing.T) {
	require.NoError(t, ValidateCurrency("USD"))
	require.NoError(t, ValidateCurrency("JPY"))
	assert.Error(t, ValidateCurrency("US"))
	assert.Error(t, ValidateCurrency("NOPE"))
}

func TestRoundTotalUsesMinorScale(t *testing.T) {
	usd := RoundTotal(decimal.RequireFromString("10.005"), "USD")
	assert.True(t, usd.Equal(decimal.RequireFromString("10.01")), "got %s", usd)

	// Yen has no minor unit.
	jpy := RoundTotal(decimal.RequireFromString("10.4"), "JPY")
	assert.True(t, jpy.Equal(decimal.NewFromInt(10)), "got %s", jpy)
}

func TestClampPercent(t *testing.T) {
	assert.True(t, ClampPercent(decimal.NewFromInt(-5)).IsZero())
	assert.True(t, ClampPercent(decimal.NewFromInt(150)).Equal(Hundred))
	assert.True(t, ClampPercent(decimal.NewFromInt(40)).Equal(decimal.NewFromInt(40)))
}

func TestPercentOf(t *testing.T) {
	got := PercentOf(decimal.NewFromInt(200), decimal.NewFromInt(15))
	assert.True(t, got.Equal(decimal.NewFromInt(30)), "got %s", got)
}
