package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	assert.True(t, RoundMoney(decimal.RequireFromString("40.505")).Equal(decimal.RequireFromString("40.51")))
	assert.True(t, RoundMoney(decimal.RequireFromString("10")).Equal(decimal.NewFromInt(10)))
}

func TestPercentToRate(t *testing.T) {
	assert.True(t, PercentToRate(decimal.NewFromInt(35)).Equal(decimal.RequireFromString("0.35")))
}

func TestWeightedAverage(t *testing.T) {
	t.Run("averages by quantity", func(t *testing.T) {
		got := WeightedAverage(10, decimal.NewFromInt(2), 30, decimal.NewFromInt(4))
		assert.True(t, got.Equal(decimal.RequireFromString("3.5")), got.String())
	})

	t.Run("empty existing stock takes incoming cost", func(t *testing.T) {
		got := WeightedAverage(0, decimal.NewFromInt(99), 5, decimal.NewFromInt(3))
		assert.True(t, got.Equal(decimal.NewFromInt(3)))
	})

	t.Run("zero total keeps incoming cost", func(t *testing.T) {
		got := WeightedAverage(0, decimal.NewFromInt(1), 0, decimal.NewFromInt(7))
		assert.True(t, got.Equal(decimal.NewFromInt(7)))
	})
}

func TestFormatBRL(t *testing.T) {
	out := FormatBRL(decimal.RequireFromString("12.5"))
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "12")
}
