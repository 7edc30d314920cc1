package services

import (
	"testing"

	"dailybet/domain/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOddsToMultiplier(t *testing.T) {
	tests := []struct {
		odds     string
		expected string
	}{
		{"150", "2.5"},
		{"-200", "1.5"},
		{"+120", "2.2"},
		{"100", "2"},
		{"-100", "2"},
		{"-400", "1.25"},
		{"250", "3.5"},
		{" -150 ", "1.6666666666666667"},
		{"175.9", "2.75"},
		{"-110abc", "1.9090909090909091"},
		{"abc", "1"},
		{"", "1"},
		{"-", "1"},
		{"0", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.odds, func(t *testing.T) {
			got := OddsToMultiplier(tt.odds)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "odds %q: got %s want %s", tt.odds, got, tt.expected)
		})
	}
}

func TestOddsToMultiplier_Rules(t *testing.T) {
	t.Run("positive odds pay o/100 + 1", func(t *testing.T) {
		for o := int64(100); o <= 1000; o += 37 {
			expected := decimal.NewFromInt(o).Div(hundred).Add(one)
			got := OddsToMultiplier(decimal.NewFromInt(o).String())
			assert.True(t, got.Equal(expected), "odds %d", o)
		}
	})

	t.Run("negative odds pay 100/|o| + 1", func(t *testing.T) {
		for o := int64(-1000); o <= -100; o += 41 {
			expected := hundred.Div(decimal.NewFromInt(-o)).Add(one)
			got := OddsToMultiplier(decimal.NewFromInt(o).String())
			assert.True(t, got.Equal(expected), "odds %d", o)
		}
	})
}

func TestCalculatePayout(t *testing.T) {
	multiplier := OddsToMultiplier("150")
	assert.Equal(t, "2.5", CalculatePayout(decimal.RequireFromString("1.0"), multiplier).String())
	assert.Equal(t, "5", CalculatePayout(decimal.RequireFromString("2.0"), multiplier).String())

	// 0.1 at -300 is 0.1333... and rounds at the fifth place
	assert.Equal(t, "0.13333", CalculatePayout(decimal.RequireFromString("0.1"), OddsToMultiplier("-300")).String())
}

func TestRoundAmount(t *testing.T) {
	assert.Equal(t, "1.23457", RoundAmount(decimal.RequireFromString("1.234565")).String())
	assert.Equal(t, "0.1", RoundAmount(decimal.RequireFromString("0.1")).String())
	assert.Equal(t, "-0.00001", RoundAmount(decimal.RequireFromString("-0.000005")).String())
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		amount string
		valid  bool
	}{
		{"1", true},
		{"0.00001", true},
		{"1.50000", true},
		{"0", false},
		{"-0.5", false},
		{"0.000001", false},
		{"1.000004", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			}
		})
	}
}
