package services

import (
	"strings"

	"dailybet/domain/apperrors"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept on balances and payouts
const AmountPlaces = 5

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// RoundAmount applies the balance rounding policy to computed values such as payouts and wei conversions
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(AmountPlaces)
}

// ValidateAmount rejects non-positive amounts and amounts finer than AmountPlaces.
// Requested amounts are never rounded, so a debit cannot shrink to fit a balance.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.Validation("amount must be greater than zero")
	}
	if !amount.Equal(RoundAmount(amount)) {
		return apperrors.Validation("amount %s has more than %d decimal places", amount.String(), AmountPlaces)
	}
	return nil
}

// OddsToMultiplier converts an American odds string to a payout multiplier.
// Positive o pays o/100 + 1, negative o pays 100/|o| + 1.
// Unparseable odds return 1, which refunds the stake. Zero has no defined payout and also returns 1.
func OddsToMultiplier(odds string) decimal.Decimal {
	value, ok := parseAmericanOdds(odds)
	if !ok || value.IsZero() {
		return one
	}
	if value.IsPositive() {
		return value.Div(hundred).Add(one)
	}
	return hundred.Div(value.Abs()).Add(one)
}

// CalculatePayout returns the rounded credit for a winning stake
func CalculatePayout(amount, multiplier decimal.Decimal) decimal.Decimal {
	return RoundAmount(amount.Mul(multiplier))
}

// parseAmericanOdds reads an optionally signed integer prefix after leading whitespace.
// "150" and "+150" give 150, "-200x" gives -200, "abc" fails.
func parseAmericanOdds(odds string) (decimal.Decimal, bool) {
	s := strings.TrimLeft(odds, " \t\n\r\v\f")
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = "-"
		}
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return decimal.Zero, false
	}

	value, err := decimal.NewFromString(sign + s[:end])
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}
