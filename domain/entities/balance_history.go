package entities

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceHistory is the audit row written for every ledger mutation
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	Username            string          `db:"username"`
	BalanceBefore       decimal.Decimal `db:"balance_before"`
	BalanceAfter        decimal.Decimal `db:"balance_after"`
	ChangeAmount        decimal.Decimal `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"metadata"`
	RelatedID           *string         `db:"related_id"`
	CreatedAt           time.Time       `db:"created_at"`
}

// IsPositiveChange returns true if the change amount is positive
func (bh *BalanceHistory) IsPositiveChange() bool {
	return bh.ChangeAmount.IsPositive()
}

// ValidateTransaction checks that before, change and after agree
func (bh *BalanceHistory) ValidateTransaction() error {
	if bh.ChangeAmount.IsZero() {
		return errors.New("change amount cannot be zero")
	}
	if !bh.BalanceAfter.Equal(bh.BalanceBefore.Add(bh.ChangeAmount)) {
		return errors.New("balance calculation is inconsistent")
	}
	if bh.BalanceAfter.IsNegative() {
		return errors.New("balance cannot go negative")
	}
	return nil
}
