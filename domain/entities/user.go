package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account holder. Balance is mutated only through the ledger.
type User struct {
	Username     string          `db:"username"`
	PasswordHash string          `db:"password_hash"`
	Balance      decimal.Decimal `db:"balance"`
	IsAdmin      bool            `db:"is_admin"`
	CreatedAt    time.Time       `db:"created_at"`
	LastActive   time.Time       `db:"last_active"`
}

// CanAfford checks if the user has sufficient balance for an amount
func (u *User) CanAfford(amount decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(amount)
}

// UserSummary is the admin view of an account
type UserSummary struct {
	Username  string          `json:"username"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}
