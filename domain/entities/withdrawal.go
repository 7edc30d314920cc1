package entities

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents the state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
	WithdrawalStatusCancelled WithdrawalStatus = "cancelled"
)

// IsTerminal returns true for every status other than pending
func (s WithdrawalStatus) IsTerminal() bool {
	return s != WithdrawalStatusPending
}

// RefundsEscrow returns true if entering this status returns the escrowed amount
func (s WithdrawalStatus) RefundsEscrow() bool {
	return s == WithdrawalStatusRejected || s == WithdrawalStatusCancelled
}

var walletAddressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsValidWalletAddress checks the 0x-prefixed 40 hex digit address format
func IsValidWalletAddress(address string) bool {
	return walletAddressPattern.MatchString(address)
}

// Withdrawal is a payout request. The amount leaves the balance when the request is made.
type Withdrawal struct {
	ID            string           `db:"id"`
	Username      string           `db:"username"`
	WalletAddress string           `db:"wallet_address"`
	Amount        decimal.Decimal  `db:"amount"`
	Status        WithdrawalStatus `db:"status"`
	CreatedAt     time.Time        `db:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at"`
}

// CanTransitionTo returns true if the withdrawal may move to next.
// Only pending withdrawals move, and only into a terminal status.
func (w *Withdrawal) CanTransitionTo(next WithdrawalStatus) bool {
	return w.Status == WithdrawalStatusPending && next.IsTerminal()
}
