package entities

// TransactionType represents the type of balance change
type TransactionType string

const (
	// Betting
	TransactionTypeBetPlaced TransactionType = "bet_placed"
	TransactionTypeBetWin    TransactionType = "bet_win"

	// Wallet
	TransactionTypeDeposit          TransactionType = "deposit"
	TransactionTypeWithdrawal       TransactionType = "withdrawal"
	TransactionTypeWithdrawalRefund TransactionType = "withdrawal_refund"

	// Manual corrections from the admin CLI
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// IsCredit returns true if the transaction type adds to the balance
func (tt TransactionType) IsCredit() bool {
	switch tt {
	case TransactionTypeBetWin, TransactionTypeDeposit, TransactionTypeWithdrawalRefund:
		return true
	}
	return false
}

// IsDebit returns true if the transaction type removes from the balance
func (tt TransactionType) IsDebit() bool {
	return tt == TransactionTypeBetPlaced || tt == TransactionTypeWithdrawal
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
