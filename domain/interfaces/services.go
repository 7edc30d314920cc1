package interfaces

import (
	"context"
	"time"

	"dailybet/domain/entities"

	"github.com/shopspring/decimal"
)

// LedgerEntry describes one balance mutation
type LedgerEntry struct {
	Username  string
	Amount    decimal.Decimal // always positive; direction comes from the operation
	Type      entities.TransactionType
	RelatedID *string
	Metadata  map[string]any
}

// LedgerService is the only component allowed to change a balance
type LedgerService interface {
	// Debit removes entry.Amount, failing with ErrInsufficientFunds if it exceeds the balance
	Debit(ctx context.Context, entry LedgerEntry) (*entities.BalanceHistory, error)

	// Credit adds entry.Amount
	Credit(ctx context.Context, entry LedgerEntry) (*entities.BalanceHistory, error)
}

// SetLineParams is the admin input for a daily line
type SetLineParams struct {
	Question   string
	YesOdds    string
	NoOdds     string
	CutoffTime string // RFC3339, or YYYY-MM-DDTHH:MM read as UTC
}

// PlaceBetResult is returned after a bet is accepted
type PlaceBetResult struct {
	Bet     *entities.Bet
	Balance decimal.Decimal
	Volume  *entities.BetVolume
}

// BetView is a bet with its outcome against the line
type BetView struct {
	Bet    *entities.Bet
	Status entities.BetStatus
}

// LineService manages the daily line lifecycle and bet placement
type LineService interface {
	SetDailyLine(ctx context.Context, params SetLineParams) (*entities.DailyLine, error)
	GetTodayLine(ctx context.Context) (*entities.DailyLine, error)
	PlaceBet(ctx context.Context, username string, choice entities.Side, amount decimal.Decimal) (*PlaceBetResult, error)
	GetBetVolume(ctx context.Context) (*entities.BetVolume, error)
	ListTodayBets(ctx context.Context) ([]BetView, error)

	// ResolveLine records the winning side once. A resolved line returns ErrAlreadyProcessed.
	ResolveLine(ctx context.Context, date string, side entities.Side) (*entities.DailyLine, error)
}

// Payout is one winner's settlement credit
type Payout struct {
	Bet    *entities.Bet
	Amount decimal.Decimal
}

// SettlementPlan is the computed outcome of a resolved line
type SettlementPlan struct {
	Line        *entities.DailyLine
	WinningSide entities.Side
	Multiplier  decimal.Decimal
	Payouts     []Payout
}

// SettlementService computes payouts for a resolved line
type SettlementService interface {
	PlanSettlement(ctx context.Context, line *entities.DailyLine) (*SettlementPlan, error)
	CreditPayout(ctx context.Context, plan *SettlementPlan, payout Payout) (*entities.BalanceHistory, error)
}

// WithdrawalService handles escrowed withdrawal requests
type WithdrawalService interface {
	RequestWithdrawal(ctx context.Context, username, walletAddress string, amount decimal.Decimal) (*entities.Withdrawal, decimal.Decimal, error)
	CancelWithdrawal(ctx context.Context, id, actor string, actorIsAdmin bool) (*entities.Withdrawal, error)
	ApproveWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error)
	RejectWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error)
	GetWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error)
	ListWithdrawals(ctx context.Context) ([]*entities.Withdrawal, error)
	ListUserWithdrawals(ctx context.Context, username string) ([]*entities.Withdrawal, error)
}

// DepositService verifies on-chain deposits against registered senders
type DepositService interface {
	DepositAddress() (string, error)
	RegisterSender(ctx context.Context, username, senderAddress string, submittedAt time.Time) error
	VerifyDeposit(ctx context.Context, username, txid, senderAddress string) (*entities.DepositTxid, decimal.Decimal, error)
}

// LoginResult is returned from a successful login
type LoginResult struct {
	User    *entities.User
	Created bool
}

// AccountService handles credentials and account reads
type AccountService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
	GetBalance(ctx context.Context, username string) (decimal.Decimal, error)
	ListUsers(ctx context.Context) ([]*entities.UserSummary, error)
	GrantAdmin(ctx context.Context, username string) error
}

// BlockchainLookup fetches transaction details from an explorer.
// Missing transactions return ErrNotFound, transport failures ErrUpstreamUnavailable.
type BlockchainLookup interface {
	GetTransaction(ctx context.Context, txid string) (*entities.ChainTransaction, error)
}
