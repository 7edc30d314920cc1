package events

import (
	"dailybet/domain/entities"

	"github.com/shopspring/decimal"
)

// EventType represents different types of events in the system.
// The values double as the names pushed to websocket clients.
type EventType string

const (
	EventTypeBalanceChange     EventType = "balance_updated"
	EventTypeDailyLineUpdated  EventType = "daily_line_updated"
	EventTypeLineResolved      EventType = "daily_line_resolved"
	EventTypeBetPlaced         EventType = "bet_placed"
	EventTypeBetVolumeUpdated  EventType = "bet_volume_updated"
	EventTypeWithdrawalUpdated EventType = "withdrawal:update"
	EventTypeDepositVerified   EventType = "deposit_verified"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserScoped is implemented by events addressed to a single user
type UserScoped interface {
	Event
	Recipient() string
}

// BalanceChangeEvent is emitted by the ledger after every mutation
type BalanceChangeEvent struct {
	Username        string                   `json:"username"`
	OldBalance      decimal.Decimal          `json:"old_balance"`
	NewBalance      decimal.Decimal          `json:"balance"`
	ChangeAmount    decimal.Decimal          `json:"change_amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

func (e BalanceChangeEvent) Recipient() string {
	return e.Username
}

// DailyLineUpdatedEvent is emitted when an admin sets a line
type DailyLineUpdatedEvent struct {
	Line entities.DailyLine `json:"line"`
}

func (e DailyLineUpdatedEvent) Type() EventType {
	return EventTypeDailyLineUpdated
}

// LineResolvedEvent is emitted once a line's winners have been credited
type LineResolvedEvent struct {
	Line            entities.DailyLine `json:"line"`
	WinningSide     entities.Side      `json:"winning_side"`
	Multiplier      decimal.Decimal    `json:"multiplier"`
	WinnersCredited int                `json:"winners_credited"`
	FailedCredits   int                `json:"failed_credits"`
	TotalPaid       decimal.Decimal    `json:"total_paid"`
}

func (e LineResolvedEvent) Type() EventType {
	return EventTypeLineResolved
}

// BetPlacedEvent represents a bet that was placed
type BetPlacedEvent struct {
	BetID    string          `json:"bet_id"`
	Username string          `json:"username"`
	Choice   entities.Side   `json:"choice"`
	Amount   decimal.Decimal `json:"amount"`
	LineDate string          `json:"line_date"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetVolumeUpdatedEvent carries the running totals for a line
type BetVolumeUpdatedEvent struct {
	LineDate    string          `json:"line_date"`
	TotalBets   int             `json:"total_bets"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (e BetVolumeUpdatedEvent) Type() EventType {
	return EventTypeBetVolumeUpdated
}

// WithdrawalUpdatedEvent is emitted on every withdrawal status change, including creation
type WithdrawalUpdatedEvent struct {
	WithdrawalID string                    `json:"withdrawal_id"`
	Username     string                    `json:"username"`
	Status       entities.WithdrawalStatus `json:"status"`
	Amount       decimal.Decimal           `json:"amount"`
}

func (e WithdrawalUpdatedEvent) Type() EventType {
	return EventTypeWithdrawalUpdated
}

// DepositVerifiedEvent is emitted after a deposit has been credited
type DepositVerifiedEvent struct {
	Txid     string          `json:"txid"`
	Username string          `json:"username"`
	Amount   decimal.Decimal `json:"amount"`
}

func (e DepositVerifiedEvent) Type() EventType {
	return EventTypeDepositVerified
}

func (e DepositVerifiedEvent) Recipient() string {
	return e.Username
}
