package interfaces

import (
	"context"
	"time"

	"dailybet/domain/entities"
	"dailybet/domain/events"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data access.
// Getters return nil, nil when the user does not exist.
type UserRepository interface {
	// GetByUsername retrieves a user without locking
	GetByUsername(ctx context.Context, username string) (*entities.User, error)

	// GetForUpdate retrieves a user and locks the row until the transaction ends
	GetForUpdate(ctx context.Context, username string) (*entities.User, error)

	// Create inserts a user with a zero balance. Returns nil, nil if the username was taken concurrently.
	Create(ctx context.Context, username, passwordHash string) (*entities.User, error)

	// UpdateBalance sets the balance if it still equals expected
	UpdateBalance(ctx context.Context, username string, expected, newBalance decimal.Decimal) error

	// UpdatePassword replaces the stored password hash
	UpdatePassword(ctx context.Context, username, passwordHash string) error

	// TouchLastActive records a successful login
	TouchLastActive(ctx context.Context, username string, at time.Time) error

	// SetAdmin flags or unflags a user as admin
	SetAdmin(ctx context.Context, username string, isAdmin bool) error

	// ListByBalance returns every user, richest first
	ListByBalance(ctx context.Context) ([]*entities.UserSummary, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry and sets its ID
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByUser returns the most recent entries for a user
	GetByUser(ctx context.Context, username string, limit int) ([]*entities.BalanceHistory, error)
}

// DailyLineRepository defines the interface for daily line storage keyed by YYYY-MM-DD
type DailyLineRepository interface {
	// GetByDate retrieves a line, nil if none is set for the date
	GetByDate(ctx context.Context, date string) (*entities.DailyLine, error)

	// GetByDateForShare retrieves a line and holds a share lock so it cannot be resolved concurrently
	GetByDateForShare(ctx context.Context, date string) (*entities.DailyLine, error)

	// Upsert creates or replaces the line for line.Date. An existing winning side is kept.
	Upsert(ctx context.Context, line *entities.DailyLine) (*entities.DailyLine, error)

	// SetWinningSide records the winner only if none is set yet. Returns false if the line was already resolved.
	SetWinningSide(ctx context.Context, date string, side entities.Side, resolvedAt time.Time) (bool, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create inserts a bet. ID is generated by the caller.
	Create(ctx context.Context, bet *entities.Bet) error

	// ListByLine returns every bet on a line, newest first
	ListByLine(ctx context.Context, lineDate string) ([]*entities.Bet, error)

	// ListByLineAndChoice returns the bets on a line for one side
	ListByLineAndChoice(ctx context.Context, lineDate string, choice entities.Side) ([]*entities.Bet, error)

	// VolumeByLine returns the bet count and total stake on a line
	VolumeByLine(ctx context.Context, lineDate string) (*entities.BetVolume, error)
}

// WithdrawalRepository defines the interface for withdrawal requests
type WithdrawalRepository interface {
	// Create inserts a withdrawal. ID is generated by the caller.
	Create(ctx context.Context, withdrawal *entities.Withdrawal) error

	// GetByID retrieves a withdrawal, nil if missing
	GetByID(ctx context.Context, id string) (*entities.Withdrawal, error)

	// GetByIDForUpdate retrieves and locks a withdrawal
	GetByIDForUpdate(ctx context.Context, id string) (*entities.Withdrawal, error)

	// UpdateStatus moves a withdrawal from one status to another. Returns false if it was not in from.
	UpdateStatus(ctx context.Context, id string, from, to entities.WithdrawalStatus) (bool, error)

	// ListAll returns every withdrawal, newest first
	ListAll(ctx context.Context) ([]*entities.Withdrawal, error)

	// ListByUser returns a user's withdrawals, newest first
	ListByUser(ctx context.Context, username string) ([]*entities.Withdrawal, error)
}

// DepositRepository defines the interface for consumed deposit transaction ids
type DepositRepository interface {
	// Exists reports whether txid has already been consumed
	Exists(ctx context.Context, txid string) (bool, error)

	// Create records a consumed txid. A duplicate returns apperrors.ErrAlreadyProcessed.
	Create(ctx context.Context, deposit *entities.DepositTxid) error
}

// SenderRecordRepository defines the interface for registered deposit source addresses
type SenderRecordRepository interface {
	// Upsert registers address for username, replacing the submitted time if it exists
	Upsert(ctx context.Context, record *entities.SenderRecord) error

	// Get returns the registration, nil if missing
	Get(ctx context.Context, username, senderAddress string) (*entities.SenderRecord, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes all buffered events
	Flush(ctx context.Context) error

	// Discard drops all buffered events
	Discard()
}
