package application

import (
	"context"

	"dailybet/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes buffered events
	Commit() error

	// Rollback rolls back the transaction and drops buffered events
	Rollback() error

	// Repository getters
	UserRepository() interfaces.UserRepository
	BalanceHistoryRepository() interfaces.BalanceHistoryRepository
	DailyLineRepository() interfaces.DailyLineRepository
	BetRepository() interfaces.BetRepository
	WithdrawalRepository() interfaces.WithdrawalRepository
	DepositRepository() interfaces.DepositRepository
	SenderRecordRepository() interfaces.SenderRecordRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
