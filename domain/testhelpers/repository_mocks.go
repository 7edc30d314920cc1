package testhelpers

import (
	"context"
	"time"

	"dailybet/domain/entities"
	"dailybet/domain/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetForUpdate(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, username, passwordHash string) (*entities.User, error) {
	args := m.Called(ctx, username, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateBalance(ctx context.Context, username string, expected, newBalance decimal.Decimal) error {
	args := m.Called(ctx, username, expected, newBalance)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	args := m.Called(ctx, username, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) TouchLastActive(ctx context.Context, username string, at time.Time) error {
	args := m.Called(ctx, username, at)
	return args.Error(0)
}

func (m *MockUserRepository) SetAdmin(ctx context.Context, username string, isAdmin bool) error {
	args := m.Called(ctx, username, isAdmin)
	return args.Error(0)
}

func (m *MockUserRepository) ListByBalance(ctx context.Context) ([]*entities.UserSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.UserSummary), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, username string, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, username, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockDailyLineRepository is a mock implementation of DailyLineRepository
type MockDailyLineRepository struct {
	mock.Mock
}

func (m *MockDailyLineRepository) GetByDate(ctx context.Context, date string) (*entities.DailyLine, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyLine), args.Error(1)
}

func (m *MockDailyLineRepository) GetByDateForShare(ctx context.Context, date string) (*entities.DailyLine, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyLine), args.Error(1)
}

func (m *MockDailyLineRepository) Upsert(ctx context.Context, line *entities.DailyLine) (*entities.DailyLine, error) {
	args := m.Called(ctx, line)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyLine), args.Error(1)
}

func (m *MockDailyLineRepository) SetWinningSide(ctx context.Context, date string, side entities.Side, resolvedAt time.Time) (bool, error) {
	args := m.Called(ctx, date, side, resolvedAt)
	return args.Bool(0), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) ListByLine(ctx context.Context, lineDate string) ([]*entities.Bet, error) {
	args := m.Called(ctx, lineDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) ListByLineAndChoice(ctx context.Context, lineDate string, choice entities.Side) ([]*entities.Bet, error) {
	args := m.Called(ctx, lineDate, choice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) VolumeByLine(ctx context.Context, lineDate string) (*entities.BetVolume, error) {
	args := m.Called(ctx, lineDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BetVolume), args.Error(1)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, withdrawal *entities.Withdrawal) error {
	args := m.Called(ctx, withdrawal)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetByID(ctx context.Context, id string) (*entities.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) UpdateStatus(ctx context.Context, id string, from, to entities.WithdrawalStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockWithdrawalRepository) ListAll(ctx context.Context) ([]*entities.Withdrawal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) ListByUser(ctx context.Context, username string) ([]*entities.Withdrawal, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Withdrawal), args.Error(1)
}

// MockDepositRepository is a mock implementation of DepositRepository
type MockDepositRepository struct {
	mock.Mock
}

func (m *MockDepositRepository) Exists(ctx context.Context, txid string) (bool, error) {
	args := m.Called(ctx, txid)
	return args.Bool(0), args.Error(1)
}

func (m *MockDepositRepository) Create(ctx context.Context, deposit *entities.DepositTxid) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}

// MockSenderRecordRepository is a mock implementation of SenderRecordRepository
type MockSenderRecordRepository struct {
	mock.Mock
}

func (m *MockSenderRecordRepository) Upsert(ctx context.Context, record *entities.SenderRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSenderRecordRepository) Get(ctx context.Context, username, senderAddress string) (*entities.SenderRecord, error) {
	args := m.Called(ctx, username, senderAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SenderRecord), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockBlockchainLookup is a mock implementation of BlockchainLookup
type MockBlockchainLookup struct {
	mock.Mock
}

func (m *MockBlockchainLookup) GetTransaction(ctx context.Context, txid string) (*entities.ChainTransaction, error) {
	args := m.Called(ctx, txid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ChainTransaction), args.Error(1)
}
