package services

import (
	"time"

	"dailybet/domain/entities"
	"dailybet/domain/events"
	"dailybet/domain/interfaces"
	"dailybet/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestUsername      = "alice"
	TestOtherUsername = "bob"
	TestLineDate      = "2025-03-10"
	TestWallet        = "0x52908400098527886E0F7030069857D2E4169EE7"
	TestPlatform      = "0x1111111111111111111111111111111111111111"
	TestTxid          = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
)

// TestNow is inside the trading window of TestLineDate
var TestNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	UserRepo           *testhelpers.MockUserRepository
	BalanceHistoryRepo *testhelpers.MockBalanceHistoryRepository
	DailyLineRepo      *testhelpers.MockDailyLineRepository
	BetRepo            *testhelpers.MockBetRepository
	WithdrawalRepo     *testhelpers.MockWithdrawalRepository
	DepositRepo        *testhelpers.MockDepositRepository
	SenderRecordRepo   *testhelpers.MockSenderRecordRepository
	EventPublisher     *testhelpers.MockEventPublisher
	BlockchainLookup   *testhelpers.MockBlockchainLookup
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		UserRepo:           &testhelpers.MockUserRepository{},
		BalanceHistoryRepo: &testhelpers.MockBalanceHistoryRepository{},
		DailyLineRepo:      &testhelpers.MockDailyLineRepository{},
		BetRepo:            &testhelpers.MockBetRepository{},
		WithdrawalRepo:     &testhelpers.MockWithdrawalRepository{},
		DepositRepo:        &testhelpers.MockDepositRepository{},
		SenderRecordRepo:   &testhelpers.MockSenderRecordRepository{},
		EventPublisher:     &testhelpers.MockEventPublisher{},
		BlockchainLookup:   &testhelpers.MockBlockchainLookup{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t mock.TestingT) {
	m.UserRepo.AssertExpectations(t)
	m.BalanceHistoryRepo.AssertExpectations(t)
	m.DailyLineRepo.AssertExpectations(t)
	m.BetRepo.AssertExpectations(t)
	m.WithdrawalRepo.AssertExpectations(t)
	m.DepositRepo.AssertExpectations(t)
	m.SenderRecordRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.BlockchainLookup.AssertExpectations(t)
}

// Ledger returns a ledger wired to the mocks
func (m *TestMocks) Ledger() *ledgerService {
	return NewLedgerService(m.UserRepo, m.BalanceHistoryRepo, m.EventPublisher).(*ledgerService)
}

// dec parses a decimal literal, panicking on typos in test data
func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decEq matches a decimal argument by value rather than representation
func decEq(s string) interface{} {
	expected := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(expected)
	})
}

// ExpectLedgerMutation sets up the lock, update, history and event calls of one ledger operation
func (m *TestMocks) ExpectLedgerMutation(username, before, after string, txType entities.TransactionType) {
	m.UserRepo.On("GetForUpdate", mock.Anything, username).
		Return(&entities.User{Username: username, Balance: dec(before)}, nil).Once()
	m.UserRepo.On("UpdateBalance", mock.Anything, username, decEq(before), decEq(after)).Return(nil).Once()
	m.BalanceHistoryRepo.On("Record", mock.Anything, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.Username == username &&
			h.TransactionType == txType &&
			h.BalanceBefore.Equal(dec(before)) &&
			h.BalanceAfter.Equal(dec(after))
	})).Return(nil).Once()
	m.EventPublisher.On("Publish", mock.MatchedBy(func(e events.BalanceChangeEvent) bool {
		return e.Username == username && e.NewBalance.Equal(dec(after))
	})).Return(nil).Once()
}

// ExpectEvent sets up a single publish of an event type
func (m *TestMocks) ExpectEvent(eventType events.EventType) {
	m.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(nil).Once()
}

// testLine returns an unresolved line for TestLineDate with an evening cutoff
func testLine(yesOdds, noOdds string) *entities.DailyLine {
	return &entities.DailyLine{
		Date:       TestLineDate,
		Question:   "Will ETH close above 4000?",
		YesOdds:    yesOdds,
		NoOdds:     noOdds,
		CutoffTime: time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC),
		IsActive:   true,
	}
}

func lineParams(question, yesOdds, noOdds, cutoff string) interfaces.SetLineParams {
	return interfaces.SetLineParams{
		Question:   question,
		YesOdds:    yesOdds,
		NoOdds:     noOdds,
		CutoffTime: cutoff,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
