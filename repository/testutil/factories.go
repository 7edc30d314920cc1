package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"dailybet/database"
	"dailybet/domain/entities"
	"dailybet/domain/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the password of every seeded user
const TestPassword = "Secret#123"

// SeedUser inserts a user with balance directly, bypassing the ledger
func SeedUser(t *testing.T, db *database.DB, username, balance string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	_, err = db.Exec(context.Background(),
		`INSERT INTO users (username, password_hash, balance) VALUES ($1, $2, $3)`,
		username, string(hash), decimal.RequireFromString(balance))
	require.NoError(t, err)
}

// Balance reads a user's stored balance
func Balance(t *testing.T, db *database.DB, username string) decimal.Decimal {
	t.Helper()
	var balance decimal.Decimal
	err := db.QueryRow(context.Background(), `SELECT balance FROM users WHERE username = $1`, username).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// CreateTestLine returns an unresolved line for date with a cutoff at the end of that day
func CreateTestLine(date string) *entities.DailyLine {
	day, _ := time.Parse(entities.DateLayout, date)
	return &entities.DailyLine{
		Date:       date,
		Question:   "Will it rain?",
		YesOdds:    "+150",
		NoOdds:     "-200",
		CutoffTime: day.Add(23 * time.Hour),
		IsActive:   true,
	}
}

// CreateTestBet returns a bet with a fresh id
func CreateTestBet(username string, choice entities.Side, amount, lineDate string) *entities.Bet {
	return &entities.Bet{
		ID:        uuid.NewString(),
		Username:  username,
		Choice:    choice,
		Amount:    decimal.RequireFromString(amount),
		LineDate:  lineDate,
		CreatedAt: time.Now().UTC(),
	}
}

// CreateTestWithdrawal returns a pending withdrawal with a fresh id
func CreateTestWithdrawal(username, amount string) *entities.Withdrawal {
	now := time.Now().UTC()
	return &entities.Withdrawal{
		ID:            uuid.NewString(),
		Username:      username,
		WalletAddress: "0x52908400098527886E0F7030069857D2E4169EE7",
		Amount:        decimal.RequireFromString(amount),
		Status:        entities.WithdrawalStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CreateTestBalanceHistory creates a history entry for a credit of change on top of before
func CreateTestBalanceHistory(username, before, change string, transactionType entities.TransactionType) *entities.BalanceHistory {
	b := decimal.RequireFromString(before)
	c := decimal.RequireFromString(change)
	return &entities.BalanceHistory{
		Username:        username,
		BalanceBefore:   b,
		BalanceAfter:    b.Add(c),
		ChangeAmount:    c,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

// RecordingPublisher is a transactional publisher that keeps flushed events in memory
type RecordingPublisher struct {
	mu        sync.Mutex
	pending   []events.Event
	Published []events.Event
	Discards  int
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, event)
	return nil
}

func (p *RecordingPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, p.pending...)
	p.pending = nil
	return nil
}

func (p *RecordingPublisher) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil
	p.Discards++
}

// Events returns a copy of the flushed events
func (p *RecordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.Published...)
}
