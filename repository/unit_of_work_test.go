package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dailybet/domain/apperrors"
	"dailybet/domain/entities"
	"dailybet/domain/events"
	"dailybet/domain/interfaces"
	"dailybet/domain/services"
	"dailybet/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debitOnce(ctx context.Context, factory *unitOfWorkFactory, publisher *testutil.RecordingPublisher, username string, amount decimal.Decimal) error {
	uow := factory.CreateWithPublisher(publisher)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	ledger := services.NewLedgerService(uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
	_, err := ledger.Debit(ctx, interfaces.LedgerEntry{
		Username: username,
		Amount:   amount,
		Type:     entities.TransactionTypeBetPlaced,
	})
	if err != nil {
		return err
	}
	return uow.Commit()
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()
	testutil.SeedUser(t, testDB.DB, "alice", "10")

	t.Run("commit persists and flushes events", func(t *testing.T) {
		publisher := &testutil.RecordingPublisher{}
		require.NoError(t, debitOnce(ctx, factory, publisher, "alice", decimal.RequireFromString("2.5")))

		assert.True(t, testutil.Balance(t, testDB.DB, "alice").Equal(decimal.RequireFromString("7.5")))
		published := publisher.Events()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventTypeBalanceChange, published[0].Type())

		history, err := NewBalanceHistoryRepository(testDB.DB).GetByUser(ctx, "alice", 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, entities.TransactionTypeBetPlaced, history[0].TransactionType)
		assert.True(t, history[0].ChangeAmount.Equal(decimal.RequireFromString("-2.5")))
	})

	t.Run("failure rolls back and discards events", func(t *testing.T) {
		publisher := &testutil.RecordingPublisher{}
		err := debitOnce(ctx, factory, publisher, "alice", decimal.RequireFromString("100"))

		assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
		assert.Empty(t, publisher.Events())
		assert.Equal(t, 1, publisher.Discards)
		assert.True(t, testutil.Balance(t, testDB.DB, "alice").Equal(decimal.RequireFromString("7.5")))
	})

	t.Run("getters panic before begin", func(t *testing.T) {
		uow := factory.CreateWithPublisher(&testutil.RecordingPublisher{})
		assert.Panics(t, func() { uow.UserRepository() })
	})
}

func TestUnitOfWork_ConcurrentDebits(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()
	testutil.SeedUser(t, testDB.DB, "alice", "5")

	// Ten debits of 1 against a balance of 5: the row lock admits exactly five
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, insufficient := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := debitOnce(ctx, factory, &testutil.RecordingPublisher{}, "alice", decimal.NewFromInt(1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ErrInsufficientFunds):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, insufficient)
	assert.True(t, testutil.Balance(t, testDB.DB, "alice").IsZero())
}
