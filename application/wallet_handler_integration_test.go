package application_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"dailybet/application"
	"dailybet/config"
	"dailybet/domain/apperrors"
	"dailybet/domain/entities"
	"dailybet/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	depositTxid   = "0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"
	senderAddress = "0x52908400098527886e0f7030069857d2e4169ee7"
	payoutAddress = "0x000000000000000000000000000000000000dEaD"
)

// stubLookup returns a fixed transaction for any id
type stubLookup struct {
	tx    *entities.ChainTransaction
	calls int
}

func (s *stubLookup) GetTransaction(ctx context.Context, txid string) (*entities.ChainTransaction, error) {
	s.calls++
	if s.tx == nil {
		return nil, apperrors.NotFound("transaction %s not found", txid)
	}
	return s.tx, nil
}

func TestWithdrawal_RequestThenReject(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupEnv(t)
	ctx := context.Background()
	testutil.SeedUser(t, env.db.DB, "alice", "10")
	wallet := application.NewWalletHandler(env.uowFactory, env.userLocks, &stubLookup{}, config.Get().PlatformWallet)

	withdrawal, balance, err := wallet.RequestWithdrawal(ctx, "alice", payoutAddress, decimal.RequireFromString("2.75"))
	require.NoError(t, err)
	assert.Equal(t, entities.WithdrawalStatusPending, withdrawal.Status)
	assert.True(t, balance.Equal(decimal.RequireFromString("7.25")))

	rejected, err := wallet.RejectWithdrawal(ctx, withdrawal.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.WithdrawalStatusRejected, rejected.Status)
	assert.True(t, testutil.Balance(t, env.db.DB, "alice").Equal(decimal.NewFromInt(10)))

	_, err = wallet.ApproveWithdrawal(ctx, withdrawal.ID)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyProcessed))

	listed, err := wallet.ListUserWithdrawals(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, entities.WithdrawalStatusRejected, listed[0].Status)
}

func TestWithdrawal_CancelByOtherUserIsForbidden(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupEnv(t)
	ctx := context.Background()
	testutil.SeedUser(t, env.db.DB, "alice", "5")
	testutil.SeedUser(t, env.db.DB, "mallory", "0")
	wallet := application.NewWalletHandler(env.uowFactory, env.userLocks, &stubLookup{}, config.Get().PlatformWallet)

	withdrawal, _, err := wallet.RequestWithdrawal(ctx, "alice", payoutAddress, decimal.NewFromInt(5))
	require.NoError(t, err)

	_, err = wallet.CancelWithdrawal(ctx, withdrawal.ID, "mallory", false)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	assert.True(t, testutil.Balance(t, env.db.DB, "alice").IsZero())

	cancelled, err := wallet.CancelWithdrawal(ctx, withdrawal.ID, "alice", false)
	require.NoError(t, err)
	assert.Equal(t, entities.WithdrawalStatusCancelled, cancelled.Status)
	assert.True(t, testutil.Balance(t, env.db.DB, "alice").Equal(decimal.NewFromInt(5)))

	_, err = wallet.CancelWithdrawal(ctx, "not-a-uuid", "alice", false)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDeposit_VerifyOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupEnv(t)
	ctx := context.Background()
	testutil.SeedUser(t, env.db.DB, "alice", "1")

	platform := config.Get().PlatformWallet
	registeredAt := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	lookup := &stubLookup{tx: &entities.ChainTransaction{
		Hash:        depositTxid,
		From:        strings.ToUpper(senderAddress[:2]) + senderAddress[2:],
		To:          platform,
		Value:       decimal.RequireFromString("0.5"),
		BlockNumber: "0x10",
		BlockTime:   registeredAt.Add(time.Minute),
	}}
	wallet := application.NewWalletHandler(env.uowFactory, env.userLocks, lookup, platform)

	_, _, err := wallet.VerifyDeposit(ctx, "alice", depositTxid, senderAddress)
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "unregistered sender is rejected")

	require.NoError(t, wallet.RegisterSender(ctx, "alice", senderAddress, registeredAt))

	deposit, balance, err := wallet.VerifyDeposit(ctx, "alice", depositTxid, senderAddress)
	require.NoError(t, err)
	assert.True(t, deposit.Confirmed)
	assert.True(t, balance.Equal(decimal.RequireFromString("1.5")))

	_, _, err = wallet.VerifyDeposit(ctx, "alice", depositTxid, senderAddress)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyProcessed))
	assert.True(t, testutil.Balance(t, env.db.DB, "alice").Equal(decimal.RequireFromString("1.5")))
}

func TestBetting_ConcurrentBetsNeverOverdraw(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupEnv(t)
	ctx := context.Background()
	env.openTodayLine(t)
	testutil.SeedUser(t, env.db.DB, "alice", "5")
	betting := application.NewBettingHandler(env.uowFactory, env.userLocks)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, insufficient := 0, 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := betting.PlaceBet(ctx, "alice", entities.SideYes, decimal.NewFromInt(1))
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
	assert.Equal(t, 3, insufficient)
	assert.True(t, testutil.Balance(t, env.db.DB, "alice").IsZero())

	volume, err := betting.GetBetVolume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, volume.TotalBets)
}
