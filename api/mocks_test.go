package api

import (
	"context"
	"net/http"
	"time"

	"dailybet/application"
	"dailybet/domain/entities"
	"dailybet/domain/interfaces"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockAccountHandler struct {
	mock.Mock
}

func (m *MockAccountHandler) Login(ctx context.Context, username, password string) (*interfaces.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.LoginResult), args.Error(1)
}

func (m *MockAccountHandler) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	args := m.Called(ctx, username, currentPassword, newPassword)
	return args.Error(0)
}

func (m *MockAccountHandler) GetBalance(ctx context.Context, username string) (decimal.Decimal, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountHandler) ListUsers(ctx context.Context) ([]*entities.UserSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.UserSummary), args.Error(1)
}

func (m *MockAccountHandler) GrantAdmin(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

type MockBettingHandler struct {
	mock.Mock
}

func (m *MockBettingHandler) SetDailyLine(ctx context.Context, params interfaces.SetLineParams) (*entities.DailyLine, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyLine), args.Error(1)
}

func (m *MockBettingHandler) GetTodayLine(ctx context.Context) (*entities.DailyLine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyLine), args.Error(1)
}

func (m *MockBettingHandler) PlaceBet(ctx context.Context, username string, choice entities.Side, amount decimal.Decimal) (*interfaces.PlaceBetResult, error) {
	args := m.Called(ctx, username, choice, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.PlaceBetResult), args.Error(1)
}

func (m *MockBettingHandler) GetBetVolume(ctx context.Context) (*entities.BetVolume, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BetVolume), args.Error(1)
}

func (m *MockBettingHandler) ListTodayBets(ctx context.Context) ([]interfaces.BetView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.BetView), args.Error(1)
}

type MockSettlementHandler struct {
	mock.Mock
}

func (m *MockSettlementHandler) ResolveLine(ctx context.Context, date string, side entities.Side) (*application.SettlementSummary, error) {
	args := m.Called(ctx, date, side)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.SettlementSummary), args.Error(1)
}

type MockWalletHandler struct {
	mock.Mock
}

func (m *MockWalletHandler) RequestWithdrawal(ctx context.Context, username, walletAddress string, amount decimal.Decimal) (*entities.Withdrawal, decimal.Decimal, error) {
	args := m.Called(ctx, username, walletAddress, amount)
	if args.Get(0) == nil {
		return nil, decimal.Zero, args.Error(2)
	}
	return args.Get(0).(*entities.Withdrawal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockWalletHandler) CancelWithdrawal(ctx context.Context, id, actor string, actorIsAdmin bool) (*entities.Withdrawal, error) {
	args := m.Called(ctx, id, actor, actorIsAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Withdrawal), args.Error(1)
}

func (m *MockWalletHandler) ApproveWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Withdrawal), args.Error(1)
}

func (m *MockWalletHandler) RejectWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Withdrawal), args.Error(1)
}

func (m *MockWalletHandler) ListWithdrawals(ctx context.Context) ([]*entities.Withdrawal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Withdrawal), args.Error(1)
}

func (m *MockWalletHandler) ListUserWithdrawals(ctx context.Context, username string) ([]*entities.Withdrawal, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Withdrawal), args.Error(1)
}

func (m *MockWalletHandler) DepositAddress() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockWalletHandler) RegisterSender(ctx context.Context, username, senderAddress string, submittedAt time.Time) error {
	args := m.Called(ctx, username, senderAddress, submittedAt)
	return args.Error(0)
}

func (m *MockWalletHandler) VerifyDeposit(ctx context.Context, username, txid, senderAddress string) (*entities.DepositTxid, decimal.Decimal, error) {
	args := m.Called(ctx, username, txid, senderAddress)
	if args.Get(0) == nil {
		return nil, decimal.Zero, args.Error(2)
	}
	return args.Get(0).(*entities.DepositTxid), args.Get(1).(decimal.Decimal), args.Error(2)
}

type stubHealth struct {
	err error
}

func (s stubHealth) Healthy(context.Context) error {
	return s.err
}

type recordingSockets struct {
	usernames []string
}

func (r *recordingSockets) Serve(w http.ResponseWriter, _ *http.Request, username string) error {
	r.usernames = append(r.usernames, username)
	w.WriteHeader(http.StatusSwitchingProtocols)
	return nil
}
