package application

import (
	"context"
	"fmt"
	"time"

	"dailybet/domain/entities"
	"dailybet/domain/interfaces"
	"dailybet/domain/services"

	"github.com/shopspring/decimal"
)

// WalletHandler runs withdrawal and deposit operations in their own units of work
type WalletHandler interface {
	RequestWithdrawal(ctx context.Context, username, walletAddress string, amount decimal.Decimal) (*entities.Withdrawal, decimal.Decimal, error)
	CancelWithdrawal(ctx context.Context, id, actor string, actorIsAdmin bool) (*entities.Withdrawal, error)
	ApproveWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error)
	RejectWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error)
	ListWithdrawals(ctx context.Context) ([]*entities.Withdrawal, error)
	ListUserWithdrawals(ctx context.Context, username string) ([]*entities.Withdrawal, error)

	DepositAddress() (string, error)
	RegisterSender(ctx context.Context, username, senderAddress string, submittedAt time.Time) error
	VerifyDeposit(ctx context.Context, username, txid, senderAddress string) (*entities.DepositTxid, decimal.Decimal, error)
}

type walletHandler struct {
	uowFactory     UnitOfWorkFactory
	userLocks      *UserLocks
	lookup         interfaces.BlockchainLookup
	platformWallet string
}

// NewWalletHandler creates a new WalletHandler. Deposits must be sent to platformWallet.
func NewWalletHandler(uowFactory UnitOfWorkFactory, userLocks *UserLocks, lookup interfaces.BlockchainLookup, platformWallet string) WalletHandler {
	return &walletHandler{
		uowFactory:     uowFactory,
		userLocks:      userLocks,
		lookup:         lookup,
		platformWallet: platformWallet,
	}
}

func (h *walletHandler) depositServiceFor(uow UnitOfWork) interfaces.DepositService {
	return services.NewDepositService(uow.DepositRepository(), uow.SenderRecordRepository(), ledgerFor(uow), h.lookup, uow.EventBus(), h.platformWallet)
}

// RequestWithdrawal escrows amount and returns the withdrawal with the new balance
func (h *walletHandler) RequestWithdrawal(ctx context.Context, username, walletAddress string, amount decimal.Decimal) (*entities.Withdrawal, decimal.Decimal, error) {
	unlock := h.userLocks.Lock(username)
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	withdrawal, balance, err := withdrawalServiceFor(uow).RequestWithdrawal(ctx, username, walletAddress, amount)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if err := uow.Commit(); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return withdrawal, balance, nil
}

func (h *walletHandler) CancelWithdrawal(ctx context.Context, id, actor string, actorIsAdmin bool) (*entities.Withdrawal, error) {
	return h.transition(ctx, id, func(svc interfaces.WithdrawalService) (*entities.Withdrawal, error) {
		return svc.CancelWithdrawal(ctx, id, actor, actorIsAdmin)
	})
}

func (h *walletHandler) ApproveWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error) {
	return h.transition(ctx, id, func(svc interfaces.WithdrawalService) (*entities.Withdrawal, error) {
		return svc.ApproveWithdrawal(ctx, id)
	})
}

func (h *walletHandler) RejectWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error) {
	return h.transition(ctx, id, func(svc interfaces.WithdrawalService) (*entities.Withdrawal, error) {
		return svc.RejectWithdrawal(ctx, id)
	})
}

// transition looks up the owner, then applies fn under the owner's lock
func (h *walletHandler) transition(ctx context.Context, id string, fn func(interfaces.WithdrawalService) (*entities.Withdrawal, error)) (*entities.Withdrawal, error) {
	existing, err := h.getWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := h.userLocks.Lock(existing.Username)
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	withdrawal, err := fn(withdrawalServiceFor(uow))
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return withdrawal, nil
}

func (h *walletHandler) getWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return withdrawalServiceFor(uow).GetWithdrawal(ctx, id)
}

func (h *walletHandler) ListWithdrawals(ctx context.Context) ([]*entities.Withdrawal, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return withdrawalServiceFor(uow).ListWithdrawals(ctx)
}

func (h *walletHandler) ListUserWithdrawals(ctx context.Context, username string) ([]*entities.Withdrawal, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return withdrawalServiceFor(uow).ListUserWithdrawals(ctx, username)
}

func (h *walletHandler) DepositAddress() (string, error) {
	// The address check touches no repositories
	return services.NewDepositService(nil, nil, nil, nil, nil, h.platformWallet).DepositAddress()
}

func (h *walletHandler) RegisterSender(ctx context.Context, username, senderAddress string, submittedAt time.Time) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := h.depositServiceFor(uow).RegisterSender(ctx, username, senderAddress, submittedAt); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// VerifyDeposit credits a confirmed on-chain transfer exactly once
func (h *walletHandler) VerifyDeposit(ctx context.Context, username, txid, senderAddress string) (*entities.DepositTxid, decimal.Decimal, error) {
	unlock := h.userLocks.Lock(username)
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deposit, balance, err := h.depositServiceFor(uow).VerifyDeposit(ctx, username, txid, senderAddress)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if err := uow.Commit(); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return deposit, balance, nil
}
