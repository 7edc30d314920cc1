package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dailybet/domain/apperrors"
	"dailybet/domain/entities"
	"dailybet/domain/events"
	"dailybet/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type withdrawalService struct {
	withdrawalRepo interfaces.WithdrawalRepository
	userRepo       interfaces.UserRepository
	ledger         interfaces.LedgerService
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(withdrawalRepo interfaces.WithdrawalRepository, userRepo interfaces.UserRepository, ledger interfaces.LedgerService, eventPublisher interfaces.EventPublisher) interfaces.WithdrawalService {
	return &withdrawalService{
		withdrawalRepo: withdrawalRepo,
		userRepo:       userRepo,
		ledger:         ledger,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// RequestWithdrawal escrows amount and opens a pending withdrawal.
// Returns the balance left after the escrow.
func (s *withdrawalService) RequestWithdrawal(ctx context.Context, username, walletAddress string, amount decimal.Decimal) (*entities.Withdrawal, decimal.Decimal, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if !entities.IsValidWalletAddress(walletAddress) {
		return nil, decimal.Zero, apperrors.Validation("invalid wallet address")
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, decimal.Zero, err
	}

	now := s.now().UTC()
	withdrawal := &entities.Withdrawal{
		ID:            uuid.NewString(),
		Username:      username,
		WalletAddress: walletAddress,
		Amount:        amount,
		Status:        entities.WithdrawalStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	history, err := s.ledger.Debit(ctx, ledgerEntry(username, amount, entities.TransactionTypeWithdrawal, withdrawal.ID, map[string]any{
		"wallet_address": walletAddress,
	}))
	if err != nil {
		return nil, decimal.Zero, err
	}

	if err := s.withdrawalRepo.Create(ctx, withdrawal); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to create withdrawal: %w", err)
	}

	s.publishUpdate(withdrawal)
	return withdrawal, history.BalanceAfter, nil
}

// CancelWithdrawal lets the owner or an admin withdraw a pending request, refunding the escrow
func (s *withdrawalService) CancelWithdrawal(ctx context.Context, id, actor string, actorIsAdmin bool) (*entities.Withdrawal, error) {
	withdrawal, err := s.lockWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actorIsAdmin && withdrawal.Username != actor {
		return nil, apperrors.Forbidden("withdrawal %s belongs to another user", id)
	}
	return s.transition(ctx, withdrawal, entities.WithdrawalStatusCancelled)
}

// ApproveWithdrawal marks a pending withdrawal as paid out. The escrow is kept.
func (s *withdrawalService) ApproveWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error) {
	withdrawal, err := s.lockWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, withdrawal.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user %s not found", withdrawal.Username)
	}
	return s.transition(ctx, withdrawal, entities.WithdrawalStatusCompleted)
}

// RejectWithdrawal refuses a pending withdrawal and refunds the escrow
func (s *withdrawalService) RejectWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error) {
	withdrawal, err := s.lockWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, withdrawal, entities.WithdrawalStatusRejected)
}

func (s *withdrawalService) GetWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	if withdrawal == nil {
		return nil, apperrors.NotFound("withdrawal %s not found", id)
	}
	return withdrawal, nil
}

func (s *withdrawalService) ListWithdrawals(ctx context.Context) ([]*entities.Withdrawal, error) {
	withdrawals, err := s.withdrawalRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return withdrawals, nil
}

func (s *withdrawalService) ListUserWithdrawals(ctx context.Context, username string) ([]*entities.Withdrawal, error) {
	withdrawals, err := s.withdrawalRepo.ListByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return withdrawals, nil
}

func (s *withdrawalService) lockWithdrawal(ctx context.Context, id string) (*entities.Withdrawal, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.Validation("withdrawal id is required")
	}
	withdrawal, err := s.withdrawalRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock withdrawal: %w", err)
	}
	if withdrawal == nil {
		return nil, apperrors.NotFound("withdrawal %s not found", id)
	}
	return withdrawal, nil
}

// transition moves a pending withdrawal to a terminal status, refunding the escrow when required
func (s *withdrawalService) transition(ctx context.Context, withdrawal *entities.Withdrawal, next entities.WithdrawalStatus) (*entities.Withdrawal, error) {
	if !withdrawal.CanTransitionTo(next) {
		return nil, apperrors.AlreadyProcessed("withdrawal %s is already %s", withdrawal.ID, withdrawal.Status)
	}

	updated, err := s.withdrawalRepo.UpdateStatus(ctx, withdrawal.ID, entities.WithdrawalStatusPending, next)
	if err != nil {
		return nil, fmt.Errorf("failed to update withdrawal status: %w", err)
	}
	if !updated {
		return nil, apperrors.AlreadyProcessed("withdrawal %s is no longer pending", withdrawal.ID)
	}

	if next.RefundsEscrow() {
		_, err := s.ledger.Credit(ctx, ledgerEntry(withdrawal.Username, withdrawal.Amount, entities.TransactionTypeWithdrawalRefund, withdrawal.ID, map[string]any{
			"status": string(next),
		}))
		if err != nil {
			return nil, err
		}
	}

	withdrawal.Status = next
	withdrawal.UpdatedAt = s.now().UTC()

	log.WithFields(log.Fields{
		"withdrawalID": withdrawal.ID,
		"username":     withdrawal.Username,
		"status":       next,
		"amount":       withdrawal.Amount.String(),
	}).Info("Withdrawal status changed")

	s.publishUpdate(withdrawal)
	return withdrawal, nil
}

func (s *withdrawalService) publishUpdate(withdrawal *entities.Withdrawal) {
	err := s.eventPublisher.Publish(events.WithdrawalUpdatedEvent{
		WithdrawalID: withdrawal.ID,
		Username:     withdrawal.Username,
		Status:       withdrawal.Status,
		Amount:       withdrawal.Amount,
	})
	if err != nil {
		log.WithError(err).Error("Failed to publish withdrawal update")
	}
}
