package services

import (
	"context"
	"fmt"
	"strings"

	"dailybet/domain/apperrors"
	"dailybet/domain/entities"
	"dailybet/domain/interfaces"
	"dailybet/domain/utils"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ledgerService struct {
	userRepo           interfaces.UserRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewLedgerService creates a ledger bound to the repositories of one unit of work.
// The user row is locked for update on every mutation, so same-user operations
// in concurrent transactions queue behind each other.
func NewLedgerService(userRepo interfaces.UserRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher) interfaces.LedgerService {
	return &ledgerService{
		userRepo:           userRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

func (s *ledgerService) Debit(ctx context.Context, entry interfaces.LedgerEntry) (*entities.BalanceHistory, error) {
	return s.apply(ctx, entry, true)
}

func (s *ledgerService) Credit(ctx context.Context, entry interfaces.LedgerEntry) (*entities.BalanceHistory, error) {
	return s.apply(ctx, entry, false)
}

func (s *ledgerService) apply(ctx context.Context, entry interfaces.LedgerEntry, debit bool) (*entities.BalanceHistory, error) {
	if strings.TrimSpace(entry.Username) == "" {
		return nil, apperrors.Validation("username is required")
	}
	amount := entry.Amount
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetForUpdate(ctx, entry.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %s: %w", entry.Username, err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user %s not found", entry.Username)
	}

	change := amount
	if debit {
		if amount.GreaterThan(user.Balance) {
			return nil, apperrors.InsufficientFunds("balance %s is less than %s", user.Balance.String(), amount.String())
		}
		change = amount.Neg()
	}
	newBalance := RoundAmount(user.Balance.Add(change))

	if err := s.userRepo.UpdateBalance(ctx, user.Username, user.Balance, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	history := &entities.BalanceHistory{
		Username:            user.Username,
		BalanceBefore:       user.Balance,
		BalanceAfter:        newBalance,
		ChangeAmount:        newBalance.Sub(user.Balance),
		TransactionType:     entry.Type,
		TransactionMetadata: entry.Metadata,
		RelatedID:           entry.RelatedID,
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"username":        user.Username,
		"transactionType": entry.Type,
		"amount":          amount.String(),
		"balance":         newBalance.String(),
	}).Debug("Ledger mutation applied")

	return history, nil
}

// ledgerEntry builds an entry pointing at the record that caused it
func ledgerEntry(username string, amount decimal.Decimal, txType entities.TransactionType, relatedID string, metadata map[string]any) interfaces.LedgerEntry {
	entry := interfaces.LedgerEntry{
		Username: username,
		Amount:   amount,
		Type:     txType,
		Metadata: metadata,
	}
	if relatedID != "" {
		entry.RelatedID = &relatedID
	}
	return entry
}
