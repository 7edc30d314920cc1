package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"dailybet/domain/apperrors"
	"dailybet/domain/entities"
	"dailybet/domain/events"
	"dailybet/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var txidPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)

type depositService struct {
	depositRepo      interfaces.DepositRepository
	senderRecordRepo interfaces.SenderRecordRepository
	ledger           interfaces.LedgerService
	lookup           interfaces.BlockchainLookup
	eventPublisher   interfaces.EventPublisher
	platformWallet   string
}

// NewDepositService creates a deposit service crediting transfers made to platformWallet
func NewDepositService(depositRepo interfaces.DepositRepository, senderRecordRepo interfaces.SenderRecordRepository, ledger interfaces.LedgerService, lookup interfaces.BlockchainLookup, eventPublisher interfaces.EventPublisher, platformWallet string) interfaces.DepositService {
	return &depositService{
		depositRepo:      depositRepo,
		senderRecordRepo: senderRecordRepo,
		ledger:           ledger,
		lookup:           lookup,
		eventPublisher:   eventPublisher,
		platformWallet:   strings.TrimSpace(platformWallet),
	}
}

func (s *depositService) DepositAddress() (string, error) {
	if s.platformWallet == "" {
		return "", apperrors.Upstream(nil, "platform wallet is not configured")
	}
	return s.platformWallet, nil
}

// RegisterSender records the address a user will deposit from.
// Only transactions mined at or after submittedAt are accepted from it.
func (s *depositService) RegisterSender(ctx context.Context, username, senderAddress string, submittedAt time.Time) error {
	address := normalizeAddress(senderAddress)
	if !entities.IsValidWalletAddress(address) {
		return apperrors.Validation("invalid sender address")
	}
	if submittedAt.IsZero() {
		return apperrors.Validation("submitted_at is required")
	}

	err := s.senderRecordRepo.Upsert(ctx, &entities.SenderRecord{
		Username:      username,
		SenderAddress: address,
		SubmittedAt:   submittedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to register sender: %w", err)
	}
	return nil
}

// VerifyDeposit credits an on-chain transfer from a registered sender to the platform wallet.
// The txid is recorded in the same unit of work as the credit, so a concurrent
// verification of the same txid fails on insert and rolls the credit back.
func (s *depositService) VerifyDeposit(ctx context.Context, username, txid, senderAddress string) (*entities.DepositTxid, decimal.Decimal, error) {
	txid = strings.ToLower(strings.TrimSpace(txid))
	if !txidPattern.MatchString(txid) {
		return nil, decimal.Zero, apperrors.Validation("invalid transaction id")
	}
	address := normalizeAddress(senderAddress)
	if !entities.IsValidWalletAddress(address) {
		return nil, decimal.Zero, apperrors.Validation("invalid sender address")
	}
	platformWallet, err := s.DepositAddress()
	if err != nil {
		return nil, decimal.Zero, err
	}

	used, err := s.depositRepo.Exists(ctx, txid)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to check transaction id: %w", err)
	}
	if used {
		return nil, decimal.Zero, apperrors.AlreadyProcessed("transaction %s already credited", txid)
	}

	record, err := s.senderRecordRepo.Get(ctx, username, address)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to get sender record: %w", err)
	}
	if record == nil {
		return nil, decimal.Zero, apperrors.Validation("sender address %s is not registered", address)
	}

	tx, err := s.lookup.GetTransaction(ctx, txid)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if !tx.SentTo(platformWallet) {
		return nil, decimal.Zero, apperrors.Validation("transaction was not sent to the platform wallet")
	}
	if !tx.SentFrom(address) {
		return nil, decimal.Zero, apperrors.Validation("transaction was not sent from %s", address)
	}
	if tx.BlockTime.Before(record.SubmittedAt) {
		return nil, decimal.Zero, apperrors.Validation("transaction predates the sender registration")
	}
	value := RoundAmount(tx.Value)
	if !value.IsPositive() {
		return nil, decimal.Zero, apperrors.Validation("transaction carries no value")
	}

	history, err := s.ledger.Credit(ctx, ledgerEntry(username, value, entities.TransactionTypeDeposit, txid, map[string]any{
		"sender_address": address,
		"block_number":   tx.BlockNumber,
	}))
	if err != nil {
		return nil, decimal.Zero, err
	}

	deposit := &entities.DepositTxid{
		Txid:      txid,
		Username:  username,
		Amount:    history.ChangeAmount,
		Confirmed: true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.depositRepo.Create(ctx, deposit); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to record deposit: %w", err)
	}

	if err := s.eventPublisher.Publish(events.DepositVerifiedEvent{
		Txid:     txid,
		Username: username,
		Amount:   history.ChangeAmount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish deposit verified event")
	}

	log.WithFields(log.Fields{
		"username": username,
		"txid":     txid,
		"amount":   history.ChangeAmount.String(),
	}).Info("Deposit verified")
	return deposit, history.BalanceAfter, nil
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
