package services

import (
	"context"
	"fmt"

	"dailybet/domain/apperrors"
	"dailybet/domain/entities"
	"dailybet/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	betRepo interfaces.BetRepository
	ledger  interfaces.LedgerService
}

// NewSettlementService creates a new settlement service
func NewSettlementService(betRepo interfaces.BetRepository, ledger interfaces.LedgerService) interfaces.SettlementService {
	return &settlementService{
		betRepo: betRepo,
		ledger:  ledger,
	}
}

// PlanSettlement computes the credit owed to every winning bet of a resolved line.
// Losing bets were paid for at placement and produce no entries.
func (s *settlementService) PlanSettlement(ctx context.Context, line *entities.DailyLine) (*interfaces.SettlementPlan, error) {
	if line == nil || !line.IsResolved() {
		return nil, apperrors.Validation("line must be resolved before settlement")
	}
	winner := *line.WinningSide

	multiplier := OddsToMultiplier(line.OddsFor(winner))

	bets, err := s.betRepo.ListByLineAndChoice(ctx, line.Date, winner)
	if err != nil {
		return nil, fmt.Errorf("failed to list winning bets: %w", err)
	}

	plan := &interfaces.SettlementPlan{
		Line:        line,
		WinningSide: winner,
		Multiplier:  multiplier,
		Payouts:     make([]interfaces.Payout, 0, len(bets)),
	}
	for _, bet := range bets {
		amount := CalculatePayout(bet.Amount, multiplier)
		if !amount.IsPositive() {
			continue
		}
		plan.Payouts = append(plan.Payouts, interfaces.Payout{Bet: bet, Amount: amount})
	}

	log.WithFields(log.Fields{
		"date":        line.Date,
		"winningSide": winner,
		"multiplier":  multiplier.String(),
		"winners":     len(plan.Payouts),
	}).Info("Settlement planned")
	return plan, nil
}

// CreditPayout credits a single winner
func (s *settlementService) CreditPayout(ctx context.Context, plan *interfaces.SettlementPlan, payout interfaces.Payout) (*entities.BalanceHistory, error) {
	return s.ledger.Credit(ctx, ledgerEntry(payout.Bet.Username, payout.Amount, entities.TransactionTypeBetWin, payout.Bet.ID, map[string]any{
		"line_date":  plan.Line.Date,
		"choice":     string(plan.WinningSide),
		"stake":      payout.Bet.Amount.String(),
		"multiplier": plan.Multiplier.String(),
	}))
}

// TotalPayout sums the planned credits
func TotalPayout(plan *interfaces.SettlementPlan) decimal.Decimal {
	total := decimal.Zero
	for _, p := range plan.Payouts {
		total = total.Add(p.Amount)
	}
	return total
}
