package application

import (
	"context"
	"fmt"

	"dailybet/domain/entities"
	"dailybet/domain/events"
	"dailybet/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// SettlementSummary reports the outcome of resolving a line
type SettlementSummary struct {
	Line            *entities.DailyLine
	WinningSide     entities.Side
	Multiplier      decimal.Decimal
	WinnersCredited int
	FailedCredits   int
	TotalPaid       decimal.Decimal
}

// SettlementHandler resolves a line and pays its winners
type SettlementHandler interface {
	ResolveLine(ctx context.Context, date string, side entities.Side) (*SettlementSummary, error)
}

type settlementHandler struct {
	uowFactory     UnitOfWorkFactory
	userLocks      *UserLocks
	eventPublisher interfaces.EventPublisher
}

// NewSettlementHandler creates a new SettlementHandler.
// eventPublisher receives the LineResolvedEvent once every credit has been attempted.
func NewSettlementHandler(uowFactory UnitOfWorkFactory, userLocks *UserLocks, eventPublisher interfaces.EventPublisher) SettlementHandler {
	return &settlementHandler{
		uowFactory:     uowFactory,
		userLocks:      userLocks,
		eventPublisher: eventPublisher,
	}
}

// ResolveLine sets the winner once, then credits each winning bet in its own transaction.
// A failed credit is logged and counted; the remaining winners are still paid.
func (h *settlementHandler) ResolveLine(ctx context.Context, date string, side entities.Side) (*SettlementSummary, error) {
	plan, err := h.resolveAndPlan(ctx, date, side)
	if err != nil {
		return nil, err
	}

	summary := &SettlementSummary{
		Line:        plan.Line,
		WinningSide: plan.WinningSide,
		Multiplier:  plan.Multiplier,
		TotalPaid:   decimal.Zero,
	}

	for _, payout := range plan.Payouts {
		if err := h.creditWinner(ctx, plan, payout); err != nil {
			summary.FailedCredits++
			log.WithFields(log.Fields{
				"date":     date,
				"betID":    payout.Bet.ID,
				"username": payout.Bet.Username,
				"amount":   payout.Amount.String(),
				"error":    err,
			}).Error("Failed to credit settlement payout")
			continue
		}
		summary.WinnersCredited++
		summary.TotalPaid = summary.TotalPaid.Add(payout.Amount)
	}

	event := events.LineResolvedEvent{
		Line:            *plan.Line,
		WinningSide:     summary.WinningSide,
		Multiplier:      summary.Multiplier,
		WinnersCredited: summary.WinnersCredited,
		FailedCredits:   summary.FailedCredits,
		TotalPaid:       summary.TotalPaid,
	}
	if err := h.eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("date", date).Error("Failed to publish line resolved event")
	}

	log.WithFields(log.Fields{
		"date":      date,
		"winner":    side,
		"credited":  summary.WinnersCredited,
		"failed":    summary.FailedCredits,
		"totalPaid": summary.TotalPaid.String(),
	}).Info("Line settled")
	return summary, nil
}

// resolveAndPlan records the winner and snapshots the winning bets in one transaction
func (h *settlementHandler) resolveAndPlan(ctx context.Context, date string, side entities.Side) (*interfaces.SettlementPlan, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	line, err := lineServiceFor(uow).ResolveLine(ctx, date, side)
	if err != nil {
		return nil, err
	}

	plan, err := settlementServiceFor(uow).PlanSettlement(ctx, line)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return plan, nil
}

func (h *settlementHandler) creditWinner(ctx context.Context, plan *interfaces.SettlementPlan, payout interfaces.Payout) error {
	unlock := h.userLocks.Lock(payout.Bet.Username)
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := settlementServiceFor(uow).CreditPayout(ctx, plan, payout); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
