package application

import (
	"context"
	"fmt"

	"dailybet/domain/entities"
	"dailybet/domain/interfaces"

	"github.com/shopspring/decimal"
)

// BettingHandler runs daily line and bet operations in their own units of work
type BettingHandler interface {
	SetDailyLine(ctx context.Context, params interfaces.SetLineParams) (*entities.DailyLine, error)
	GetTodayLine(ctx context.Context) (*entities.DailyLine, error)
	PlaceBet(ctx context.Context, username string, choice entities.Side, amount decimal.Decimal) (*interfaces.PlaceBetResult, error)
	GetBetVolume(ctx context.Context) (*entities.BetVolume, error)
	ListTodayBets(ctx context.Context) ([]interfaces.BetView, error)
}

type bettingHandler struct {
	uowFactory UnitOfWorkFactory
	userLocks  *UserLocks
}

// NewBettingHandler creates a new BettingHandler
func NewBettingHandler(uowFactory UnitOfWorkFactory, userLocks *UserLocks) BettingHandler {
	return &bettingHandler{
		uowFactory: uowFactory,
		userLocks:  userLocks,
	}
}

func (h *bettingHandler) SetDailyLine(ctx context.Context, params interfaces.SetLineParams) (*entities.DailyLine, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	line, err := lineServiceFor(uow).SetDailyLine(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return line, nil
}

func (h *bettingHandler) GetTodayLine(ctx context.Context) (*entities.DailyLine, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return lineServiceFor(uow).GetTodayLine(ctx)
}

// PlaceBet debits the stake and records the bet while holding the user's lock
func (h *bettingHandler) PlaceBet(ctx context.Context, username string, choice entities.Side, amount decimal.Decimal) (*interfaces.PlaceBetResult, error) {
	unlock := h.userLocks.Lock(username)
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := lineServiceFor(uow).PlaceBet(ctx, username, choice, amount)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

func (h *bettingHandler) GetBetVolume(ctx context.Context) (*entities.BetVolume, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return lineServiceFor(uow).GetBetVolume(ctx)
}

func (h *bettingHandler) ListTodayBets(ctx context.Context) ([]interfaces.BetView, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return lineServiceFor(uow).ListTodayBets(ctx)
}
