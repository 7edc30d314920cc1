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

// cutoffLayouts are accepted for the admin cutoff input. Zone-less values are UTC.
var cutoffLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

type lineService struct {
	lineRepo       interfaces.DailyLineRepository
	betRepo        interfaces.BetRepository
	ledger         interfaces.LedgerService
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewLineService creates a new line service
func NewLineService(lineRepo interfaces.DailyLineRepository, betRepo interfaces.BetRepository, ledger interfaces.LedgerService, eventPublisher interfaces.EventPublisher) interfaces.LineService {
	return &lineService{
		lineRepo:       lineRepo,
		betRepo:        betRepo,
		ledger:         ledger,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

func (s *lineService) today() string {
	return entities.DateKey(s.now())
}

// SetDailyLine creates or replaces the line for the cutoff's calendar date
func (s *lineService) SetDailyLine(ctx context.Context, params interfaces.SetLineParams) (*entities.DailyLine, error) {
	question := strings.TrimSpace(params.Question)
	yesOdds := strings.TrimSpace(params.YesOdds)
	noOdds := strings.TrimSpace(params.NoOdds)
	if question == "" || yesOdds == "" || noOdds == "" || strings.TrimSpace(params.CutoffTime) == "" {
		return nil, apperrors.Validation("question, yes_odds, no_odds and cutoff_time are required")
	}

	cutoff, dateKey, err := parseCutoff(params.CutoffTime)
	if err != nil {
		return nil, err
	}

	for side, odds := range map[entities.Side]string{entities.SideYes: yesOdds, entities.SideNo: noOdds} {
		if _, ok := parseAmericanOdds(odds); !ok {
			log.WithFields(log.Fields{
				"date": dateKey,
				"side": side,
				"odds": odds,
			}).Warn("Odds are not numeric, winners on this side will be refunded their stake")
		}
	}

	line, err := s.lineRepo.Upsert(ctx, &entities.DailyLine{
		Date:       dateKey,
		Question:   question,
		YesOdds:    yesOdds,
		NoOdds:     noOdds,
		CutoffTime: cutoff,
		IsActive:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save daily line: %w", err)
	}

	if err := s.eventPublisher.Publish(events.DailyLineUpdatedEvent{Line: *line}); err != nil {
		log.WithError(err).Error("Failed to publish daily line updated event")
	}

	log.WithFields(log.Fields{
		"date":   line.Date,
		"cutoff": line.CutoffTime,
	}).Info("Daily line set")
	return line, nil
}

// parseCutoff returns the cutoff instant and the date key as written in the input
func parseCutoff(raw string) (time.Time, string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range cutoffLayouts {
		cutoff, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		return cutoff.UTC(), raw[:len(entities.DateLayout)], nil
	}
	return time.Time{}, "", apperrors.Validation("cutoff_time %q is not an RFC3339 timestamp", raw)
}

func (s *lineService) GetTodayLine(ctx context.Context) (*entities.DailyLine, error) {
	return s.requireLine(ctx, s.today())
}

func (s *lineService) requireLine(ctx context.Context, date string) (*entities.DailyLine, error) {
	line, err := s.lineRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily line: %w", err)
	}
	if line == nil {
		return nil, apperrors.NotFound("no line set for %s", date)
	}
	return line, nil
}

// PlaceBet debits the stake and records the bet while today's line is open
func (s *lineService) PlaceBet(ctx context.Context, username string, choice entities.Side, amount decimal.Decimal) (*interfaces.PlaceBetResult, error) {
	if !choice.IsValid() {
		return nil, apperrors.Validation("choice must be YES or NO")
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	now := s.now()
	date := entities.DateKey(now)

	// The share lock keeps the line from being resolved until this bet commits
	line, err := s.lineRepo.GetByDateForShare(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily line: %w", err)
	}
	if line == nil {
		return nil, apperrors.NotFound("no line set for %s", date)
	}
	if !line.AcceptsBetsAt(now) {
		return nil, apperrors.Validation("betting is closed for %s (line is %s)", date, line.StateAt(now))
	}

	bet := &entities.Bet{
		ID:        uuid.NewString(),
		Username:  username,
		Choice:    choice,
		Amount:    amount,
		LineDate:  date,
		CreatedAt: now.UTC(),
	}

	history, err := s.ledger.Debit(ctx, ledgerEntry(username, bet.Amount, entities.TransactionTypeBetPlaced, bet.ID, map[string]any{
		"line_date": date,
		"choice":    string(choice),
	}))
	if err != nil {
		return nil, err
	}

	if err := s.betRepo.Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	volume, err := s.betRepo.VolumeByLine(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet volume: %w", err)
	}

	s.publish(events.BetPlacedEvent{
		BetID:    bet.ID,
		Username: username,
		Choice:   choice,
		Amount:   bet.Amount,
		LineDate: date,
	})
	s.publish(events.BetVolumeUpdatedEvent{
		LineDate:    date,
		TotalBets:   volume.TotalBets,
		TotalAmount: volume.TotalAmount,
	})

	return &interfaces.PlaceBetResult{
		Bet:     bet,
		Balance: history.BalanceAfter,
		Volume:  volume,
	}, nil
}

func (s *lineService) GetBetVolume(ctx context.Context) (*entities.BetVolume, error) {
	line, err := s.GetTodayLine(ctx)
	if err != nil {
		return nil, err
	}

	volume, err := s.betRepo.VolumeByLine(ctx, line.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet volume: %w", err)
	}
	return volume, nil
}

// ListTodayBets returns today's bets newest first with their outcome
func (s *lineService) ListTodayBets(ctx context.Context) ([]interfaces.BetView, error) {
	line, err := s.GetTodayLine(ctx)
	if err != nil {
		return nil, err
	}

	bets, err := s.betRepo.ListByLine(ctx, line.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}

	views := make([]interfaces.BetView, 0, len(bets))
	for _, bet := range bets {
		views = append(views, interfaces.BetView{Bet: bet, Status: bet.StatusAgainst(line)})
	}
	return views, nil
}

// ResolveLine sets the winning side of an open or closed line.
// Resolving before the cutoff is allowed; only an already resolved line is refused.
func (s *lineService) ResolveLine(ctx context.Context, date string, side entities.Side) (*entities.DailyLine, error) {
	if _, err := time.Parse(entities.DateLayout, date); err != nil {
		return nil, apperrors.Validation("date must be YYYY-MM-DD")
	}
	if !side.IsValid() {
		return nil, apperrors.Validation("winning_side must be YES or NO")
	}

	line, err := s.requireLine(ctx, date)
	if err != nil {
		return nil, err
	}
	if line.IsResolved() {
		return nil, apperrors.AlreadyProcessed("line %s already resolved as %s", date, *line.WinningSide)
	}

	resolvedAt := s.now().UTC()
	updated, err := s.lineRepo.SetWinningSide(ctx, date, side, resolvedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve line: %w", err)
	}
	if !updated {
		return nil, apperrors.AlreadyProcessed("line %s already resolved", date)
	}

	line.WinningSide = &side
	line.ResolvedAt = &resolvedAt

	log.WithFields(log.Fields{
		"date":        date,
		"winningSide": side,
	}).Info("Daily line resolved")
	return line, nil
}

func (s *lineService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to publish event")
	}
}
