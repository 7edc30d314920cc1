package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dailybet/database"
	"dailybet/domain/entities"

	"github.com/jackc/pgx/v5"
)

const dailyLineColumns = `to_char(line_date, 'YYYY-MM-DD'), question, yes_odds, no_odds,
	cutoff_time, is_active, winning_side, resolved_at`

// DailyLineRepository implements the DailyLineRepository interface
type DailyLineRepository struct {
	q queryable
}

// NewDailyLineRepository creates a new daily line repository
func NewDailyLineRepository(db *database.DB) *DailyLineRepository {
	return &DailyLineRepository{q: db.Pool}
}

func newDailyLineRepositoryWithTx(tx queryable) *DailyLineRepository {
	return &DailyLineRepository{q: tx}
}

func scanDailyLine(row pgx.Row) (*entities.DailyLine, error) {
	var line entities.DailyLine
	var winningSide *string
	err := row.Scan(
		&line.Date,
		&line.Question,
		&line.YesOdds,
		&line.NoOdds,
		&line.CutoffTime,
		&line.IsActive,
		&winningSide,
		&line.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if winningSide != nil {
		side := entities.Side(*winningSide)
		line.WinningSide = &side
	}
	return &line, nil
}

// GetByDate retrieves the line for a YYYY-MM-DD date
func (r *DailyLineRepository) GetByDate(ctx context.Context, date string) (*entities.DailyLine, error) {
	query := `SELECT ` + dailyLineColumns + ` FROM daily_lines WHERE line_date = $1::date`

	line, err := scanDailyLine(r.q.QueryRow(ctx, query, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily line %s: %w", date, err)
	}
	return line, nil
}

// GetByDateForShare retrieves the line and blocks concurrent resolution until the transaction ends
func (r *DailyLineRepository) GetByDateForShare(ctx context.Context, date string) (*entities.DailyLine, error) {
	query := `SELECT ` + dailyLineColumns + ` FROM daily_lines WHERE line_date = $1::date FOR SHARE`

	line, err := scanDailyLine(r.q.QueryRow(ctx, query, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily line %s: %w", date, err)
	}
	return line, nil
}

// Upsert creates or replaces a line. The winning side is never overwritten.
func (r *DailyLineRepository) Upsert(ctx context.Context, line *entities.DailyLine) (*entities.DailyLine, error) {
	query := `
		INSERT INTO daily_lines (line_date, question, yes_odds, no_odds, cutoff_time, is_active)
		VALUES ($1::date, $2, $3, $4, $5, $6)
		ON CONFLICT (line_date) DO UPDATE SET
			question = EXCLUDED.question,
			yes_odds = EXCLUDED.yes_odds,
			no_odds = EXCLUDED.no_odds,
			cutoff_time = EXCLUDED.cutoff_time,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING ` + dailyLineColumns

	saved, err := scanDailyLine(r.q.QueryRow(ctx, query,
		line.Date,
		line.Question,
		line.YesOdds,
		line.NoOdds,
		line.CutoffTime,
		line.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily line %s: %w", line.Date, err)
	}
	return saved, nil
}

// SetWinningSide resolves an unresolved line, reporting false if a winner was already set
func (r *DailyLineRepository) SetWinningSide(ctx context.Context, date string, side entities.Side, resolvedAt time.Time) (bool, error) {
	query := `
		UPDATE daily_lines
		SET winning_side = $2, resolved_at = $3, updated_at = NOW()
		WHERE line_date = $1::date AND winning_side IS NULL
	`

	tag, err := r.q.Exec(ctx, query, date, string(side), resolvedAt)
	if err != nil {
		return false, fmt.Errorf("failed to resolve daily line %s: %w", date, err)
	}
	return tag.RowsAffected() == 1, nil
}
