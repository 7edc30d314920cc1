package repository

import (
	"context"
	"fmt"

	"dailybet/database"
	"dailybet/domain/entities"

	"github.com/jackc/pgx/v5"
)

const betColumns = `id, username, choice, amount, to_char(line_date, 'YYYY-MM-DD'), created_at`

// BetRepository implements the BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Create inserts a bet with a caller supplied id
func (r *BetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	query := `
		INSERT INTO bets (id, username, choice, amount, line_date, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5::date, $6)
	`

	_, err := r.q.Exec(ctx, query,
		bet.ID,
		bet.Username,
		string(bet.Choice),
		bet.Amount,
		bet.LineDate,
		bet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bet for %s: %w", bet.Username, err)
	}
	return nil
}

// ListByLine returns a line's bets, newest first
func (r *BetRepository) ListByLine(ctx context.Context, lineDate string) ([]*entities.Bet, error) {
	query := `SELECT ` + betColumns + `
		FROM bets
		WHERE line_date = $1::date
		ORDER BY created_at DESC, id`

	rows, err := r.q.Query(ctx, query, lineDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets for %s: %w", lineDate, err)
	}
	return collectBets(rows)
}

// ListByLineAndChoice returns the bets on one side of a line in placement order
func (r *BetRepository) ListByLineAndChoice(ctx context.Context, lineDate string, choice entities.Side) ([]*entities.Bet, error) {
	query := `SELECT ` + betColumns + `
		FROM bets
		WHERE line_date = $1::date AND choice = $2
		ORDER BY created_at, id`

	rows, err := r.q.Query(ctx, query, lineDate, string(choice))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s bets for %s: %w", choice, lineDate, err)
	}
	return collectBets(rows)
}

// VolumeByLine returns the number of bets and the total stake on a line
func (r *BetRepository) VolumeByLine(ctx context.Context, lineDate string) (*entities.BetVolume, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM bets WHERE line_date = $1::date`

	var volume entities.BetVolume
	err := r.q.QueryRow(ctx, query, lineDate).Scan(&volume.TotalBets, &volume.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet volume for %s: %w", lineDate, err)
	}
	return &volume, nil
}

func collectBets(rows pgx.Rows) ([]*entities.Bet, error) {
	defer rows.Close()

	var bets []*entities.Bet
	for rows.Next() {
		var bet entities.Bet
		var choice string
		err := rows.Scan(
			&bet.ID,
			&bet.Username,
			&choice,
			&bet.Amount,
			&bet.LineDate,
			&bet.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bet.Choice = entities.Side(choice)
		bets = append(bets, &bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bets: %w", err)
	}
	return bets, nil
}
