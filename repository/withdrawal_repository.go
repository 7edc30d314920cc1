package repository

import (
	"context"
	"errors"
	"fmt"

	"dailybet/database"
	"dailybet/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const withdrawalColumns = `id, username, wallet_address, amount, status, created_at, updated_at`

// WithdrawalRepository implements the WithdrawalRepository interface
type WithdrawalRepository struct {
	q queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

func newWithdrawalRepositoryWithTx(tx queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

func scanWithdrawal(row pgx.Row) (*entities.Withdrawal, error) {
	var w entities.Withdrawal
	var status string
	err := row.Scan(
		&w.ID,
		&w.Username,
		&w.WalletAddress,
		&w.Amount,
		&status,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.Status = entities.WithdrawalStatus(status)
	return &w, nil
}

// Create inserts a withdrawal with a caller supplied id
func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *entities.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (id, username, wallet_address, amount, status, created_at, updated_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.Exec(ctx, query,
		withdrawal.ID,
		withdrawal.Username,
		withdrawal.WalletAddress,
		withdrawal.Amount,
		string(withdrawal.Status),
		withdrawal.CreatedAt,
		withdrawal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal for %s: %w", withdrawal.Username, err)
	}
	return nil
}

// GetByID retrieves a withdrawal. Ids that are not UUIDs cannot exist and return nil.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*entities.Withdrawal, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate retrieves a withdrawal and locks it until the transaction ends
func (r *WithdrawalRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Withdrawal, error) {
	return r.get(ctx, id, true)
}

func (r *WithdrawalRepository) get(ctx context.Context, id string, forUpdate bool) (*entities.Withdrawal, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}

	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1::uuid`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	withdrawal, err := scanWithdrawal(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal %s: %w", id, err)
	}
	return withdrawal, nil
}

// UpdateStatus moves a withdrawal from one status to another, reporting false if it was no longer in from
func (r *WithdrawalRepository) UpdateStatus(ctx context.Context, id string, from, to entities.WithdrawalStatus) (bool, error) {
	query := `
		UPDATE withdrawals
		SET status = $3, updated_at = NOW()
		WHERE id = $1::uuid AND status = $2
	`

	tag, err := r.q.Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("failed to update withdrawal %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListAll returns every withdrawal, newest first
func (r *WithdrawalRepository) ListAll(ctx context.Context) ([]*entities.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals ORDER BY created_at DESC, id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return collectWithdrawals(rows)
}

// ListByUser returns a user's withdrawals, newest first
func (r *WithdrawalRepository) ListByUser(ctx context.Context, username string) ([]*entities.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE username = $1 ORDER BY created_at DESC, id`

	rows, err := r.q.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals for %s: %w", username, err)
	}
	return collectWithdrawals(rows)
}

func collectWithdrawals(rows pgx.Rows) ([]*entities.Withdrawal, error) {
	defer rows.Close()

	var withdrawals []*entities.Withdrawal
	for rows.Next() {
		withdrawal, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		withdrawals = append(withdrawals, withdrawal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawals: %w", err)
	}
	return withdrawals, nil
}
