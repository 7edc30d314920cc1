package repository

import (
	"context"
	"fmt"

	"dailybet/database"
	"dailybet/domain/apperrors"
	"dailybet/domain/entities"
)

// DepositRepository implements the DepositRepository interface
type DepositRepository struct {
	q queryable
}

// NewDepositRepository creates a new deposit repository
func NewDepositRepository(db *database.DB) *DepositRepository {
	return &DepositRepository{q: db.Pool}
}

func newDepositRepositoryWithTx(tx queryable) *DepositRepository {
	return &DepositRepository{q: tx}
}

// Exists reports whether a transaction id has been consumed
func (r *DepositRepository) Exists(ctx context.Context, txid string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM deposit_txids WHERE txid = $1)`, txid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check txid %s: %w", txid, err)
	}
	return exists, nil
}

// Create consumes a transaction id. The primary key rejects a second use.
func (r *DepositRepository) Create(ctx context.Context, deposit *entities.DepositTxid) error {
	query := `
		INSERT INTO deposit_txids (txid, username, amount, confirmed, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.Exec(ctx, query,
		deposit.Txid,
		deposit.Username,
		deposit.Amount,
		deposit.Confirmed,
		deposit.CreatedAt,
	)
	if isUniqueViolation(err) {
		return apperrors.AlreadyProcessed("transaction %s already credited", deposit.Txid)
	}
	if err != nil {
		return fmt.Errorf("failed to record txid %s: %w", deposit.Txid, err)
	}
	return nil
}
