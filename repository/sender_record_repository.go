package repository

import (
	"context"
	"errors"
	"fmt"

	"dailybet/database"
	"dailybet/domain/entities"

	"github.com/jackc/pgx/v5"
)

// SenderRecordRepository implements the SenderRecordRepository interface
type SenderRecordRepository struct {
	q queryable
}

// NewSenderRecordRepository creates a new sender record repository
func NewSenderRecordRepository(db *database.DB) *SenderRecordRepository {
	return &SenderRecordRepository{q: db.Pool}
}

func newSenderRecordRepositoryWithTx(tx queryable) *SenderRecordRepository {
	return &SenderRecordRepository{q: tx}
}

// Upsert registers a sender address, moving submitted_at forward on re-registration
func (r *SenderRecordRepository) Upsert(ctx context.Context, record *entities.SenderRecord) error {
	query := `
		INSERT INTO sender_records (username, sender_address, submitted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (username, sender_address) DO UPDATE SET submitted_at = EXCLUDED.submitted_at
	`

	_, err := r.q.Exec(ctx, query, record.Username, record.SenderAddress, record.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to register sender %s for %s: %w", record.SenderAddress, record.Username, err)
	}
	return nil
}

// Get returns a sender registration, nil if the address was never registered by username
func (r *SenderRecordRepository) Get(ctx context.Context, username, senderAddress string) (*entities.SenderRecord, error) {
	query := `
		SELECT username, sender_address, submitted_at
		FROM sender_records
		WHERE username = $1 AND sender_address = $2
	`

	var record entities.SenderRecord
	err := r.q.QueryRow(ctx, query, username, senderAddress).Scan(
		&record.Username,
		&record.SenderAddress,
		&record.SubmittedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sender record: %w", err)
	}
	return &record, nil
}
