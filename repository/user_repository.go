package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dailybet/database"
	"dailybet/domain/apperrors"
	"dailybet/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `username, password_hash, balance, is_admin, created_at, last_active`

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.Username,
		&user.PasswordHash,
		&user.Balance,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.LastActive,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}
	return user, nil
}

// GetForUpdate retrieves a user and holds a row lock until the transaction ends
func (r *UserRepository) GetForUpdate(ctx context.Context, username string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 FOR UPDATE`

	user, err := scanUser(r.q.QueryRow(ctx, query, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %s: %w", username, err)
	}
	return user, nil
}

// Create inserts a user with a zero balance, returning nil if the username already exists
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*entities.User, error) {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (username) DO NOTHING
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, username, passwordHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	return user, nil
}

// UpdateBalance sets the balance only if it still equals expected
func (r *UserRepository) UpdateBalance(ctx context.Context, username string, expected, newBalance decimal.Decimal) error {
	query := `UPDATE users SET balance = $3 WHERE username = $1 AND balance = $2`

	tag, err := r.q.Exec(ctx, query, username, expected, newBalance)
	if err != nil {
		return fmt.Errorf("failed to update balance for %s: %w", username, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("balance of %s changed during update", username)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	tag, err := r.q.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE username = $1`, username, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password for %s: %w", username, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user %s not found", username)
	}
	return nil
}

func (r *UserRepository) TouchLastActive(ctx context.Context, username string, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE users SET last_active = $2 WHERE username = $1`, username, at)
	if err != nil {
		return fmt.Errorf("failed to touch last active for %s: %w", username, err)
	}
	return nil
}

func (r *UserRepository) SetAdmin(ctx context.Context, username string, isAdmin bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE users SET is_admin = $2 WHERE username = $1`, username, isAdmin)
	if err != nil {
		return fmt.Errorf("failed to set admin flag for %s: %w", username, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user %s not found", username)
	}
	return nil
}

// ListByBalance returns every user ordered by balance, highest first
func (r *UserRepository) ListByBalance(ctx context.Context) ([]*entities.UserSummary, error) {
	query := `SELECT username, balance, created_at FROM users ORDER BY balance DESC, username`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*entities.UserSummary
	for rows.Next() {
		var user entities.UserSummary
		if err := rows.Scan(&user.Username, &user.Balance, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
