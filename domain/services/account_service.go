package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dailybet/domain/apperrors"
	"dailybet/domain/entities"
	"dailybet/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt cost for stored passwords
const PasswordHashCost = 10

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

type accountService struct {
	userRepo interfaces.UserRepository
	hashCost int
	now      func() time.Time
}

// NewAccountService creates a new account service
func NewAccountService(userRepo interfaces.UserRepository) interfaces.AccountService {
	return &accountService{
		userRepo: userRepo,
		hashCost: PasswordHashCost,
		now:      time.Now,
	}
}

// Login authenticates username, creating the account on its first login
func (s *accountService) Login(ctx context.Context, username, password string) (*interfaces.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.Validation("username and password are required")
	}
	if !IsStrongPassword(password) {
		return nil, apperrors.Validation("password must be at least 8 characters and include uppercase, lowercase, number, and special character")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		hash, err := s.hash(password)
		if err != nil {
			return nil, err
		}

		created, err := s.userRepo.Create(ctx, username, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		if created != nil {
			log.WithField("username", username).Info("New user created")
			return &interfaces.LoginResult{User: created, Created: true}, nil
		}

		// Registered concurrently, fall through and check the password against it
		user, err = s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return nil, fmt.Errorf("user %s vanished after concurrent registration", username)
		}
	}

	if err := s.compare(user.PasswordHash, password); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.userRepo.TouchLastActive(ctx, username, now); err != nil {
		return nil, fmt.Errorf("failed to update last active: %w", err)
	}
	user.LastActive = now

	log.WithField("username", username).Debug("User logged in")
	return &interfaces.LoginResult{User: user}, nil
}

func (s *accountService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return apperrors.NotFound("user %s not found", username)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return apperrors.Validation("current password is incorrect")
	}
	if !IsStrongPassword(newPassword) {
		return apperrors.Validation("new password is not strong enough")
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, username, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.WithField("username", username).Info("Password changed")
	return nil
}

func (s *accountService) GetBalance(ctx context.Context, username string) (decimal.Decimal, error) {
	if strings.TrimSpace(username) == "" {
		return decimal.Zero, apperrors.Validation("username is required")
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return decimal.Zero, apperrors.NotFound("user %s not found", username)
	}
	return user.Balance, nil
}

// ListUsers returns every account, richest first
func (s *accountService) ListUsers(ctx context.Context) ([]*entities.UserSummary, error) {
	users, err := s.userRepo.ListByBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *accountService) GrantAdmin(ctx context.Context, username string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return apperrors.NotFound("user %s not found", username)
	}
	if err := s.userRepo.SetAdmin(ctx, username, true); err != nil {
		return fmt.Errorf("failed to grant admin: %w", err)
	}
	log.WithField("username", username).Warn("Admin rights granted")
	return nil
}

func (s *accountService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *accountService) compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return apperrors.Unauthorized("invalid password")
	}
	if err != nil {
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}

// IsStrongPassword requires 8 to 72 bytes with a lowercase letter, an uppercase letter,
// a digit and a character outside [A-Za-z0-9].
func IsStrongPassword(password string) bool {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}
