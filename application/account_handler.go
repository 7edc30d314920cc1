package application

import (
	"context"
	"fmt"

	"dailybet/domain/entities"
	"dailybet/domain/interfaces"

	"github.com/shopspring/decimal"
)

// AccountHandler runs login and account operations in their own units of work
type AccountHandler interface {
	Login(ctx context.Context, username, password string) (*interfaces.LoginResult, error)
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
	GetBalance(ctx context.Context, username string) (decimal.Decimal, error)
	ListUsers(ctx context.Context) ([]*entities.UserSummary, error)
	GrantAdmin(ctx context.Context, username string) error
}

type accountHandler struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(uowFactory UnitOfWorkFactory) AccountHandler {
	return &accountHandler{
		uowFactory: uowFactory,
	}
}

// Login creates the account on first use, otherwise checks the password
func (h *accountHandler) Login(ctx context.Context, username, password string) (*interfaces.LoginResult, error) {
	var result *interfaces.LoginResult
	err := h.inTransaction(ctx, func(svc interfaces.AccountService) error {
		var err error
		result, err = svc.Login(ctx, username, password)
		return err
	})
	return result, err
}

func (h *accountHandler) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	return h.inTransaction(ctx, func(svc interfaces.AccountService) error {
		return svc.ChangePassword(ctx, username, currentPassword, newPassword)
	})
}

func (h *accountHandler) GetBalance(ctx context.Context, username string) (decimal.Decimal, error) {
	balance := decimal.Zero
	err := h.inTransaction(ctx, func(svc interfaces.AccountService) error {
		var err error
		balance, err = svc.GetBalance(ctx, username)
		return err
	})
	return balance, err
}

func (h *accountHandler) ListUsers(ctx context.Context) ([]*entities.UserSummary, error) {
	var users []*entities.UserSummary
	err := h.inTransaction(ctx, func(svc interfaces.AccountService) error {
		var err error
		users, err = svc.ListUsers(ctx)
		return err
	})
	return users, err
}

func (h *accountHandler) GrantAdmin(ctx context.Context, username string) error {
	return h.inTransaction(ctx, func(svc interfaces.AccountService) error {
		return svc.GrantAdmin(ctx, username)
	})
}

func (h *accountHandler) inTransaction(ctx context.Context, fn func(interfaces.AccountService) error) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(accountServiceFor(uow)); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
