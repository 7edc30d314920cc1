package application_test

import (
	"context"
	"errors"
	"testing"

	"dailybet/application"
	"dailybet/domain/apperrors"
	"dailybet/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_LoginLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupEnv(t)
	ctx := context.Background()
	accounts := application.NewAccountHandler(env.uowFactory)

	first, err := accounts.Login(ctx, "newbie", "Str0ng!pass")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.True(t, first.User.Balance.IsZero())
	assert.False(t, first.User.IsAdmin)

	second, err := accounts.Login(ctx, "newbie", "Str0ng!pass")
	require.NoError(t, err)
	assert.False(t, second.Created)

	_, err = accounts.Login(ctx, "newbie", "Wr0ng!pass")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	_, err = accounts.Login(ctx, "weak", "password")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestAccount_GrantAdminAndChangePassword(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupEnv(t)
	ctx := context.Background()
	testutil.SeedUser(t, env.db.DB, "root", "0")
	accounts := application.NewAccountHandler(env.uowFactory)

	require.NoError(t, accounts.GrantAdmin(ctx, "root"))
	assert.True(t, errors.Is(accounts.GrantAdmin(ctx, "nobody"), apperrors.ErrNotFound))

	result, err := accounts.Login(ctx, "root", testutil.TestPassword)
	require.NoError(t, err)
	assert.True(t, result.User.IsAdmin)

	err = accounts.ChangePassword(ctx, "root", "Wr0ng!pass", "N3w!password")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	require.NoError(t, accounts.ChangePassword(ctx, "root", testutil.TestPassword, "N3w!password"))
	_, err = accounts.Login(ctx, "root", "N3w!password")
	require.NoError(t, err)

	users, err := accounts.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
