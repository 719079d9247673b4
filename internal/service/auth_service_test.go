package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T, accounts *mockAccountStore) AuthService {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes: 5,
	})
	require.NoError(t, err)

	svc, err := NewAuthService(accounts, auth.NewBcryptVerifier(), jwtService, testLogger())
	require.NoError(t, err)
	return svc
}

func seedAccount(t *testing.T, accounts *mockAccountStore, username, password string) *domain.Account {
	t.Helper()

	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	account, err := domain.NewAccount(username, hash, "")
	require.NoError(t, err)
	require.NoError(t, accounts.Create(context.Background(), account))
	return account
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		accounts := newMockAccountStore()
		account := seedAccount(t, accounts, "operator", "s3cret")
		svc := newTestAuthService(t, accounts)

		token, accountID, err := svc.Login(context.Background(), "operator", "s3cret")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, account.ID, accountID)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		accounts := newMockAccountStore()
		seedAccount(t, accounts, "operator", "s3cret")
		svc := newTestAuthService(t, accounts)

		token, accountID, err := svc.Login(context.Background(), "operator", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Empty(t, token)
		assert.Equal(t, uuid.Nil, accountID)
	})

	t.Run("unknown username returns the same error as a wrong password", func(t *testing.T) {
		t.Parallel()

		accounts := newMockAccountStore()
		svc := newTestAuthService(t, accounts)

		_, _, err := svc.Login(context.Background(), "nobody", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("store failure is not masked as bad credentials", func(t *testing.T) {
		t.Parallel()

		accounts := newMockAccountStore()
		accounts.getErr = errors.New("db down")
		svc := newTestAuthService(t, accounts)

		_, _, err := svc.Login(context.Background(), "operator", "s3cret")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}
