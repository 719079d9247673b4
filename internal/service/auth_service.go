package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// AuthService authenticates accounts and issues access tokens.
type AuthService interface {
	// Login verifies the credentials and returns a signed access token for
	// the account. Returns ErrInvalidCredentials when the username is
	// unknown or the password does not match; callers cannot tell the two
	// apart.
	Login(ctx context.Context, username, password string) (string, uuid.UUID, error)
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	accountStore store.AccountStore
	verifier     auth.PasswordVerifier
	jwtService   auth.JWTService
	logger       *slog.Logger
}

var _ AuthService = (*authServiceImpl)(nil)

// NewAuthService creates a new AuthService.
// It returns an error if any of the required dependencies are nil.
func NewAuthService(
	accountStore store.AccountStore,
	verifier auth.PasswordVerifier,
	jwtService auth.JWTService,
	logger *slog.Logger,
) (AuthService, error) {
	if accountStore == nil {
		return nil, fmt.Errorf("accountStore cannot be nil")
	}
	if verifier == nil {
		return nil, fmt.Errorf("verifier cannot be nil")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("jwtService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &authServiceImpl{
		accountStore: accountStore,
		verifier:     verifier,
		jwtService:   jwtService,
		logger:       logger.With(slog.String("component", "auth_service")),
	}, nil
}

// Login implements AuthService.Login.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (string, uuid.UUID, error) {
	account, err := s.accountStore.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			s.logger.Debug("login failed: unknown username", "username", username)
			return "", uuid.Nil, ErrInvalidCredentials
		}
		return "", uuid.Nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := s.verifier.Compare(account.HashedPassword, password); err != nil {
		s.logger.Debug("login failed: password mismatch", "account_id", account.ID)
		return "", uuid.Nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(ctx, account.ID)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	s.logger.Info("account logged in", "account_id", account.ID)
	return token, account.ID, nil
}
