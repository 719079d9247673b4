package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Account
var (
	ErrEmptyAccountID       = errors.New("account ID cannot be empty")
	ErrEmptyAccountUsername = errors.New("account username cannot be empty")
	ErrAccountUsernameTooLong = errors.New("account username cannot exceed 64 characters")
	ErrEmptyHashedPassword  = errors.New("account hashed password cannot be empty")
)

// Account represents an operator of the service. Accounts authenticate
// against the API and own the tasks they submit.
type Account struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	Email          string    `json:"email,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAccount creates a new active Account with a fresh ID and timestamps.
// The password must already be hashed by the caller; the domain layer never
// sees plaintext credentials.
func NewAccount(username, hashedPassword, email string) (*Account, error) {
	now := time.Now().UTC()
	account := &Account{
		ID:             uuid.New(),
		Username:       username,
		HashedPassword: hashedPassword,
		Email:          email,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	return account, nil
}

// Validate checks if the Account has valid data.
func (a *Account) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAccountID
	}

	if a.Username == "" {
		return ErrEmptyAccountUsername
	}

	if len(a.Username) > 64 {
		return ErrAccountUsernameTooLong
	}

	if a.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}

	return nil
}
