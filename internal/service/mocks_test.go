package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// fakeTypeChecker reports a fixed set of task types.
type fakeTypeChecker struct {
	types []string
}

func (f *fakeTypeChecker) Has(taskType string) bool {
	for _, t := range f.types {
		if t == taskType {
			return true
		}
	}
	return false
}

func (f *fakeTypeChecker) Types() []string {
	return f.types
}

// fakeDispatcher records dispatched tasks and can be primed to fail.
type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []uuid.UUID
	err        error
}

func (f *fakeDispatcher) Dispatch(taskID uuid.UUID, inputPayload, taskType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, taskID)
	return nil
}

func (f *fakeDispatcher) dispatchedIDs() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.dispatched...)
}

// mockAccountStore is an in-memory AccountStore keyed by username.
type mockAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	getErr   error
}

var _ store.AccountStore = (*mockAccountStore)(nil)

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]*domain.Account)}
}

func (m *mockAccountStore) Create(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[account.Username]; exists {
		return store.ErrUsernameExists
	}
	m.accounts[account.Username] = account
	return nil
}

func (m *mockAccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, account := range m.accounts {
		if account.ID == id {
			copied := *account
			return &copied, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (m *mockAccountStore) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	account, ok := m.accounts[username]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (m *mockAccountStore) WithTx(tx *sql.Tx) store.AccountStore {
	return m
}
