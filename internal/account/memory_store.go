package account

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps accounts in process memory. It backs tests and
// ACCOUNT_STORE=memory for local runs.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]Account
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) Create(_ context.Context, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := NormalizeEmail(a.Email)
	if _, exists := s.accounts[key]; exists {
		return ErrDuplicateEmail
	}

	now := s.now().UTC()
	a.Email = key
	a.CreatedAt = now
	a.UpdatedAt = now
	s.accounts[key] = *a
	return nil
}

func (s *MemoryStore) Update(_ context.Context, email string, p Patch) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := NormalizeEmail(email)
	a, ok := s.accounts[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !p.empty() {
		p.Apply(&a)
		a.UpdatedAt = s.now().UTC()
		s.accounts[key] = a
	}
	return &a, nil
}
