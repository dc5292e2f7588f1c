// Package memory provides an in-memory storage.Store for tests and
// ephemeral deployments.
package memory

import (
	"fmt"
	"sync"

	"github.com/hearthd/hearthd/storage"
)

// Store implements storage.Store with in-process maps.
type Store struct {
	mu        sync.RWMutex
	nextID    uint64
	accounts  map[uint64]*storage.Account
	usernames map[string]uint64
	documents map[string][]byte
}

var _ storage.Store = (*Store)(nil)

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[uint64]*storage.Account),
		usernames: make(map[string]uint64),
		documents: make(map[string][]byte),
	}
}

func cloneAccount(a *storage.Account) *storage.Account {
	c := *a
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

func (s *Store) CreateAccount(a *storage.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usernames[a.Username]; ok {
		return fmt.Errorf("%s: %w", a.Username, storage.ErrConflict)
	}
	s.nextID++
	a.ID = s.nextID
	s.accounts[a.ID] = cloneAccount(a)
	s.usernames[a.Username] = a.ID
	return nil
}

func (s *Store) GetAccount(id uint64) (*storage.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, storage.ErrNotFound)
	}
	return cloneAccount(a), nil
}

func (s *Store) GetAccountByUsername(username string) (*storage.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", username, storage.ErrNotFound)
	}
	return cloneAccount(s.accounts[id]), nil
}

func (s *Store) ListAccounts() ([]*storage.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*storage.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, cloneAccount(a))
	}
	return accounts, nil
}

func (s *Store) UpdateAccount(a *storage.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.accounts[a.ID]
	if !ok {
		return fmt.Errorf("account %d: %w", a.ID, storage.ErrNotFound)
	}
	if prev.Username != a.Username {
		if _, taken := s.usernames[a.Username]; taken {
			return fmt.Errorf("%s: %w", a.Username, storage.ErrConflict)
		}
		delete(s.usernames, prev.Username)
		s.usernames[a.Username] = a.ID
	}
	s.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (s *Store) DeleteAccount(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("account %d: %w", id, storage.ErrNotFound)
	}
	delete(s.usernames, a.Username)
	delete(s.accounts, id)
	return nil
}

func (s *Store) GetDocument(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.documents[name]
	if !ok {
		return nil, fmt.Errorf("document %q: %w", name, storage.ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *Store) PutDocument(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.documents[name] = stored
	return nil
}
