package roles

import (
	"context"
	"sync"

	"vitalis/pkg/domain"
)

// InMemoryStore keeps grants in a mutex-guarded map. It intentionally favors
// clarity over performance.
type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[domain.Role]map[domain.AccountID]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{grants: make(map[domain.Role]map[domain.AccountID]struct{})}
}

func (s *InMemoryStore) Add(_ context.Context, role domain.Role, account domain.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grants[role] == nil {
		s.grants[role] = make(map[domain.AccountID]struct{})
	}
	s.grants[role][account] = struct{}{}
	return nil
}

func (s *InMemoryStore) Remove(_ context.Context, role domain.Role, account domain.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants[role], account)
	return nil
}

func (s *InMemoryStore) Has(_ context.Context, role domain.Role, account domain.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.grants[role][account]
	return ok, nil
}

func (s *InMemoryStore) Count(_ context.Context, role domain.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.grants[role]), nil
}
