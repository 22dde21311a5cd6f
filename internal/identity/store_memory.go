package identity

import (
	"context"
	"sync"

	"vitalis/pkg/domain"
	"vitalis/pkg/platform/sentinel"
)

// InMemoryStore keeps both directions of the bijection in maps guarded by one
// mutex so an insert can check and write atomically.
type InMemoryStore struct {
	mu        sync.RWMutex
	byID      map[domain.NationalID]Binding
	byAccount map[domain.AccountID]Binding
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:      make(map[domain.NationalID]Binding),
		byAccount: make(map[domain.AccountID]Binding),
	}
}

func (s *InMemoryStore) Insert(_ context.Context, b Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byID[b.NationalID]; taken {
		return sentinel.ErrConflict
	}
	if _, taken := s.byAccount[b.Account]; taken {
		return sentinel.ErrConflict
	}
	s.byID[b.NationalID] = b
	s.byAccount[b.Account] = b
	return nil
}

func (s *InMemoryStore) FindByNationalID(_ context.Context, nid domain.NationalID) (Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.byID[nid]; ok {
		return b, nil
	}
	return Binding{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByAccount(_ context.Context, account domain.AccountID) (Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.byAccount[account]; ok {
		return b, nil
	}
	return Binding{}, sentinel.ErrNotFound
}
