package proof

import (
	"context"
	"sync"

	"vitalis/pkg/domain"
)

// InMemoryStore implements the dedup set with a mutex-guarded map. The single
// critical section gives TryConsume its check-and-set atomicity.
type InMemoryStore struct {
	mu       sync.Mutex
	consumed map[domain.ProofCommitment]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{consumed: make(map[domain.ProofCommitment]struct{})}
}

func (s *InMemoryStore) TryConsume(_ context.Context, commitment domain.ProofCommitment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, spent := s.consumed[commitment]; spent {
		return false, nil
	}
	s.consumed[commitment] = struct{}{}
	return true, nil
}
