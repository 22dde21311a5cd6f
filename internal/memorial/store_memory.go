package memorial

import (
	"context"
	"sync"

	"vitalis/pkg/domain"
	"vitalis/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	content map[domain.RecordID]Content
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{content: make(map[domain.RecordID]Content)}
}

func (s *InMemoryStore) Put(_ context.Context, c Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.References = append([]string{}, c.References...)
	s.content[c.RecordID] = c
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id domain.RecordID) (Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.content[id]; ok {
		c.References = append([]string{}, c.References...)
		return c, nil
	}
	return Content{}, sentinel.ErrNotFound
}
