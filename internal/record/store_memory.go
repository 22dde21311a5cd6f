package record

import (
	"context"
	"sync"

	"vitalis/pkg/domain"
	"vitalis/pkg/platform/sentinel"
)

// InMemoryStore keeps records in an id-indexed map plus an append-only name
// index. Get hands out copies, so callers never hold a reference they could
// mutate behind the store's back.
type InMemoryStore struct {
	mu         sync.RWMutex
	nextID     domain.RecordID
	records    map[domain.RecordID]Record
	byName     map[string][]domain.RecordID
	byNational map[domain.NationalID]domain.RecordID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		nextID:     1,
		records:    make(map[domain.RecordID]Record),
		byName:     make(map[string][]domain.RecordID),
		byNational: make(map[domain.NationalID]domain.RecordID),
	}
}

func (s *InMemoryStore) Insert(_ context.Context, r Record) (domain.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID
	s.nextID++
	s.records[r.ID] = r
	normalized := NormalizeName(r.SubjectName)
	s.byName[normalized] = append(s.byName[normalized], r.ID)
	if !r.NationalID.IsEmpty() {
		s.byNational[r.NationalID] = r.ID
	}
	return r.ID, nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.RecordID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.records[id]; ok {
		return r, nil
	}
	return Record{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) SetVerified(_ context.Context, id domain.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.Verified = true
	s.records[id] = r
	return nil
}

func (s *InMemoryStore) SetAuxiliaryRef(_ context.Context, id domain.RecordID, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.AuxiliaryRef = ref
	s.records[id] = r
	return nil
}

func (s *InMemoryStore) SearchName(_ context.Context, normalized string) ([]domain.RecordID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.RecordID{}, s.byName[normalized]...), nil
}

func (s *InMemoryStore) HasForNationalID(_ context.Context, nid domain.NationalID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byNational[nid]
	return ok, nil
}

func (s *InMemoryStore) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.records)), nil
}
