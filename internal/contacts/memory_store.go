package contacts

import (
	"context"
	"sync"
)

type pairKey struct {
	email string
	phone string
}

// MemoryStore is an in-process Store used in tests and local runs without a
// database.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*Contact
	byPair map[pairKey]int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[int64]*Contact),
		byPair: make(map[pairKey]int64),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) FindByEmailPhone(_ context.Context, email, phone string) (*Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPair[pairKey{email, phone}]
	if !ok {
		return nil, ErrNotFound
	}
	c := *s.byID[id]
	return &c, nil
}

func (s *MemoryStore) Insert(_ context.Context, c *Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{c.Email, c.Phone}
	if _, exists := s.byPair[key]; exists {
		return ErrDuplicate
	}
	s.nextID++
	c.ID = s.nextID
	stored := *c
	s.byID[c.ID] = &stored
	s.byPair[key] = c.ID
	return nil
}

func (s *MemoryStore) UpdateName(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	c.Name = name
	return nil
}

// Get returns a copy of contact id.
func (s *MemoryStore) Get(id int64) (*Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

// Delete removes contact id. Callers owning dependent rows must remove those
// first.
func (s *MemoryStore) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byPair, pairKey{c.Email, c.Phone})
	delete(s.byID, id)
	return true
}

// Len returns the number of stored contacts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Snapshot captures the current contents and returns a function that restores
// them, letting a caller roll back a failed unit of work.
func (s *MemoryStore) Snapshot() (restore func()) {
	s.mu.RLock()
	nextID := s.nextID
	byID := make(map[int64]*Contact, len(s.byID))
	for id, c := range s.byID {
		cp := *c
		byID[id] = &cp
	}
	byPair := make(map[pairKey]int64, len(s.byPair))
	for k, v := range s.byPair {
		byPair[k] = v
	}
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		s.nextID = nextID
		s.byID = byID
		s.byPair = byPair
		s.mu.Unlock()
	}
}
