package messages

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wolfman30/feedback-api/internal/contacts"
)

// DefaultTopics is the seed set written by the initial migration.
var DefaultTopics = []Topic{
	{ID: 1, Name: "General question"},
	{ID: 2, Name: "Suggestion"},
	{ID: 3, Name: "Complaint"},
}

type storedMessage struct {
	id        int64
	contactID int64
	topicID   int
	text      string
	createdAt time.Time
}

// MemoryStore is an in-process Store. Units of work are serialized and
// rolled back on error, and the contact/topic integrity rules of the
// relational schema are enforced by hand.
type MemoryStore struct {
	txMu     sync.RWMutex
	mu       sync.RWMutex
	contacts *contacts.MemoryStore
	topics   map[int]Topic
	messages map[int64]storedMessage
	nextID   int64
	now      func() time.Time
}

// NewMemoryStore creates a store seeded with topics (DefaultTopics when none
// are given).
func NewMemoryStore(topics ...Topic) *MemoryStore {
	if len(topics) == 0 {
		topics = DefaultTopics
	}
	s := &MemoryStore{
		contacts: contacts.NewMemoryStore(),
		topics:   make(map[int]Topic, len(topics)),
		messages: make(map[int64]storedMessage),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, t := range topics {
		s.topics[t.ID] = t
	}
	return s
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) ListTopics(context.Context) ([]Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Topic, 0, len(s.topics))
	for _, t := range s.topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) FindTopic(_ context.Context, id int) (*Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.topics[id]
	if !ok {
		return nil, ErrTopicNotFound
	}
	return &t, nil
}

// GetMessage waits for any running unit of work so it never observes
// contact changes that may still be rolled back.
func (s *MemoryStore) GetMessage(_ context.Context, id int64) (*Message, error) {
	s.txMu.RLock()
	defer s.txMu.RUnlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	c, ok := s.contacts.Get(m.contactID)
	if !ok {
		return nil, ErrMessageNotFound
	}
	return &Message{
		ID:        m.id,
		Contact:   *c,
		Topic:     s.topics[m.topicID],
		Text:      m.text,
		CreatedAt: m.createdAt,
	}, nil
}

// WithinTx runs fn exclusively. On error or a canceled ctx every change made
// by fn is discarded.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	restoreContacts := s.contacts.Snapshot()
	tx := &memoryTx{store: s}
	if err := fn(ctx, tx); err != nil {
		restoreContacts()
		return err
	}
	if err := ctx.Err(); err != nil {
		restoreContacts()
		return err
	}

	s.mu.Lock()
	for _, m := range tx.pending {
		s.messages[m.id] = m
	}
	s.mu.Unlock()
	return nil
}

// MessageCount returns the number of stored messages.
func (s *MemoryStore) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// ContactCount returns the number of stored contacts.
func (s *MemoryStore) ContactCount() int {
	return s.contacts.Len()
}

// DeleteContact removes a contact and cascades to its messages.
func (s *MemoryStore) DeleteContact(id int64) bool {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if !s.contacts.Delete(id) {
		return false
	}
	s.mu.Lock()
	for msgID, m := range s.messages {
		if m.contactID == id {
			delete(s.messages, msgID)
		}
	}
	s.mu.Unlock()
	return true
}

// DeleteTopic removes a topic unless a message still references it.
func (s *MemoryStore) DeleteTopic(id int) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.topics[id]; !ok {
		return ErrTopicNotFound
	}
	for _, m := range s.messages {
		if m.topicID == id {
			return ErrTopicInUse
		}
	}
	delete(s.topics, id)
	return nil
}

type memoryTx struct {
	store   *MemoryStore
	pending []storedMessage
}

func (tx *memoryTx) Contacts() contacts.Store {
	return tx.store.contacts
}

func (tx *memoryTx) InsertMessage(ctx context.Context, m NewMessage) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s := tx.store
	if _, ok := s.contacts.Get(m.ContactID); !ok {
		return 0, contacts.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.topics[m.TopicID]; !ok {
		return 0, ErrTopicNotFound
	}
	s.nextID++
	stored := storedMessage{
		id:        s.nextID,
		contactID: m.ContactID,
		topicID:   m.TopicID,
		text:      m.Text,
		createdAt: s.now(),
	}
	tx.pending = append(tx.pending, stored)
	return stored.id, nil
}
