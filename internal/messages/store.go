package messages

import (
	"context"

	"github.com/wolfman30/feedback-api/internal/contacts"
)

// TopicSource reads the fixed set of message topics.
type TopicSource interface {
	// ListTopics returns every topic ordered by id.
	ListTopics(ctx context.Context) ([]Topic, error)
	FindTopic(ctx context.Context, id int) (*Topic, error)
}

// Store persists messages and serves the read paths.
type Store interface {
	TopicSource
	GetMessage(ctx context.Context, id int64) (*Message, error)
	// WithinTx runs fn in a single unit of work. Nothing fn writes is
	// visible unless fn returns nil and the commit succeeds.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the write side of a unit of work.
type Tx interface {
	Contacts() contacts.Store
	InsertMessage(ctx context.Context, m NewMessage) (int64, error)
}
