package contacts

import "context"

// Store persists contacts. Implementations bound to a transaction must route
// every call through it.
type Store interface {
	FindByEmailPhone(ctx context.Context, email, phone string) (*Contact, error)
	// Insert stores c and sets c.ID. It returns ErrDuplicate when the
	// (email, phone) pair is taken.
	Insert(ctx context.Context, c *Contact) error
	UpdateName(ctx context.Context, id int64, name string) error
}
