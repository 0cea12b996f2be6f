package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/feedback-api/pkg/logging"
)

// Resolver finds or creates the contact behind a submission.
type Resolver struct {
	logger *logging.Logger
}

// NewResolver creates a Resolver.
func NewResolver(logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{logger: logger}
}

// Resolve returns the contact keyed by (email, phone), overwriting its name
// with the trimmed name when it already exists and creating it otherwise.
// email and phone must already be normalized.
//
// A concurrent insert of the same pair surfaces as ErrDuplicate; the existing
// row is then re-read once and updated instead.
func (r *Resolver) Resolve(ctx context.Context, store Store, name, email, phone string) (*Contact, error) {
	name = strings.TrimSpace(name)

	existing, err := store.FindByEmailPhone(ctx, email, phone)
	switch {
	case err == nil:
		return r.rename(ctx, store, existing, name)
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("contacts: lookup: %w", err)
	}

	contact := &Contact{Name: name, Email: email, Phone: phone}
	err = store.Insert(ctx, contact)
	if err == nil {
		return contact, nil
	}
	if !errors.Is(err, ErrDuplicate) {
		return nil, fmt.Errorf("contacts: insert: %w", err)
	}

	r.logger.Debug("contact insert lost race; re-reading", "email", email)
	existing, err = store.FindByEmailPhone(ctx, email, phone)
	if err != nil {
		return nil, fmt.Errorf("contacts: re-read after conflict: %w", err)
	}
	return r.rename(ctx, store, existing, name)
}

func (r *Resolver) rename(ctx context.Context, store Store, c *Contact, name string) (*Contact, error) {
	if c.Name == name {
		return c, nil
	}
	if err := store.UpdateName(ctx, c.ID, name); err != nil {
		return nil, fmt.Errorf("contacts: update name: %w", err)
	}
	c.Name = name
	return c, nil
}
