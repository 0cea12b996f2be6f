package contacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores contacts in the contacts table. It accepts a pool or a
// transaction.
type PostgresStore struct {
	db querier
}

// NewPostgresStore binds a store to q.
func NewPostgresStore(q querier) *PostgresStore {
	if q == nil {
		panic("contacts: querier required")
	}
	return &PostgresStore{db: q}
}

var _ Store = (*PostgresStore)(nil)

// FindByEmailPhone looks up a contact by its exact (email, phone) pair.
func (s *PostgresStore) FindByEmailPhone(ctx context.Context, email, phone string) (*Contact, error) {
	query := `
		SELECT id, name, email, phone
		FROM contacts
		WHERE email = $1 AND phone = $2
	`
	var c Contact
	if err := s.db.QueryRow(ctx, query, email, phone).Scan(&c.ID, &c.Name, &c.Email, &c.Phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("contacts: select failed: %w", err)
	}
	return &c, nil
}

// Insert adds c. ON CONFLICT DO NOTHING keeps the surrounding transaction
// usable when another session inserted the same pair first.
func (s *PostgresStore) Insert(ctx context.Context, c *Contact) error {
	query := `
		INSERT INTO contacts (name, email, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (email, phone) DO NOTHING
		RETURNING id
	`
	if err := s.db.QueryRow(ctx, query, c.Name, c.Email, c.Phone).Scan(&c.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("contacts: insert failed: %w", err)
	}
	return nil
}

// UpdateName overwrites the display name of contact id.
func (s *PostgresStore) UpdateName(ctx context.Context, id int64, name string) error {
	ct, err := s.db.Exec(ctx, `UPDATE contacts SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("contacts: update failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
