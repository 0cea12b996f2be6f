package messages

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfman30/feedback-api/internal/contacts"
)

const foreignKeyViolation = "23503"

type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists messages in PostgreSQL.
type PostgresStore struct {
	db db
}

// NewPostgresStore creates a store on top of a pgx pool.
func NewPostgresStore(pool db) *PostgresStore {
	if pool == nil {
		panic("messages: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

var _ Store = (*PostgresStore)(nil)

func (s *PostgresStore) ListTopics(ctx context.Context) ([]Topic, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM message_topics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("messages: list topics: %w", err)
	}
	defer rows.Close()

	topics := make([]Topic, 0, len(DefaultTopics))
	for rows.Next() {
		var t Topic
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("messages: scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messages: list topics: %w", err)
	}
	return topics, nil
}

func (s *PostgresStore) FindTopic(ctx context.Context, id int) (*Topic, error) {
	var t Topic
	err := s.db.QueryRow(ctx, `SELECT id, name FROM message_topics WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("messages: find topic: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) GetMessage(ctx context.Context, id int64) (*Message, error) {
	query := `
		SELECT m.id, m.text, m.created_at,
		       c.id, c.name, c.email, c.phone,
		       t.id, t.name
		FROM messages m
		JOIN contacts c ON c.id = m.contact_id
		JOIN message_topics t ON t.id = m.topic_id
		WHERE m.id = $1
	`
	var m Message
	err := s.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Text, &m.CreatedAt,
		&m.Contact.ID, &m.Contact.Name, &m.Contact.Email, &m.Contact.Phone,
		&m.Topic.ID, &m.Topic.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("messages: get message: %w", err)
	}
	return &m, nil
}

// WithinTx runs fn inside a database transaction and commits when fn
// succeeds. Any error, including a canceled ctx, rolls everything back.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("messages: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &postgresTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("messages: commit: %w", err)
	}
	return nil
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) Contacts() contacts.Store {
	return contacts.NewPostgresStore(t.tx)
}

func (t *postgresTx) InsertMessage(ctx context.Context, m NewMessage) (int64, error) {
	query := `
		INSERT INTO messages (contact_id, topic_id, text)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	if err := t.tx.QueryRow(ctx, query, m.ContactID, m.TopicID, m.Text).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == "messages_topic_id_fkey" {
			return 0, ErrTopicNotFound
		}
		return 0, fmt.Errorf("messages: insert message: %w", err)
	}
	return id, nil
}
