package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SchemaState is the migration state recorded by golang-migrate.
type SchemaState struct {
	Version uint `json:"schema_version"`
	Dirty   bool `json:"dirty"`
}

// SchemaVersion reads the applied migration version. A database that has
// never been migrated reports version 0.
func SchemaVersion(ctx context.Context, db *sql.DB) (SchemaState, error) {
	var (
		version int64
		dirty   bool
	)
	err := db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return SchemaState{}, nil
	}
	if err != nil {
		return SchemaState{}, fmt.Errorf("storage: read schema version: %w", err)
	}
	if version < 0 {
		return SchemaState{Dirty: dirty}, nil
	}
	return SchemaState{Version: uint(version), Dirty: dirty}, nil
}
