package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaVersion(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		want    SchemaState
		wantErr bool
	}{
		{
			name: "migrated",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT version, dirty FROM schema_migrations").
					WillReturnRows(sqlmock.NewRows([]string{"version", "dirty"}).AddRow(int64(1), false))
			},
			want: SchemaState{Version: 1},
		},
		{
			name: "dirty",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT version, dirty FROM schema_migrations").
					WillReturnRows(sqlmock.NewRows([]string{"version", "dirty"}).AddRow(int64(2), true))
			},
			want: SchemaState{Version: 2, Dirty: true},
		},
		{
			name: "never migrated",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT version, dirty FROM schema_migrations").
					WillReturnRows(sqlmock.NewRows([]string{"version", "dirty"}))
			},
			want: SchemaState{},
		},
		{
			name: "nil version",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT version, dirty FROM schema_migrations").
					WillReturnRows(sqlmock.NewRows([]string{"version", "dirty"}).AddRow(int64(-1), false))
			},
			want: SchemaState{},
		},
		{
			name: "query failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT version, dirty FROM schema_migrations").
					WillReturnError(errors.New(`relation "schema_migrations" does not exist`))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setup(mock)
			got, err := SchemaVersion(context.Background(), db)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNewPool_RejectsBadURL(t *testing.T) {
	_, err := NewPool(context.Background(), "postgres://user@host:notaport/db", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage: parse database url")
}
