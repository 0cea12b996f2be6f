// Package migrations embeds the SQL schema migrations applied by cmd/migrate
// and, when MIGRATE_ON_START is set, by the API on boot.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
