package database

import (
	"context"
	"database/sql"
	_ "embed"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the service tables when they do not exist yet. The
// statements are idempotent, so running it against a populated database is
// a no-op. Integration tests use it to bootstrap a scratch database from
// the same DDL the deployment applies.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
