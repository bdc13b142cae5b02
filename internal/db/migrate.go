package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS marshal_runs (
		id           TEXT PRIMARY KEY,
		feature_id   INTEGER NOT NULL CHECK(feature_id > 0),
		feature_name TEXT NOT NULL DEFAULT '',
		ir_path      TEXT NOT NULL,
		total_items  INTEGER NOT NULL CHECK(total_items > 0),
		max_depth    INTEGER NOT NULL DEFAULT 0,
		marshaled_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_marshal_runs_feature ON marshal_runs(feature_id, marshaled_at)`,
	`CREATE INDEX IF NOT EXISTS idx_marshal_runs_at ON marshal_runs(marshaled_at)`,
}
