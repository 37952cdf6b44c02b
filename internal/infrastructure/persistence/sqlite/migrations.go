package sqlite

import (
	"context"
	"database/sql"
)

func RunMigrations(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS payments (
			order_id TEXT PRIMARY KEY,
			provider_order_id TEXT,
			amount TEXT NOT NULL,
			currency TEXT NOT NULL,
			method TEXT NOT NULL,
			status TEXT NOT NULL,
			capture_id TEXT NOT NULL DEFAULT '',
			payer_id TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,

		`CREATE UNIQUE INDEX IF NOT EXISTS ux_payments_provider_order_id
			ON payments (provider_order_id)
			WHERE provider_order_id IS NOT NULL;`,

		`CREATE INDEX IF NOT EXISTS ix_payments_created_at
			ON payments (created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
