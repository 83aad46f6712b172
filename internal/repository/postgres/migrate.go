package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS schedule_archive (
		id            TEXT PRIMARY KEY,
		start_date    DATE NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		total_batches INTEGER NOT NULL DEFAULT 0,
		data          JSONB NOT NULL DEFAULT '{}',
		targets       JSONB NOT NULL DEFAULT '{}',
		archived_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS rm_requirement_archive (
		id           TEXT PRIMARY KEY,
		start_date   DATE NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		global_data  JSONB NOT NULL DEFAULT '{}',
		per_sku_data JSONB NOT NULL DEFAULT '{}',
		archived_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS request_order_archive (
		id          TEXT PRIMARY KEY,
		date        DATE NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		deadline    DATE,
		status      TEXT NOT NULL,
		items       JSONB NOT NULL DEFAULT '[]',
		archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_archive_start ON schedule_archive (start_date)`,
	`CREATE INDEX IF NOT EXISTS idx_request_order_archive_date ON request_order_archive (date)`,
}

// Migrate creates the archive tables when they do not exist.
func Migrate(ctx context.Context, db *DB) error {
	return db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
