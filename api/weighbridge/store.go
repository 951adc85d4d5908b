package weighbridge

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements bootstraps the weighbridge tables. The uniq_weigh_txn
// constraint is what makes imports idempotent; everything else in the
// pipeline leans on it.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		tenant_id    TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		alias_ids    TEXT[] NOT NULL DEFAULT '{}',
		alias_names  TEXT[] NOT NULL DEFAULT '{}',
		active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS weigh_transactions (
		id               BIGSERIAL PRIMARY KEY,
		tenant_id        TEXT REFERENCES tenants(tenant_id),
		tenant_scope_key TEXT NOT NULL,
		date_str         TEXT NOT NULL,
		tx_type          TEXT NOT NULL,
		product          TEXT NOT NULL DEFAULT '',
		product_detail   TEXT NOT NULL DEFAULT '',
		quantity_tons    NUMERIC(14,4) NOT NULL,
		unit             TEXT NOT NULL DEFAULT '',
		mix_name         TEXT NOT NULL DEFAULT '',
		project_code     TEXT NOT NULL DEFAULT '',
		project_name     TEXT NOT NULL DEFAULT '',
		customer         TEXT NOT NULL DEFAULT '',
		note             TEXT NOT NULL DEFAULT '',
		alias_id         TEXT NOT NULL DEFAULT '',
		alias_name       TEXT NOT NULL DEFAULT '',
		weigh_number     TEXT NOT NULL DEFAULT '',
		direction        TEXT NOT NULL DEFAULT '',
		content_hash     TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT uniq_weigh_txn UNIQUE (tenant_scope_key, content_hash)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_weigh_txn_date ON weigh_transactions (date_str)`,
	`CREATE INDEX IF NOT EXISTS idx_weigh_txn_tenant_date ON weigh_transactions (tenant_scope_key, date_str)`,
	`CREATE TABLE IF NOT EXISTS weigh_mix_references (
		id               BIGSERIAL PRIMARY KEY,
		code             TEXT NOT NULL DEFAULT '',
		project_name     TEXT NOT NULL DEFAULT '',
		mix_name         TEXT NOT NULL DEFAULT '',
		scope_alias_id   TEXT NOT NULL DEFAULT '',
		scope_alias_name TEXT NOT NULL DEFAULT '',
		scope_tenant_id  TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (code, mix_name, scope_alias_id, scope_alias_name)
	)`,
	`CREATE TABLE IF NOT EXISTS weigh_uploads (
		file_hash       TEXT PRIMARY KEY,
		upload_batch_id TEXT NOT NULL,
		filename        TEXT NOT NULL DEFAULT '',
		inserted        INTEGER NOT NULL DEFAULT 0,
		skipped         INTEGER NOT NULL DEFAULT 0,
		min_date        TEXT,
		max_date        TEXT,
		uploaded_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS input_weigh_rows (
		upload_batch_id TEXT NOT NULL,
		sheet_name      TEXT NOT NULL DEFAULT '',
		row_num         INTEGER NOT NULL,
		raw_row         TEXT NOT NULL,
		staged_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS summary_dispatch_log (
		tenant_id     TEXT PRIMARY KEY,
		last_run_date TEXT NOT NULL,
		dispatched_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the weighbridge tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure weighbridge schema: %w", err)
		}
	}
	return nil
}
