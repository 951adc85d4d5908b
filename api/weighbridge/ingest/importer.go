package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"WeighBridgeSaas/api/tenant"
	"WeighBridgeSaas/internal/config"
)

// ImportResult reports what one import call did. Rows dropped during
// normalization never reach the engine and are not counted here.
type ImportResult struct {
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	MinDate  string `json:"min_date,omitempty"`
	MaxDate  string `json:"max_date,omitempty"`
}

// Engine persists normalized rows. Uniqueness lives in the storage layer as
// the uniq_weigh_txn constraint on (tenant_scope_key, content_hash), so
// concurrent imports of overlapping files lose individual rows to ON
// CONFLICT, never double-count them.
type Engine struct {
	db   *sql.DB
	pool *pgxpool.Pool
}

func NewEngine(db *sql.DB, pool *pgxpool.Pool) *Engine {
	return &Engine{db: db, pool: pool}
}

// ScopeKey is the dedup scope of a row: the owning tenant id when resolved,
// otherwise the folded alias fields so unlinked rows still dedup against
// themselves.
func ScopeKey(tenantID, aliasID, aliasName string) string {
	if tenantID != "" {
		return tenantID
	}
	return strings.ToLower(strings.TrimSpace(aliasID)) + "|" +
		strings.ToLower(strings.Join(strings.Fields(aliasName), " "))
}

// insertRow is a normalized row after tenant resolution, ready to persist.
type insertRow struct {
	NormalizedRow
	TenantID sql.NullString
	Scope    string
}

// prepareBatch resolves each row's tenant, drops within-batch duplicates
// (same scope and content hash) counting them as skipped, and tracks the
// batch's date range. It touches no storage, the seen set lives and dies
// with the one call.
func prepareBatch(tenants []tenant.Tenant, rows []NormalizedRow) ([]insertRow, map[string]bool, ImportResult) {
	var res ImportResult
	seen := make(map[string]bool, len(rows))
	scopes := make(map[string]bool)
	var pending []insertRow
	for _, r := range rows {
		var tenantID sql.NullString
		if t := tenant.Resolve(tenants, r.AliasID, r.AliasName); t != nil {
			tenantID = sql.NullString{String: t.ID, Valid: true}
		}
		scope := ScopeKey(tenantID.String, r.AliasID, r.AliasName)
		key := scope + "|" + r.ContentHash
		if seen[key] {
			res.Skipped++
			continue
		}
		seen[key] = true
		scopes[scope] = true
		pending = append(pending, insertRow{NormalizedRow: r, TenantID: tenantID, Scope: scope})

		if res.MinDate == "" || r.DateStr < res.MinDate {
			res.MinDate = r.DateStr
		}
		if r.DateStr > res.MaxDate {
			res.MaxDate = r.DateStr
		}
	}
	return pending, scopes, res
}

// Import bulk-persists normalized rows. Tenant resolution misses are not
// errors: the row imports unlinked. Duplicate rows, both within the batch
// and against persisted data, count as skipped. With clearFirst set, rows
// already persisted for the batch's tenant scopes inside the batch's date
// range are deleted before inserting.
func (e *Engine) Import(ctx context.Context, rows []NormalizedRow, clearFirst bool) (ImportResult, error) {
	if len(rows) == 0 {
		return ImportResult{}, nil
	}

	tenants, err := tenant.GetTenants(ctx, e.db)
	if err != nil {
		return ImportResult{}, err
	}

	pending, scopes, res := prepareBatch(tenants, rows)

	if clearFirst && res.MinDate != "" {
		for scope := range scopes {
			_, err := e.db.ExecContext(ctx, `
				DELETE FROM weigh_transactions
				WHERE tenant_scope_key = $1 AND date_str BETWEEN $2 AND $3
			`, scope, res.MinDate, res.MaxDate)
			if err != nil {
				return res, fmt.Errorf("failed to clear date range for scope %s: %w", scope, err)
			}
		}
	}

	for start := 0; start < len(pending); start += config.ImportBatchSize {
		end := start + config.ImportBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		valueStrings := make([]string, 0, len(chunk))
		valueArgs := make([]interface{}, 0, len(chunk)*18)
		for i, r := range chunk {
			base := i * 18
			placeholders := make([]string, 18)
			for p := 0; p < 18; p++ {
				placeholders[p] = fmt.Sprintf("$%d", base+p+1)
			}
			valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
			valueArgs = append(valueArgs,
				r.TenantID,
				r.Scope,
				r.DateStr,
				r.TxType,
				r.Product,
				r.ProductDetail,
				r.QuantityTons.StringFixed(4),
				r.Unit,
				r.MixName,
				r.ProjectCode,
				r.ProjectName,
				r.Customer,
				r.Note,
				r.AliasID,
				r.AliasName,
				r.WeighNumber,
				r.Direction,
				r.ContentHash,
			)
		}
		stmt := `INSERT INTO weigh_transactions (
				tenant_id, tenant_scope_key, date_str, tx_type, product, product_detail,
				quantity_tons, unit, mix_name, project_code, project_name, customer, note,
				alias_id, alias_name, weigh_number, direction, content_hash
			) VALUES ` + strings.Join(valueStrings, ",") +
			` ON CONFLICT ON CONSTRAINT uniq_weigh_txn DO NOTHING`
		result, err := e.db.ExecContext(ctx, stmt, valueArgs...)
		if err != nil {
			return res, fmt.Errorf("failed to bulk insert weigh transactions: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return res, fmt.Errorf("failed to count inserted rows: %w", err)
		}
		res.Inserted += int(affected)
		res.Skipped += len(chunk) - int(affected)
	}

	log.Printf("[IMPORT] persisted=%d skipped=%d range=%s..%s", res.Inserted, res.Skipped, res.MinDate, res.MaxDate)
	return res, nil
}

// ImportMixEntries persists reference-sheet entries, first write wins. The
// entry's alias scope resolves to a tenant the same way transaction rows do,
// so scoped references stay queryable by tenant id.
func (e *Engine) ImportMixEntries(ctx context.Context, entries []MixEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tenants, err := tenant.GetTenants(ctx, e.db)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		scopeTenantID := ""
		if t := tenant.Resolve(tenants, entry.AliasID, entry.AliasName); t != nil {
			scopeTenantID = t.ID
		}
		_, err := e.db.ExecContext(ctx, `
			INSERT INTO weigh_mix_references (code, project_name, mix_name, scope_alias_id, scope_alias_name, scope_tenant_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (code, mix_name, scope_alias_id, scope_alias_name) DO NOTHING
		`, entry.Code, entry.ProjectName, entry.MixName, entry.AliasID, entry.AliasName, scopeTenantID)
		if err != nil {
			return fmt.Errorf("failed to upsert mix reference %s: %w", entry.Code, err)
		}
	}
	return nil
}

// StageRawRows copies the raw sheet rows into the staging table under an
// upload batch id, for audit and replay. Staging failures are logged, not
// fatal; the normalized import is the source of truth.
func (e *Engine) StageRawRows(ctx context.Context, batchID, sheetName string, rows [][]string) {
	if e.pool == nil || len(rows) == 0 {
		return
	}
	copyRows := make([][]interface{}, 0, len(rows))
	for i, row := range rows {
		raw, err := json.Marshal(row)
		if err != nil {
			continue
		}
		copyRows = append(copyRows, []interface{}{batchID, sheetName, i + 1, string(raw)})
	}
	for start := 0; start < len(copyRows); start += config.StagingBatchSize {
		end := start + config.StagingBatchSize
		if end > len(copyRows) {
			end = len(copyRows)
		}
		_, err := e.pool.CopyFrom(
			ctx,
			pgx.Identifier{"input_weigh_rows"},
			[]string{"upload_batch_id", "sheet_name", "row_num", "raw_row"},
			pgx.CopyFromRows(copyRows[start:end]),
		)
		if err != nil {
			log.Printf("[IMPORT] failed to stage raw rows for batch %s: %v", batchID, err)
			return
		}
	}
}
