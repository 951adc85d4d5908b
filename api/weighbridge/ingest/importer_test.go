package ingest

import (
	"testing"

	"github.com/shopspring/decimal"

	"WeighBridgeSaas/api/tenant"
	"WeighBridgeSaas/internal/contenthash"
)

func TestScopeKey(t *testing.T) {
	if got := ScopeKey("tn-1", "BR-01", "ABC Co"); got != "tn-1" {
		t.Fatalf("resolved tenant scope = %q, want tn-1", got)
	}
	if got := ScopeKey("", "BR-01", "ABC Co"); got != "br-01|abc co" {
		t.Fatalf("unlinked scope = %q, want br-01|abc co", got)
	}
	// Alias whitespace folds so retyped company names share a scope.
	if ScopeKey("", "", "ABC   Co") != ScopeKey("", "", " abc co ") {
		t.Fatal("whitespace variants of the same alias must share a scope")
	}
	if ScopeKey("", "BR-01", "") == ScopeKey("", "BR-02", "") {
		t.Fatal("different alias ids must not share a scope")
	}
}

func batchRow(dateStr, product, qty, aliasID string) NormalizedRow {
	d := decimal.RequireFromString(qty)
	r := NormalizedRow{
		DateStr:      dateStr,
		TxType:       TxBuy,
		Product:      product,
		QuantityTons: d,
		AliasID:      aliasID,
	}
	r.ContentHash = contenthash.RowKey{
		DateStr:      r.DateStr,
		TxType:       r.TxType,
		Product:      r.Product,
		QuantityTons: r.QuantityTons,
		AliasID:      r.AliasID,
	}.Digest()
	return r
}

func TestPrepareBatchDedup(t *testing.T) {
	rows := []NormalizedRow{
		batchRow("2025-03-15", "หิน", "5", "BR-01"),
		batchRow("2025-03-15", "หิน", "5", "BR-01"),
		batchRow("2025-03-16", "ทราย", "10", "BR-01"),
	}
	pending, scopes, res := prepareBatch(nil, rows)
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2 (exact duplicate collapsed)", len(pending))
	}
	if res.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", res.Skipped)
	}
	if res.MinDate != "2025-03-15" || res.MaxDate != "2025-03-16" {
		t.Fatalf("date range = %s..%s", res.MinDate, res.MaxDate)
	}
	if len(scopes) != 1 || !scopes["br-01|"] {
		t.Fatalf("scopes = %v, want the single folded alias scope", scopes)
	}
}

func TestPrepareBatchSameHashDifferentScope(t *testing.T) {
	// The same weighing at two branches is two transactions, not a duplicate.
	rows := []NormalizedRow{
		batchRow("2025-03-15", "หิน", "5", "BR-01"),
		batchRow("2025-03-15", "หิน", "5", "BR-02"),
	}
	pending, scopes, res := prepareBatch(nil, rows)
	if len(pending) != 2 || res.Skipped != 0 {
		t.Fatalf("pending=%d skipped=%d, want both rows kept", len(pending), res.Skipped)
	}
	if len(scopes) != 2 {
		t.Fatalf("scopes = %v, want one per branch", scopes)
	}
}

func TestPrepareBatchTenantResolution(t *testing.T) {
	tenants := []tenant.Tenant{
		{ID: "tn-1", DisplayName: "ABC Co", AliasIDs: []string{"BR-01"}},
	}
	rows := []NormalizedRow{
		batchRow("2025-03-15", "หิน", "5", "BR-01"),
		batchRow("2025-03-15", "ทราย", "7", "XX-99"),
	}
	pending, scopes, _ := prepareBatch(tenants, rows)
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if !pending[0].TenantID.Valid || pending[0].TenantID.String != "tn-1" {
		t.Fatalf("row 0 tenant = %+v, want tn-1", pending[0].TenantID)
	}
	if pending[0].Scope != "tn-1" {
		t.Fatalf("row 0 scope = %q, want tenant id", pending[0].Scope)
	}
	// The unknown alias imports unlinked under its folded alias scope.
	if pending[1].TenantID.Valid {
		t.Fatalf("row 1 tenant = %+v, want unresolved", pending[1].TenantID)
	}
	if pending[1].Scope != "xx-99|" || !scopes["xx-99|"] {
		t.Fatalf("row 1 scope = %q", pending[1].Scope)
	}
}

func TestPrepareBatchEmpty(t *testing.T) {
	pending, scopes, res := prepareBatch(nil, nil)
	if len(pending) != 0 || len(scopes) != 0 || res.Skipped != 0 || res.MinDate != "" {
		t.Fatalf("empty batch produced %d pending, %v scopes, %+v", len(pending), scopes, res)
	}
}
