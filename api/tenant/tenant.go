package tenant

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/lib/pq"
)

// Tenant is a company that owns weigh transactions. Source exports refer to
// it by any of its alias ids or alias names, which rarely match its display
// name exactly.
type Tenant struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	AliasIDs    []string `json:"alias_ids"`
	AliasNames  []string `json:"alias_names"`
	Active      bool     `json:"active"`
}

// GetTenants loads all tenants with their alias arrays.
func GetTenants(ctx context.Context, db *sql.DB) ([]Tenant, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT tenant_id, display_name, alias_ids, alias_names, active
		FROM tenants
		ORDER BY display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.DisplayName, pq.Array(&t.AliasIDs), pq.Array(&t.AliasNames), &t.Active); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// GetTenant loads one tenant by id; sql.ErrNoRows passes through so callers
// can distinguish "tenant not found" from "no data".
func GetTenant(ctx context.Context, db *sql.DB, id string) (Tenant, error) {
	var t Tenant
	err := db.QueryRowContext(ctx, `
		SELECT tenant_id, display_name, alias_ids, alias_names, active
		FROM tenants
		WHERE tenant_id = $1
	`, id).Scan(&t.ID, &t.DisplayName, pq.Array(&t.AliasIDs), pq.Array(&t.AliasNames), &t.Active)
	return t, err
}

// Exists reports whether a tenant id is known.
func Exists(ctx context.Context, db *sql.DB, id string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tenants WHERE tenant_id = $1)`, id).Scan(&exists)
	return exists, err
}

func foldAlias(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Matches reports whether a source row's alias id or alias name belongs to
// this tenant. Matching is case-insensitive and whitespace-tolerant, and
// falls back to the display name, since exports spell company names every
// way imaginable.
func (t Tenant) Matches(aliasID, aliasName string) bool {
	if aliasID != "" {
		for _, id := range t.AliasIDs {
			if strings.EqualFold(strings.TrimSpace(id), strings.TrimSpace(aliasID)) {
				return true
			}
		}
	}
	if aliasName != "" {
		folded := foldAlias(aliasName)
		for _, name := range t.AliasNames {
			if foldAlias(name) == folded {
				return true
			}
		}
		if foldAlias(t.DisplayName) == folded {
			return true
		}
	}
	return false
}

// Resolve finds the owning tenant for a source row: alias-id match first,
// then alias-name, then display-name. A nil result is not an error; the row
// is imported unlinked and stays queryable by its alias fields.
func Resolve(tenants []Tenant, aliasID, aliasName string) *Tenant {
	for i := range tenants {
		if aliasID != "" && tenants[i].Matches(aliasID, "") {
			return &tenants[i]
		}
	}
	for i := range tenants {
		if aliasName != "" && tenants[i].Matches("", aliasName) {
			return &tenants[i]
		}
	}
	return nil
}

// GetTenantsHandler returns all tenants with their aliases.
func GetTenantsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenants, err := GetTenants(r.Context(), db)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "tenants": tenants})
	}
}

// GetTenantHandler returns a single tenant by tenant_id query param.
func GetTenantHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("tenant_id")
		if id == "" {
			http.Error(w, "tenant_id required", http.StatusBadRequest)
			return
		}
		t, err := GetTenant(r.Context(), db, id)
		w.Header().Set("Content-Type", "application/json")
		if err == sql.ErrNoRows {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "tenant not found"})
			return
		}
		if err != nil {
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "tenant": t})
	}
}
