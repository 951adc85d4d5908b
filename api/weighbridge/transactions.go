package weighbridge

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// TransactionRecord is the storage-layer shape of a persisted weigh
// transaction as served to admin screens.
type TransactionRecord struct {
	ID            int64     `json:"id"`
	TenantID      *string   `json:"tenant_id"`
	DateStr       string    `json:"date_str"`
	TxType        string    `json:"tx_type"`
	Product       string    `json:"product"`
	ProductDetail string    `json:"product_detail"`
	QuantityTons  float64   `json:"quantity_tons"`
	Unit          string    `json:"unit"`
	MixName       string    `json:"mix_name"`
	ProjectCode   string    `json:"project_code"`
	ProjectName   string    `json:"project_name"`
	Customer      string    `json:"customer"`
	Note          string    `json:"note"`
	AliasID       string    `json:"alias_id"`
	AliasName     string    `json:"alias_name"`
	WeighNumber   string    `json:"weigh_number"`
	Direction     string    `json:"direction"`
	ContentHash   string    `json:"content_hash"`
	CreatedAt     time.Time `json:"created_at"`
}

// GetTransactionsHandler lists persisted transactions, optionally filtered
// by tenant_id and/or date (canonical YYYY-MM-DD).
func GetTransactionsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.URL.Query().Get("tenant_id")
		date := r.URL.Query().Get("date")

		query := `
			SELECT id, tenant_id, date_str, tx_type, product, product_detail,
			       quantity_tons, unit, mix_name, project_code, project_name, customer, note,
			       alias_id, alias_name, weigh_number, direction, content_hash, created_at
			FROM weigh_transactions
			WHERE ($1 = '' OR tenant_id = $1)
			  AND ($2 = '' OR date_str = $2)
			ORDER BY date_str DESC, id DESC
			LIMIT 5000
		`
		rows, err := db.QueryContext(r.Context(), query, tenantID, date)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": err.Error()})
			return
		}
		defer rows.Close()

		results := make([]TransactionRecord, 0)
		for rows.Next() {
			var rec TransactionRecord
			if err := rows.Scan(
				&rec.ID, &rec.TenantID, &rec.DateStr, &rec.TxType, &rec.Product, &rec.ProductDetail,
				&rec.QuantityTons, &rec.Unit, &rec.MixName, &rec.ProjectCode, &rec.ProjectName, &rec.Customer, &rec.Note,
				&rec.AliasID, &rec.AliasName, &rec.WeighNumber, &rec.Direction, &rec.ContentHash, &rec.CreatedAt,
			); err != nil {
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": err.Error()})
				return
			}
			results = append(results, rec)
		}
		if rows.Err() != nil {
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": rows.Err().Error()})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": results})
	}
}
