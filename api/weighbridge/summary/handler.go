package summary

import (
	"database/sql"
	"encoding/json"
	"net/http"
)

// DailySummaryHandler serves GET /weigh/summary?tenant_id=...&date=...
// The date accepts any calendar form the normalizer understands, Buddhist
// era included.
func DailySummaryHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.URL.Query().Get("tenant_id")
		date := r.URL.Query().Get("date")
		if tenantID == "" || date == "" {
			http.Error(w, "tenant_id and date required", http.StatusBadRequest)
			return
		}

		s, err := Summarize(r.Context(), db, tenantID, date)
		w.Header().Set("Content-Type", "application/json")
		if err == ErrTenantNotFound {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "tenant not found"})
			return
		}
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "summary": s})
	}
}
