package tenant

import (
	"database/sql"
	"log"
	"net/http"

	"WeighBridgeSaas/internal/serviceiface"
)

type TenantService struct {
	config map[string]interface{}
	db     *sql.DB
}

func NewTenantService(cfg map[string]interface{}, db *sql.DB) serviceiface.Service {
	return &TenantService{config: cfg, db: db}
}

func (s *TenantService) Name() string {
	return "tenant"
}

func (s *TenantService) Start() error {
	go StartTenantService(s.db)
	return nil
}

func (s *TenantService) Stop() error {
	return nil
}

func StartTenantService(db *sql.DB) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tenant/all", GetTenantsHandler(db))
	mux.HandleFunc("/tenant/get", GetTenantHandler(db))
	log.Println("Tenant Service started on :7143")
	if err := http.ListenAndServe(":7143", mux); err != nil {
		log.Fatalf("Tenant Service failed: %v", err)
	}
}
