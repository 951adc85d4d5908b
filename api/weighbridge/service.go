package weighbridge

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"WeighBridgeSaas/api/weighbridge/ingest"
	"WeighBridgeSaas/api/weighbridge/summary"
	"WeighBridgeSaas/internal/serviceiface"
)

type WeighbridgeService struct {
	config map[string]interface{}
	db     *sql.DB
	pool   *pgxpool.Pool
}

func NewWeighbridgeService(cfg map[string]interface{}, db *sql.DB, pool *pgxpool.Pool) serviceiface.Service {
	return &WeighbridgeService{config: cfg, db: db, pool: pool}
}

func (s *WeighbridgeService) Name() string {
	return "weighbridge"
}

func (s *WeighbridgeService) Start() error {
	if err := EnsureSchema(context.Background(), s.db); err != nil {
		return err
	}
	go StartWeighbridgeService(s.db, s.pool)
	return nil
}

func (s *WeighbridgeService) Stop() error {
	return nil
}

func StartWeighbridgeService(db *sql.DB, pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.HandleFunc("/weigh/upload", ingest.UploadWorkbookHandler(db, pool))
	mux.HandleFunc("/weigh/summary", summary.DailySummaryHandler(db))
	mux.HandleFunc("/weigh/transactions", GetTransactionsHandler(db))
	log.Println("Weighbridge Service started on :6143")
	if err := http.ListenAndServe(":6143", mux); err != nil {
		log.Fatalf("Weighbridge Service failed: %v", err)
	}
}
