package jobs

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"WeighBridgeSaas/internal/config"
	"WeighBridgeSaas/internal/logger"
	"WeighBridgeSaas/internal/serviceiface"
)

type CronService struct {
	config map[string]interface{}
	db     *sql.DB
	cron   *cron.Cron
}

func NewCronService(cfg map[string]interface{}, db *sql.DB) serviceiface.Service {
	return &CronService{config: cfg, db: db}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	schedule := config.DefaultSummarySchedule
	if s.config != nil {
		if v, ok := s.config["summary_schedule"].(string); ok && v != "" {
			schedule = v
		}
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, func() {
		if err := DispatchDailySummaries(s.db); err != nil {
			log.Printf("[CRON] summary dispatch failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule summary dispatch: %v", err)
	}
	s.cron.Start()

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Cron service started, summary dispatch scheduled " + schedule)
	}
	log.Println("Cron service started, summary dispatch scheduled", schedule)
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Println("Cron service stopped.")
	return nil
}
