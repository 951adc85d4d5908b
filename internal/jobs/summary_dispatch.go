package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"WeighBridgeSaas/api/constants"
	"WeighBridgeSaas/api/tenant"
	"WeighBridgeSaas/api/weighbridge/summary"
	"WeighBridgeSaas/internal/config"
	"WeighBridgeSaas/internal/logger"
)

// DispatchDailySummaries computes and dispatches yesterday's summary for
// every active tenant that has not been dispatched for that date yet. The
// guard is the persisted last_run_date in summary_dispatch_log, so restarts
// and multiple instances never double-send; an in-process flag would not
// survive either.
func DispatchDailySummaries(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	loc, err := time.LoadLocation(config.DefaultTimeZone)
	if err != nil {
		loc = time.UTC
	}
	target := time.Now().In(loc).AddDate(0, 0, -config.SummaryDispatchLag).Format(constants.DateFormat)

	tenants, err := tenant.GetTenants(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to load tenants: %w", err)
	}

	dispatched := 0
	for _, t := range tenants {
		if !t.Active {
			continue
		}
		done, err := alreadyDispatched(ctx, db, t.ID, target)
		if err != nil {
			log.Printf("[CRON] dispatch-log check failed for tenant %s: %v", t.ID, err)
			continue
		}
		if done {
			continue
		}

		s, err := summary.Summarize(ctx, db, t.ID, target)
		if err != nil {
			log.Printf("[CRON] summarize failed for tenant %s date %s: %v", t.ID, target, err)
			continue
		}
		if err := dispatchSummary(t, s); err != nil {
			log.Printf("[CRON] dispatch failed for tenant %s: %v", t.ID, err)
			continue
		}
		if err := markDispatched(ctx, db, t.ID, target); err != nil {
			log.Printf("[CRON] failed to record dispatch for tenant %s: %v", t.ID, err)
			continue
		}
		dispatched++
	}

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("[CRON] daily summaries dispatched date=%s tenants=%d", target, dispatched))
	}
	return nil
}

func alreadyDispatched(ctx context.Context, db *sql.DB, tenantID, date string) (bool, error) {
	var last sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT last_run_date FROM summary_dispatch_log WHERE tenant_id = $1`, tenantID,
	).Scan(&last)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return last.Valid && last.String >= date, nil
}

func markDispatched(ctx context.Context, db *sql.DB, tenantID, date string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO summary_dispatch_log (tenant_id, last_run_date, dispatched_at)
		VALUES ($1, $2, now())
		ON CONFLICT (tenant_id) DO UPDATE SET last_run_date = EXCLUDED.last_run_date, dispatched_at = now()
	`, tenantID, date)
	return err
}

// dispatchSummary hands the rollup to the messaging side. Rendering and
// delivery live outside this service; here the payload goes to the audit log
// so operators can replay a day when the downstream channel was unavailable.
func dispatchSummary(t tenant.Tenant, s summary.DailySummary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("[SUMMARY] tenant=%s %s", t.ID, payload))
	} else {
		log.Printf("[SUMMARY] tenant=%s %s", t.ID, payload)
	}
	return nil
}
