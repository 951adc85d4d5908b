package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"WeighBridgeSaas/internal/contenthash"
	"WeighBridgeSaas/internal/logger"
)

// ParsedWorkbook is the outcome of running one uploaded file through the
// loader, header resolver and row normalizer.
type ParsedWorkbook struct {
	Rows       []NormalizedRow
	MixEntries []MixEntry
	SheetName  string
	RawRows    [][]string
}

// ParseWorkbookBytes runs the parse pipeline over a spreadsheet byte buffer.
// A workbook with no qualifying transaction sheet parses to zero rows; that
// is an expected condition for malformed uploads, not an error. Only a
// buffer that is not a spreadsheet at all errors.
func ParseWorkbookBytes(data []byte) (ParsedWorkbook, error) {
	var parsed ParsedWorkbook

	wb, err := LoadWorkbook(data)
	if err != nil {
		return parsed, err
	}

	txSheet := wb.PickTransactionSheet()
	if txSheet == nil {
		return parsed, nil
	}

	var mixRef *MixReference
	if mixSheet := wb.PickMixSheet(txSheet); mixSheet != nil {
		// A reference sheet that fails header resolution contributes
		// nothing; the transaction sheet still imports on its own.
		if mixTable, ok := ResolveReferenceSheet(mixSheet.Name, mixSheet.Rows); ok {
			mixRef = BuildMixReference(mixTable)
		}
	}
	if mixRef == nil {
		mixRef = BuildMixReference(nil)
	}

	table, ok := ResolveSheet(txSheet.Name, txSheet.Rows)
	if !ok {
		return parsed, nil
	}

	parsed.Rows = NormalizeRows(table, mixRef)
	parsed.MixEntries = mixRef.Entries
	parsed.SheetName = txSheet.Name
	parsed.RawRows = txSheet.Rows
	return parsed, nil
}

// ImportWorkbook is the import entry point: parse, dedup and persist one
// workbook buffer. A re-uploaded file (same hash) is parsed but not
// re-persisted; every row counts as skipped.
func ImportWorkbook(ctx context.Context, db *sql.DB, pool *pgxpool.Pool, data []byte, filename string, clearFirst bool) (ImportResult, error) {
	var res ImportResult

	fileHash := contenthash.FileDigest(data)
	var alreadyUploaded bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM weigh_uploads WHERE file_hash = $1)`, fileHash,
	).Scan(&alreadyUploaded)
	if err != nil {
		return res, fmt.Errorf("failed to check file hash: %w", err)
	}

	parsed, err := ParseWorkbookBytes(data)
	if err != nil {
		return res, err
	}

	if alreadyUploaded {
		res.Skipped = len(parsed.Rows)
		log.Printf("[UPLOAD] duplicate file %s (hash %s), skipped %d rows", filename, fileHash, res.Skipped)
		return res, nil
	}

	engine := NewEngine(db, pool)
	batchID := uuid.New().String()
	engine.StageRawRows(ctx, batchID, parsed.SheetName, parsed.RawRows)

	if err := engine.ImportMixEntries(ctx, parsed.MixEntries); err != nil {
		return res, err
	}

	res, err = engine.Import(ctx, parsed.Rows, clearFirst)
	if err != nil {
		return res, err
	}

	if isS3Enabled() {
		key := buildArchiveKey(fileHash, filename)
		if loc, aerr := archiveWorkbook(ctx, key, data); aerr != nil {
			log.Printf("[UPLOAD] archive failed for %s: %v", filename, aerr)
		} else {
			log.Printf("[UPLOAD] archived %s to %s", filename, loc)
		}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO weigh_uploads (file_hash, upload_batch_id, filename, inserted, skipped, min_date, max_date)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
		ON CONFLICT (file_hash) DO NOTHING
	`, fileHash, batchID, filename, res.Inserted, res.Skipped, res.MinDate, res.MaxDate)
	if err != nil {
		return res, fmt.Errorf("failed to record upload: %w", err)
	}

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf(
			"[UPLOAD] file=%s batch=%s inserted=%d skipped=%d", filename, batchID, res.Inserted, res.Skipped))
	}
	return res, nil
}

// UploadWorkbookHandler accepts a multipart workbook upload. Form fields:
// file (one or more spreadsheets) and clear_existing (optional, "true"
// deletes the affected tenant scopes' rows in the file's date range first).
func UploadWorkbookHandler(db *sql.DB, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
			return
		}
		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			http.Error(w, "No files uploaded", http.StatusBadRequest)
			return
		}
		clearFirst := r.FormValue("clear_existing") == "true"

		total := ImportResult{}
		for _, fh := range files {
			file, err := fh.Open()
			if err != nil {
				http.Error(w, "Failed to open file: "+fh.Filename, http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				http.Error(w, "Failed to read file: "+fh.Filename, http.StatusBadRequest)
				return
			}

			res, err := ImportWorkbook(ctx, db, pool, data, fh.Filename, clearFirst)
			if err != nil {
				http.Error(w, "Import failed for "+fh.Filename+": "+err.Error(), http.StatusInternalServerError)
				return
			}
			total.Inserted += res.Inserted
			total.Skipped += res.Skipped
			if total.MinDate == "" || (res.MinDate != "" && res.MinDate < total.MinDate) {
				total.MinDate = res.MinDate
			}
			if res.MaxDate > total.MaxDate {
				total.MaxDate = res.MaxDate
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"inserted": total.Inserted,
			"skipped":  total.Skipped,
			"date_range": map[string]string{
				"min": total.MinDate,
				"max": total.MaxDate,
			},
		})
	}
}
