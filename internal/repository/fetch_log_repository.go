package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/godilite/mgnrega-dashboard/internal/repository/models"
)

const fetchLogSchema = `
	CREATE TABLE IF NOT EXISTS fetch_log (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		district     TEXT    NOT NULL,
		outcome      TEXT    NOT NULL,
		status_code  INTEGER NOT NULL DEFAULT 0,
		record_count INTEGER NOT NULL DEFAULT 0,
		duration_ms  INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT    NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fetch_log_district ON fetch_log (district);
`

type FetchLogRepository struct {
	db *sql.DB
}

func NewFetchLogRepository(db *sql.DB) *FetchLogRepository {
	return &FetchLogRepository{db: db}
}

// EnsureSchema creates the fetch_log table when it does not exist.
func (r *FetchLogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, fetchLogSchema); err != nil {
		return fmt.Errorf("create fetch_log schema: %w", err)
	}
	return nil
}

// Record appends an entry and returns its id.
func (r *FetchLogRepository) Record(ctx context.Context, entry models.FetchLogEntry) (int64, error) {
	const query = `
		INSERT INTO fetch_log (district, outcome, status_code, record_count, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx, query,
		entry.District,
		entry.Outcome,
		entry.StatusCode,
		entry.RecordCount,
		entry.DurationMs,
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert fetch_log: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetch_log last insert id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first.
func (r *FetchLogRepository) Recent(ctx context.Context, limit int) ([]models.FetchLogEntry, error) {
	const query = `
		SELECT id, district, outcome, status_code, record_count, duration_ms, created_at
		FROM fetch_log
		ORDER BY id DESC
		LIMIT ?
	`

	if limit <= 0 {
		return []models.FetchLogEntry{}, nil
	}

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query Recent: %w", err)
	}
	defer rows.Close()

	results := make([]models.FetchLogEntry, 0, limit)
	for rows.Next() {
		var (
			e         models.FetchLogEntry
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.District, &e.Outcome, &e.StatusCode, &e.RecordCount, &e.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan Recent row: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		results = append(results, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate Recent: %w", err)
	}
	return results, nil
}
