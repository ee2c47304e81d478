// Package sqlite provides a SQLite-backed party audit store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quillback/liftline/internal/platform/storage/sqlitemigrate"
	"github.com/quillback/liftline/internal/services/party/storage"
	"github.com/quillback/liftline/internal/services/party/storage/sqlite/migrations"
)

// Store persists audit records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite audit store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendAuditRecord inserts one audit record.
func (s *Store) AppendAuditRecord(ctx context.Context, rec storage.AuditRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(rec.Event) == "" {
		return fmt.Errorf("event name is required")
	}
	if strings.TrimSpace(rec.Severity) == "" {
		return fmt.Errorf("severity is required")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO audit_records (ts, severity, event, participant_id, detail)
		 VALUES (?, ?, ?, ?, ?)`,
		toMillis(rec.Timestamp),
		rec.Severity,
		rec.Event,
		toNullString(rec.ParticipantID),
		toNullString(rec.Detail),
	)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// ListAuditRecords returns the most recent audit records, newest first.
func (s *Store) ListAuditRecords(ctx context.Context, limit int) ([]storage.AuditRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, ts, severity, event, participant_id, detail
		 FROM audit_records
		 ORDER BY ts DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var records []storage.AuditRecord
	for rows.Next() {
		var (
			rec           storage.AuditRecord
			ts            int64
			participantID sql.NullString
			detail        sql.NullString
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Severity, &rec.Event, &participantID, &detail); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Timestamp = fromMillis(ts)
		rec.ParticipantID = participantID.String
		rec.Detail = detail.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}

func toNullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
