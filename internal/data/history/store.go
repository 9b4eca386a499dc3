package history

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ifacescan/internal/core/errors"
	"ifacescan/internal/shared/observability"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName         = "sqlite"
	maxAttempts        = 5
	defaultBusyTimeout = 2 * time.Second
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// Open creates (if needed) and migrates the sqlite database at path.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New(errors.CodeValidationError, "history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("history path %q is a directory, expected file", cleanPath))
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.IOFailure(fmt.Errorf("create history directory: %w", err), dir)
		}
	}
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds(),
	)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveScan stores the run and its matches in one transaction and returns the
// run ID. A fresh UUID is assigned when rec.ID is empty.
func (s *Store) SaveScan(ctx context.Context, rec ScanRecord, matches []MatchRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(rec.Interface) == "" || strings.TrimSpace(rec.Library) == "" {
		return "", errors.New(errors.CodeValidationError, "scan record needs interface and library names")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}
	if rec.Kind == "" {
		rec.Kind = "auto"
	}
	rec.MatchCount = len(matches)

	err := s.withRetry("save scan", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO scans (
  id, interface_name, library_name, target_kind, root_path, started_at_utc,
  duration_ms, files_scanned, match_count, parse_failure_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID,
			rec.Interface,
			rec.Library,
			rec.Kind,
			rec.Root,
			rec.StartedAt.UTC().Format(time.RFC3339Nano),
			rec.Duration.Milliseconds(),
			rec.FilesScanned,
			rec.MatchCount,
			rec.ParseFailureCount,
		); err != nil {
			_ = tx.Rollback()
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO matches (scan_id, ordinal, file_path, line, kind, source_text)
VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		defer stmt.Close()

		for i, m := range matches {
			if _, err := stmt.ExecContext(ctx, rec.ID, i, m.Path, m.Line, m.Kind, m.SourceText); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		observability.HistoryWritesTotal.WithLabelValues("error").Inc()
		return "", err
	}
	observability.HistoryWritesTotal.WithLabelValues("ok").Inc()
	return rec.ID, nil
}

const selectScans = `
SELECT
  id, interface_name, library_name, target_kind, root_path, started_at_utc,
  duration_ms, files_scanned, match_count, parse_failure_count
FROM scans`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecordRow(row rowScanner) (ScanRecord, error) {
	var (
		rec        ScanRecord
		startedRaw string
		durationMS int64
	)
	if err := row.Scan(
		&rec.ID,
		&rec.Interface,
		&rec.Library,
		&rec.Kind,
		&rec.Root,
		&startedRaw,
		&durationMS,
		&rec.FilesScanned,
		&rec.MatchCount,
		&rec.ParseFailureCount,
	); err != nil {
		return ScanRecord{}, err
	}
	started, err := time.Parse(time.RFC3339Nano, startedRaw)
	if err != nil {
		return ScanRecord{}, fmt.Errorf("parse scan timestamp %q: %w", startedRaw, err)
	}
	rec.StartedAt = started.UTC()
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	return rec, nil
}

// GetScan returns one recorded run by ID.
func (s *Store) GetScan(ctx context.Context, scanID string) (ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec ScanRecord
	err := s.withRetry("get scan", func() error {
		var qErr error
		rec, qErr = scanRecordRow(s.db.QueryRowContext(ctx, selectScans+"\nWHERE id = ?", scanID))
		return qErr
	})
	if stderrors.Is(err, sql.ErrNoRows) {
		return ScanRecord{}, errors.AddContext(
			errors.New(errors.CodeNotFound, fmt.Sprintf("scan %q not found", scanID)),
			errors.CtxOperation, "history.GetScan",
		)
	}
	if err != nil {
		return ScanRecord{}, err
	}
	return rec, nil
}

// ListScans returns recorded runs, newest first.
func (s *Store) ListScans(ctx context.Context, filter ScanFilter) ([]ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := selectScans + `
WHERE 1 = 1`
	args := make([]any, 0, 3)
	if lib := strings.TrimSpace(filter.Library); lib != "" {
		query += " AND library_name = ?"
		args = append(args, lib)
	}
	if iface := strings.TrimSpace(filter.Interface); iface != "" {
		query += " AND interface_name = ?"
		args = append(args, iface)
	}
	query += " ORDER BY started_at_utc DESC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var rows *sql.Rows
	err := s.withRetry("list scans", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]ScanRecord, 0)
	for rows.Next() {
		rec, err := scanRecordRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan rows: %w", err)
	}
	return records, nil
}

// LoadMatches returns the stored matches of a run in report order.
func (s *Store) LoadMatches(ctx context.Context, scanID string) ([]MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.withRetry("lookup scan", func() error {
		return s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM scans WHERE id = ?`, scanID).Scan(&exists)
	})
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotFound, fmt.Sprintf("scan %q not found", scanID)),
			errors.CtxOperation, "history.LoadMatches",
		)
	}

	var rows *sql.Rows
	err = s.withRetry("load matches", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT ordinal, file_path, line, kind, source_text
FROM matches
WHERE scan_id = ?
ORDER BY ordinal ASC`, scanID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]MatchRecord, 0)
	for rows.Next() {
		var m MatchRecord
		if err := rows.Scan(&m.Ordinal, &m.Path, &m.Line, &m.Kind, &m.SourceText); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match rows: %w", err)
	}
	return matches, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
