// Package history persists analysis runs in SQLite so readability trends
// can be tracked per document across commits.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/docqa/internal/models"
)

// DefaultDBPath is the history database used when --history is given
// without a path.
const DefaultDBPath = ".docqa/history.db"

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded analysis run.
type Run struct {
	ID         string
	RecordedAt time.Time
	Status     string
	Incomplete bool
	Summary    models.Summary
}

// DocumentRecord is one document's outcome within a run.
type DocumentRecord struct {
	RunID            string
	RecordedAt       time.Time
	Path             string
	Status           string
	Grade            models.Score
	ARI              models.Score
	FleschEase       models.Score
	GunningFog       models.Score
	Words            int
	Lines            int
	HeuristicVersion int
	MatchedPattern   string
}

// Store manages the SQLite history database.
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// NewStore opens or creates the database at dbPath and applies pending
// migrations. ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}

	// busy_timeout must come first so the rest wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath, now: time.Now}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores a report and returns the new run's ID.
func (s *Store) RecordRun(ctx context.Context, report *models.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report cannot be nil")
	}

	runID := uuid.NewString()
	recordedAt := s.now().UTC().Format(timeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	sum := report.Summary
	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, recorded_at, status, incomplete, total, passed, warned, failed, errored, words, lines)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, recordedAt, report.Status, report.Incomplete,
		sum.Total, sum.Passed, sum.Warned, sum.Failed, sum.Errored, sum.Words, sum.Lines)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO document_results
		(run_id, path, status, fk_grade, ari, flesch_ease, gunning_fog, words, lines, heuristic_version, matched_pattern)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare document insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range report.Results {
		m := res.Readability
		_, err := stmt.ExecContext(ctx,
			runID, res.Path, res.Status,
			nullScore(m.FleschKincaidGrade), nullScore(m.ARI), nullScore(m.FleschReadingEase), nullScore(m.GunningFog),
			m.Words, res.Composition.TotalLines, m.HeuristicVersion, res.MatchedPattern)
		if err != nil {
			return "", fmt.Errorf("insert result for %s: %w", res.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// Runs returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, recorded_at, status, incomplete, total, passed, warned, failed, errored, words, lines
		FROM runs ORDER BY recorded_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var recordedAt string
		if err := rows.Scan(&r.ID, &recordedAt, &r.Status, &r.Incomplete,
			&r.Summary.Total, &r.Summary.Passed, &r.Summary.Warned, &r.Summary.Failed, &r.Summary.Errored,
			&r.Summary.Words, &r.Summary.Lines); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", recordedAt, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Trend returns up to limit recorded outcomes for path, newest first.
// A non-positive limit returns the full history.
func (s *Store) Trend(ctx context.Context, path string, limit int) ([]DocumentRecord, error) {
	query := `SELECT d.run_id, r.recorded_at, d.path, d.status,
			d.fk_grade, d.ari, d.flesch_ease, d.gunning_fog,
			d.words, d.lines, d.heuristic_version, d.matched_pattern
		FROM document_results d
		JOIN runs r ON r.id = d.run_id
		WHERE d.path = ?
		ORDER BY r.recorded_at DESC, d.id DESC`
	args := []interface{}{path}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trend: %w", err)
	}
	defer rows.Close()

	var records []DocumentRecord
	for rows.Next() {
		var rec DocumentRecord
		var recordedAt string
		var grade, ari, ease, fog sql.NullFloat64
		if err := rows.Scan(&rec.RunID, &recordedAt, &rec.Path, &rec.Status,
			&grade, &ari, &ease, &fog,
			&rec.Words, &rec.Lines, &rec.HeuristicVersion, &rec.MatchedPattern); err != nil {
			return nil, fmt.Errorf("scan trend: %w", err)
		}
		if rec.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", recordedAt, err)
		}
		rec.Grade = scoreFrom(grade)
		rec.ARI = scoreFrom(ari)
		rec.FleschEase = scoreFrom(ease)
		rec.GunningFog = scoreFrom(fog)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend: %w", err)
	}
	return records, nil
}

// Prune deletes all but the newest keep runs together with their document
// rows, returning the number of runs removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be >= 0, got %d", keep)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	const stale = `SELECT id FROM runs WHERE id NOT IN (
		SELECT id FROM runs ORDER BY recorded_at DESC, rowid DESC LIMIT ?)`
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_results WHERE run_id IN (`+stale+`)`, keep); err != nil {
		return 0, fmt.Errorf("prune document results: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+stale+`)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return n, nil
}

func nullScore(s models.Score) sql.NullFloat64 {
	return sql.NullFloat64{Float64: s.Value, Valid: s.Defined}
}

func scoreFrom(v sql.NullFloat64) models.Score {
	if !v.Valid {
		return models.UndefinedScore()
	}
	return models.DefinedScore(v.Float64)
}
