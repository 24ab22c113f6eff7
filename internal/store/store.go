package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/mdtran/internal"
	"github.com/valpere/mdtran/internal/glossary"
)

var ErrRunNotFound = errors.New("run not found")

// Store keeps the run journal and the glossary terms in a SQLite database.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source_file TEXT NOT NULL,
		output_file TEXT NOT NULL,
		service TEXT NOT NULL,
		source_lang TEXT,
		max_words INTEGER NOT NULL,
		total INTEGER NOT NULL,
		translated INTEGER DEFAULT 0,
		skipped TEXT DEFAULT '[]',
		status TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	-- run_fragments holds one row per attempted fragment; it is an audit
	-- trail and is never used to skip work
	CREATE TABLE IF NOT EXISTS run_fragments (
		run_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		words INTEGER NOT NULL,
		status TEXT NOT NULL,
		kind TEXT,
		error TEXT,
		latency_ms INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (run_id, idx),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	-- glossary stores user-defined terminology for consistent translation of specific terms
	CREATE TABLE IF NOT EXISTS glossary (
		id TEXT PRIMARY KEY,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		source_term TEXT NOT NULL,
		target_term TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_lang, target_lang, source_term)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_glossary_lookup ON glossary(source_lang, target_lang);
	`

	_, err := s.db.Exec(schema)
	return err
}

// BeginRun inserts the run row.
func (s *Store) BeginRun(ctx context.Context, run internal.Run) error {
	skipped, err := encodeSkipped(run.Skipped)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source_file, output_file, service, source_lang, max_words, total, translated, skipped, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceFile, run.OutputFile, run.Service, run.SourceLang, run.MaxWords, run.Total, run.Translated, skipped, run.Status, run.StartedAt)
	return err
}

// RecordFragment stores the outcome of one fragment.
func (s *Store) RecordFragment(ctx context.Context, o internal.FragmentOutcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO run_fragments (run_id, idx, words, status, kind, error, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.RunID, o.Index, o.Words, o.Status, o.Kind, o.Error, o.Latency.Milliseconds(), o.CreatedAt)
	return err
}

// EndRun stores the final counters and status of a run.
func (s *Store) EndRun(ctx context.Context, run internal.Run) error {
	skipped, err := encodeSkipped(run.Skipped)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET translated = ?, skipped = ?, status = ?, finished_at = ? WHERE id = ?`,
		run.Translated, skipped, run.Status, run.FinishedAt, run.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}
	return nil
}

const runColumns = `id, source_file, output_file, service, COALESCE(source_lang, ''), max_words, total, translated, skipped, status, started_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (internal.Run, error) {
	var (
		r        internal.Run
		skipped  string
		finished sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.SourceFile, &r.OutputFile, &r.Service, &r.SourceLang, &r.MaxWords,
		&r.Total, &r.Translated, &skipped, &r.Status, &r.StartedAt, &finished); err != nil {
		return r, err
	}
	if finished.Valid {
		r.FinishedAt = finished.Time
	}
	if skipped != "" {
		if err := json.Unmarshal([]byte(skipped), &r.Skipped); err != nil {
			return r, fmt.Errorf("run %s: bad skipped list: %w", r.ID, err)
		}
	}
	return r, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]internal.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []internal.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns a run and its fragment outcomes in index order.
func (s *Store) GetRun(ctx context.Context, id string) (*internal.Run, []internal.FragmentOutcome, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, idx, words, status, COALESCE(kind, ''), COALESCE(error, ''), latency_ms, created_at
		 FROM run_fragments WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var outcomes []internal.FragmentOutcome
	for rows.Next() {
		var (
			o         internal.FragmentOutcome
			latencyMs int64
		)
		if err := rows.Scan(&o.RunID, &o.Index, &o.Words, &o.Status, &o.Kind, &o.Error, &latencyMs, &o.CreatedAt); err != nil {
			return nil, nil, err
		}
		o.Latency = time.Duration(latencyMs) * time.Millisecond
		outcomes = append(outcomes, o)
	}
	return &r, outcomes, rows.Err()
}

// DeleteRunsBefore removes runs started before cutoff together with their
// fragments and reports how many runs were removed.
func (s *Store) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM run_fragments WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, cutoff); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func encodeSkipped(skipped []int) (string, error) {
	if skipped == nil {
		skipped = []int{}
	}
	b, err := json.Marshal(skipped)
	if err != nil {
		return "", fmt.Errorf("failed to encode skipped fragments: %w", err)
	}
	return string(b), nil
}

// GlossaryEntry represents a row in the glossary table.
type GlossaryEntry struct {
	ID         string
	SourceLang string
	TargetLang string
	SourceTerm string
	TargetTerm string
	CreatedAt  time.Time
}

// AddGlossaryTerm inserts or replaces a glossary entry. Terms are compared
// after NFC normalization, so visually identical terms share a row.
func (s *Store) AddGlossaryTerm(ctx context.Context, sourceLang, targetLang, sourceTerm, targetTerm string) error {
	sourceTerm, targetTerm = normalizeText(sourceTerm), normalizeText(targetTerm)
	if sourceTerm == "" || targetTerm == "" {
		return errors.New("glossary terms must not be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO glossary (id, source_lang, target_lang, source_term, target_term)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), sourceLang, targetLang, sourceTerm, targetTerm)
	return err
}

// GetGlossaryTerms returns the terms for a language pair sorted by source
// term, ready to embed in a translation prompt.
func (s *Store) GetGlossaryTerms(ctx context.Context, sourceLang, targetLang string) ([]glossary.Term, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_term, target_term FROM glossary WHERE source_lang = ? AND target_lang = ? ORDER BY source_term`,
		sourceLang, targetLang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []glossary.Term
	for rows.Next() {
		var t glossary.Term
		if err := rows.Scan(&t.Source, &t.Target); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// ListGlossaryTerms returns all glossary entries, optionally filtered by language
// pair (pass empty strings to return everything).
func (s *Store) ListGlossaryTerms(ctx context.Context, sourceLang, targetLang string) ([]GlossaryEntry, error) {
	query := `SELECT id, source_lang, target_lang, source_term, target_term, created_at FROM glossary`
	var args []any

	switch {
	case sourceLang != "" && targetLang != "":
		query += ` WHERE source_lang = ? AND target_lang = ?`
		args = append(args, sourceLang, targetLang)
	case sourceLang != "":
		query += ` WHERE source_lang = ?`
		args = append(args, sourceLang)
	case targetLang != "":
		query += ` WHERE target_lang = ?`
		args = append(args, targetLang)
	}
	query += ` ORDER BY source_lang, target_lang, source_term`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []GlossaryEntry
	for rows.Next() {
		var e GlossaryEntry
		if err := rows.Scan(&e.ID, &e.SourceLang, &e.TargetLang, &e.SourceTerm, &e.TargetTerm, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteGlossaryTerm removes a glossary entry by ID and reports whether it
// existed.
func (s *Store) DeleteGlossaryTerm(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM glossary WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
