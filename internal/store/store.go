// Package store persists baked curve samples in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Bake describes one run of sampling a document.
type Bake struct {
	ID        int64
	CreatedAt time.Time
	Source    string
	Clip      string
	From      float64
	To        float64
	Step      float64
	Samples   int
}

// Sample is the value of a named curve at a point in time.
type Sample struct {
	Curve string
	Time  float64
	Value float64
}

// Store wraps SQLite access for baked samples.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bakes (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			source TEXT NOT NULL,
			clip TEXT NOT NULL,
			from_t REAL NOT NULL,
			to_t REAL NOT NULL,
			step REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS samples (
			bake_id INTEGER NOT NULL,
			curve TEXT NOT NULL,
			t REAL NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (bake_id, curve, t)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_samples_curve ON samples(curve);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertBake stores a bake and its samples in one transaction. The returned
// Bake carries the assigned ID.
func (s *Store) InsertBake(ctx context.Context, bake Bake, samples []Sample) (Bake, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Bake{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if bake.CreatedAt.IsZero() {
		bake.CreatedAt = time.Now()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bakes (created_at, source, clip, from_t, to_t, step) VALUES (?, ?, ?, ?, ?, ?)`,
		bake.CreatedAt.UTC().Format(time.RFC3339Nano),
		bake.Source,
		bake.Clip,
		bake.From,
		bake.To,
		bake.Step,
	)
	if err != nil {
		return Bake{}, err
	}
	bake.ID, err = res.LastInsertId()
	if err != nil {
		return Bake{}, err
	}

	if len(samples) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx, `INSERT INTO samples (bake_id, curve, t, value) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return Bake{}, err
		}
		defer func() {
			_ = stmt.Close()
		}()
		for _, sm := range samples {
			if _, err = stmt.ExecContext(ctx, bake.ID, sm.Curve, sm.Time, sm.Value); err != nil {
				return Bake{}, fmt.Errorf("failed to insert sample %s@%g: %w", sm.Curve, sm.Time, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return Bake{}, err
	}
	bake.Samples = len(samples)
	return bake, nil
}

// ListBakes returns all bakes, newest first.
func (s *Store) ListBakes(ctx context.Context) ([]Bake, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT b.id, b.created_at, b.source, b.clip, b.from_t, b.to_t, b.step,
			(SELECT COUNT(*) FROM samples s WHERE s.bake_id = b.id)
		FROM bakes b
		ORDER BY b.id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []Bake
	for rows.Next() {
		var b Bake
		var createdAt string
		if err := rows.Scan(&b.ID, &createdAt, &b.Source, &b.Clip, &b.From, &b.To, &b.Step, &b.Samples); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		b.CreatedAt = parsed
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Samples returns the samples of a bake ordered by curve and time. If curves
// is non-empty, only those curves are returned.
func (s *Store) Samples(ctx context.Context, bakeID int64, curves ...string) ([]Sample, error) {
	clauses := []string{"bake_id = ?"}
	args := []any{bakeID}
	if len(curves) > 0 {
		placeholders := make([]string, len(curves))
		for i, c := range curves {
			placeholders[i] = "?"
			args = append(args, c)
		}
		clauses = append(clauses, fmt.Sprintf("curve IN (%s)", strings.Join(placeholders, ",")))
	}
	query := fmt.Sprintf(`SELECT curve, t, value
		FROM samples
		WHERE %s
		ORDER BY curve ASC, t ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []Sample
	for rows.Next() {
		var sm Sample
		if err := rows.Scan(&sm.Curve, &sm.Time, &sm.Value); err != nil {
			return nil, err
		}
		result = append(result, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
