// Package sqlite is the single-file run store used for local runs.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"hotel_value/internal/domain"
)

//go:embed schema.sql
var schema string

// created_at is stored as text; this layout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	insertRunSQL = `INSERT INTO runs (id, created_at, source, total, duplicates, eligible, excluded, top_n)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	insertRankedSQL = `INSERT INTO ranked_hotels
  (run_id, rank_pos, hotel_id, name, star_rating, location, numeric_price, review_score, value_ratio, doc)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	latestRunSQL = `SELECT id, created_at, source, total, duplicates, eligible, excluded, top_n
FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`

	listRankedSQL = `SELECT doc FROM ranked_hotels WHERE run_id = ? ORDER BY rank_pos LIMIT ?`
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open opens (creating if needed) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer; in-memory databases also vanish with their connection
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func nullStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// SaveRun writes the run and its ranked hotels in one transaction.
func (r *Repo) SaveRun(ctx context.Context, run domain.Run, ranked []domain.NormalizedHotel) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, insertRunSQL,
		run.ID, run.CreatedAt.UTC().Format(timeLayout), run.Source,
		run.Total, run.Duplicates, run.Eligible, run.Excluded, run.TopN,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRankedSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, h := range ranked {
		if h.ValueRatio == nil {
			return fmt.Errorf("hotel %q at rank %d has no value ratio", h.ID, i+1)
		}
		doc, merr := h.MarshalJSON()
		if merr != nil {
			return fmt.Errorf("marshal hotel %q: %w", h.ID, merr)
		}
		if _, err = stmt.ExecContext(ctx,
			run.ID, i+1, h.ID,
			nullStr(h.Name), nullInt(h.StarRating), nullStr(h.Location),
			nullF64(h.NumericPrice), nullF64(h.NumericReviewScore), *h.ValueRatio,
			string(doc),
		); err != nil {
			return fmt.Errorf("insert ranked hotel %q: %w", h.ID, err)
		}
	}
	return tx.Commit()
}

func (r *Repo) LatestRun(ctx context.Context) (domain.Run, error) {
	var (
		run     domain.Run
		created string
	)
	err := r.db.QueryRowContext(ctx, latestRunSQL).Scan(
		&run.ID, &created, &run.Source,
		&run.Total, &run.Duplicates, &run.Eligible, &run.Excluded, &run.TopN,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Run{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Run{}, err
	}
	run.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return domain.Run{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	return run, nil
}

// ListRanked returns up to limit hotels of a run in rank order.
func (r *Repo) ListRanked(ctx context.Context, runID string, limit int) ([]domain.NormalizedHotel, error) {
	out := []domain.NormalizedHotel{}
	if limit <= 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, listRankedSQL, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var h domain.NormalizedHotel
		if err := h.UnmarshalJSON([]byte(doc)); err != nil {
			return nil, fmt.Errorf("decode ranked hotel: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
