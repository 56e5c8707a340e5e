// Package mysql stores analysis runs and their ranked hotels in MySQL.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"hotel_value/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// maxBatch keeps each multi-row insert well below the placeholder limit.
const maxBatch = 500

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open connects with pool limits suitable for the API and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// SaveRun writes the run and its ranked hotels in one transaction. ranked must be in rank order
// and every hotel must carry a value ratio.
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
		run.ID, run.CreatedAt.UTC(), run.Source,
		run.Total, run.Duplicates, run.Eligible, run.Excluded, run.TopN,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for start := 0; start < len(ranked); start += maxBatch {
		end := min(start+maxBatch, len(ranked))
		var sb strings.Builder
		sb.WriteString(insertRankedPrefix)
		args := make([]any, 0, (end-start)*10)
		for i := start; i < end; i++ {
			h := ranked[i]
			if h.ValueRatio == nil {
				return fmt.Errorf("hotel %q at rank %d has no value ratio", h.ID, i+1)
			}
			doc, merr := h.MarshalJSON()
			if merr != nil {
				return fmt.Errorf("marshal hotel %q: %w", h.ID, merr)
			}
			if i > start {
				sb.WriteString(", ")
			}
			sb.WriteString(rankedPlaceholders)
			args = append(args,
				run.ID, i+1, h.ID,
				valStr(h.Name), valInt(h.StarRating), valStr(h.Location),
				valF64(h.NumericPrice), valF64(h.NumericReviewScore), *h.ValueRatio,
				string(doc),
			)
		}
		if _, err = tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("insert ranked hotels: %w", err)
		}
	}
	return tx.Commit()
}

func (r *Repo) LatestRun(ctx context.Context) (domain.Run, error) {
	var run domain.Run
	err := r.db.QueryRowContext(ctx, latestRunSQL).Scan(
		&run.ID, &run.CreatedAt, &run.Source,
		&run.Total, &run.Duplicates, &run.Eligible, &run.Excluded, &run.TopN,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Run{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Run{}, err
	}
	run.CreatedAt = run.CreatedAt.UTC()
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
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var h domain.NormalizedHotel
		if err := h.UnmarshalJSON(doc); err != nil {
			return nil, fmt.Errorf("decode ranked hotel: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
