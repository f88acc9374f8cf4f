// Package results: PostgreSQL Store for persistent run history.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const defaultTableName = "eval_runs"

// PostgresStore implements Store using a PostgreSQL table.
type PostgresStore struct {
	db        *sql.DB
	tableName string
}

// NewPostgresStore creates a store that uses the given *sql.DB (e.g. driver "postgres").
// Table is created if it doesn't exist (id, name, epoch, steps, acc_src2trg, acc_trg2src, score, at).
func NewPostgresStore(db *sql.DB, tableName string) (*PostgresStore, error) {
	if tableName == "" {
		tableName = defaultTableName
	}
	s := &PostgresStore{db: db, tableName: tableName}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS ` + s.tableName + ` (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		epoch INT NOT NULL DEFAULT -1,
		steps INT NOT NULL DEFAULT -1,
		acc_src2trg DOUBLE PRECISION NOT NULL DEFAULT 0,
		acc_trg2src DOUBLE PRECISION NOT NULL DEFAULT 0,
		score DOUBLE PRECISION NOT NULL DEFAULT 0,
		at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_eval_runs_name ON ` + s.tableName + ` (name);
	CREATE INDEX IF NOT EXISTS idx_eval_runs_at ON ` + s.tableName + ` (at);`
	_, err := s.db.ExecContext(ctx, q)
	return err
}

// Record implements Store.
func (s *PostgresStore) Record(ctx context.Context, r Run) error {
	if r.At.IsZero() {
		r.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.tableName+` (name, epoch, steps, acc_src2trg, acc_trg2src, score, at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.Name, r.Epoch, r.Steps, r.AccSrc2Trg, r.AccTrg2Src, r.Score, r.At)
	return err
}

// Query implements Store.
func (s *PostgresStore) Query(ctx context.Context, q Query) ([]Aggregate, error) {
	args := []interface{}{}
	where := "1=1"
	n := 1
	if q.Name != "" {
		args = append(args, q.Name)
		where += fmt.Sprintf(" AND name = $%d", n)
		n++
	}
	if !q.From.IsZero() {
		args = append(args, q.From)
		where += fmt.Sprintf(" AND at >= $%d", n)
		n++
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		where += fmt.Sprintf(" AND at <= $%d", n)
		n++
	}

	groupCol := "'all'"
	switch q.GroupBy {
	case "name":
		groupCol = "name"
	case "day":
		groupCol = "date_trunc('day', at)::date::text"
	case "hour":
		groupCol = "to_char(date_trunc('hour', at), 'YYYY-MM-DD-HH24')"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	limitPlaceholder := fmt.Sprintf("$%d", n)

	query := `SELECT ` + groupCol + ` AS key,
		COUNT(*)::bigint AS runs,
		COALESCE(AVG(score), 0) AS avg_score,
		COALESCE(MAX(score), 0) AS best_score,
		COALESCE(AVG(acc_src2trg), 0) AS avg_src2trg,
		COALESCE(AVG(acc_trg2src), 0) AS avg_trg2src
		FROM ` + s.tableName + `
		WHERE ` + where + `
		GROUP BY ` + groupCol + `
		ORDER BY runs DESC
		LIMIT ` + limitPlaceholder

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Aggregate
	for rows.Next() {
		var a Aggregate
		var k sql.NullString
		if err := rows.Scan(&k, &a.Runs, &a.AvgScore, &a.BestScore, &a.AvgAccSrc2Trg, &a.AvgAccTrg2Src); err != nil {
			return nil, err
		}
		if k.Valid {
			a.Key = k.String
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
