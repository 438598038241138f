// Package store persists disaggregation runs in SQLite so they can be listed
// and re-rendered later without recomputing.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"seisdisagg/pkg/api"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("store: run not found")

// Store is a SQLite-backed run archive.
type Store struct {
	db *sql.DB
}

// RunSummary is one row of ListRuns.
type RunSummary struct {
	ID        int64
	Scenario  string
	IMT       string
	IML       float64
	Status    string
	Cells     int
	CreatedAt time.Time
}

// Open opens (creating if needed) the database at path and applies the
// embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store: database path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun stores doc and its non-zero cells in one transaction and returns
// the new run id. PMFs are not stored; they derive from the cells.
func (s *Store) SaveRun(ctx context.Context, doc api.DisaggregationV1) (int64, error) {
	shape, err := json.Marshal(doc.Shape)
	if err != nil {
		return 0, err
	}
	edges, err := json.Marshal(doc.Edges)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (
		   scenario, imt, iml, time_span, truncation_level,
		   site_lon, site_lat, site_vs30, ruptures, status,
		   shape, edges, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.Scenario, doc.IMT, doc.IML, doc.TimeSpan, doc.TruncationLevel,
		doc.Site.Lon, doc.Site.Lat, doc.Site.Vs30, doc.Ruptures, doc.Status,
		string(shape), string(edges), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cells (run_id, mag, dist, lon, lat, eps, trt, prob) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("save cells: %w", err)
	}
	defer stmt.Close()
	for _, c := range doc.Cells {
		if _, err := stmt.ExecContext(ctx, id, c.Mag, c.Dist, c.Lon, c.Lat, c.Eps, c.TRT, c.Prob); err != nil {
			return 0, fmt.Errorf("save cells: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}
	return id, nil
}

// LoadRun returns a stored run with its cells in row-major order. PMFs are
// left empty.
func (s *Store) LoadRun(ctx context.Context, id int64) (api.DisaggregationV1, error) {
	doc := api.DisaggregationV1{Schema: api.DisaggregationSchemaV1, RunID: id}
	var shape, edges string
	err := s.db.QueryRowContext(ctx,
		`SELECT scenario, imt, iml, time_span, truncation_level,
		        site_lon, site_lat, site_vs30, ruptures, status, shape, edges
		   FROM runs WHERE id = ?`, id,
	).Scan(
		&doc.Scenario, &doc.IMT, &doc.IML, &doc.TimeSpan, &doc.TruncationLevel,
		&doc.Site.Lon, &doc.Site.Lat, &doc.Site.Vs30, &doc.Ruptures, &doc.Status,
		&shape, &edges,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return api.DisaggregationV1{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return api.DisaggregationV1{}, fmt.Errorf("load run %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(shape), &doc.Shape); err != nil {
		return api.DisaggregationV1{}, fmt.Errorf("load run %d shape: %w", id, err)
	}
	if err := json.Unmarshal([]byte(edges), &doc.Edges); err != nil {
		return api.DisaggregationV1{}, fmt.Errorf("load run %d edges: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT mag, dist, lon, lat, eps, trt, prob FROM cells
		  WHERE run_id = ?
		  ORDER BY mag, dist, lon, lat, eps, trt`, id)
	if err != nil {
		return api.DisaggregationV1{}, fmt.Errorf("load run %d cells: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var c api.CellV1
		if err := rows.Scan(&c.Mag, &c.Dist, &c.Lon, &c.Lat, &c.Eps, &c.TRT, &c.Prob); err != nil {
			return api.DisaggregationV1{}, fmt.Errorf("load run %d cells: %w", id, err)
		}
		doc.Cells = append(doc.Cells, c)
	}
	if err := rows.Err(); err != nil {
		return api.DisaggregationV1{}, fmt.Errorf("load run %d cells: %w", id, err)
	}
	return doc, nil
}

// ListRuns returns the most recent runs first, optionally filtered by
// scenario name. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, scenario string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.scenario, r.imt, r.iml, r.status, r.created_at,
		        (SELECT COUNT(*) FROM cells c WHERE c.run_id = r.id)
		   FROM runs r
		  WHERE ? = '' OR r.scenario = ?
		  ORDER BY r.id DESC
		  LIMIT ?`, scenario, scenario, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var created int64
		if err := rows.Scan(&r.ID, &r.Scenario, &r.IMT, &r.IML, &r.Status, &created, &r.Cells); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		r.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// DeleteRun removes a run and its cells.
func (s *Store) DeleteRun(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}
