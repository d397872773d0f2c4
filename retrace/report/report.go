// Copyright (C) 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report stores snapshot comparison results in a SQLite database, so
// regressions can be tracked across replays of the same trace.
package report

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/gfxretrace/core/fault"
	"github.com/google/gfxretrace/retrace/snapshot"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // registers the sqlite driver
)

// ErrNoPath is returned when opening a store without a path.
const ErrNoPath = fault.Const("Results database path is required")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	trace     TEXT NOT NULL,
	started   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS comparisons (
	run       INTEGER NOT NULL REFERENCES runs(id),
	label     INTEGER NOT NULL,
	call      TEXT NOT NULL,
	reference TEXT NOT NULL,
	precision REAL NOT NULL,
	mse       REAL NOT NULL,
	PRIMARY KEY (run, label)
);`

// Store is a results database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the results database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoPath
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "Opening results database")
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "Creating schema in %s", path)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Run collects the comparisons of one replay.
type Run struct {
	ID    int64
	store *Store
}

// Begin starts a new run for the named trace.
func (s *Store) Begin(ctx context.Context, trace string, started time.Time) (*Run, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO runs (trace, started) VALUES (?, ?)`, trace, started.UTC().UnixMilli())
	if err != nil {
		return nil, errors.Wrap(err, "Starting run")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Run{ID: id, store: s}, nil
}

// Record implements snapshot.Recorder.
func (r *Run) Record(ctx context.Context, res snapshot.Result) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO comparisons (run, label, call, reference, precision, mse) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, int64(res.Label), res.Call, res.Reference, res.Precision, res.MeanSquareError)
	return errors.Wrapf(err, "Recording snapshot %d", res.Label)
}

// Results returns the comparisons of the run ordered by label.
func (s *Store) Results(ctx context.Context, run int64) ([]snapshot.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, call, reference, precision, mse FROM comparisons WHERE run = ? ORDER BY label`, run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []snapshot.Result{}
	for rows.Next() {
		var r snapshot.Result
		var label int64
		if err := rows.Scan(&label, &r.Call, &r.Reference, &r.Precision, &r.MeanSquareError); err != nil {
			return nil, err
		}
		r.Label = uint64(label)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary is the aggregate of a run.
type Summary struct {
	Trace        string
	Comparisons  int
	MinPrecision float64
}

// Summarize returns the aggregate of the run.
func (s *Store) Summarize(ctx context.Context, run int64) (Summary, error) {
	var out Summary
	var min sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT runs.trace, COUNT(comparisons.label), MIN(comparisons.precision)
		FROM runs LEFT JOIN comparisons ON comparisons.run = runs.id
		WHERE runs.id = ? GROUP BY runs.id`, run).Scan(&out.Trace, &out.Comparisons, &min)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "Summarizing run %d", run)
	}
	out.MinPrecision = min.Float64
	return out, nil
}
