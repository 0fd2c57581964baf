// Package sqlite is a record.Recorder backed by a SQLite database.
//
// The trajectories table holds one row per run and the points table
// holds one row per point, with the written fields as a JSON object.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/reflectometry/scattio/record"
	"github.com/reflectometry/scattio/traj"
	"github.com/reflectometry/scattio/util"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS trajectories (
		name      TEXT PRIMARY KEY,
		descr     TEXT NOT NULL,
		constants TEXT NOT NULL,
		npoints   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS points (
		traj   TEXT NOT NULL,
		idx    INTEGER NOT NULL,
		fields TEXT NOT NULL,
		PRIMARY KEY (traj, idx)
	)`,
}

var (
	ErrNotOpen  = errors.New("storage isn't open")
	ErrNotFound = errors.New("trajectory not found")
)

// Storage writes each run in a single transaction.
type Storage struct {
	Debug bool

	filename string
	db       *sql.DB
	tx       *sql.Tx
	insert   *sql.Stmt
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) logf(format string, args ...interface{}) {
	util.Debugf(s.Debug, "SQLite Storage.", format, args...)
}

func open(ctx context.Context, filename string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Open replaces any previous run with the same trajectory name.
func (s *Storage) Open(ctx context.Context, h *record.Header) error {
	s.logf("Open %s %d points", h.Traj, h.Count)

	db, err := open(ctx, s.filename)
	if err != nil {
		return err
	}
	constants, err := json.Marshal(h.Constants)
	if err != nil {
		db.Close()
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return err
	}
	fail := func(err error) error {
		tx.Rollback()
		db.Close()
		return err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM points WHERE traj = ?", h.Traj); err != nil {
		return fail(err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO trajectories (name, descr, constants, npoints) VALUES (?, ?, ?, ?)",
		h.Traj, h.Descr, string(constants), h.Count)
	if err != nil {
		return fail(err)
	}
	insert, err := tx.PrepareContext(ctx, "INSERT INTO points (traj, idx, fields) VALUES (?, ?, ?)")
	if err != nil {
		return fail(err)
	}

	s.db, s.tx, s.insert = db, tx, insert
	return nil
}

func (s *Storage) Record(ctx context.Context, r *record.Record) error {
	if s.tx == nil {
		return ErrNotOpen
	}
	js, err := json.Marshal(r.Fields)
	if err != nil {
		return err
	}
	_, err = s.insert.ExecContext(ctx, r.Traj, r.Index, string(js))
	return err
}

// Close commits the run and closes the database.
func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	s.logf("Close")

	s.insert.Close()
	err := s.tx.Commit()
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	s.db, s.tx, s.insert = nil, nil, nil
	return err
}

// Trajectories returns the names of the stored trajectories.
func Trajectories(ctx context.Context, filename string) ([]string, error) {
	db, err := open(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT name FROM trajectories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var acc []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		acc = append(acc, name)
	}
	return acc, rows.Err()
}

// Read returns the stored header and points of a trajectory.
func Read(ctx context.Context, filename, trajName string) (*record.Header, []*record.Record, error) {
	db, err := open(ctx, filename)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	var (
		h         = record.Header{Traj: trajName}
		constants string
	)
	err = db.QueryRowContext(ctx,
		"SELECT descr, constants, npoints FROM trajectories WHERE name = ?", trajName).
		Scan(&h.Descr, &constants, &h.Count)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if err = json.Unmarshal([]byte(constants), &h.Constants); err != nil {
		return nil, nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT idx, fields FROM points WHERE traj = ? ORDER BY idx", trajName)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	acc := make([]*record.Record, 0, h.Count)
	for rows.Next() {
		var (
			r  = &record.Record{Traj: trajName}
			js string
		)
		if err := rows.Scan(&r.Index, &js); err != nil {
			return nil, nil, err
		}
		r.Fields = traj.NewBindings()
		if err := json.Unmarshal([]byte(js), &r.Fields); err != nil {
			return nil, nil, err
		}
		acc = append(acc, r)
	}
	if err = rows.Err(); err != nil {
		return nil, nil, err
	}
	return &h, acc, nil
}
