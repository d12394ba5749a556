// storage/sqlite.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mmp/cifp/aviation"
	"github.com/mmp/cifp/log"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE headers (
	number INTEGER NOT NULL,
	cycle TEXT,
	raw TEXT NOT NULL
);

CREATE TABLE navaids (
	ident TEXT NOT NULL,
	type TEXT NOT NULL,
	airport TEXT NOT NULL,
	region TEXT,
	frequency REAL,
	class TEXT,
	lat REAL,
	lon REAL,
	name TEXT,
	PRIMARY KEY (ident, type, airport)
);

CREATE TABLE waypoints (
	ident TEXT NOT NULL,
	section TEXT NOT NULL,
	airport TEXT NOT NULL,
	region TEXT,
	type TEXT,
	lat REAL NOT NULL,
	lon REAL NOT NULL,
	name TEXT,
	PRIMARY KEY (ident, section, airport)
);

CREATE TABLE airports (
	ident TEXT PRIMARY KEY,
	section TEXT NOT NULL,
	iata TEXT,
	region TEXT,
	ifr INTEGER,
	lat REAL NOT NULL,
	lon REAL NOT NULL,
	elevation INTEGER,
	mag_var REAL,
	name TEXT
);

CREATE TABLE runways (
	airport TEXT NOT NULL REFERENCES airports(ident),
	ident TEXT NOT NULL,
	length INTEGER,
	bearing REAL,
	lat REAL NOT NULL,
	lon REAL NOT NULL,
	threshold_elevation INTEGER,
	localizer TEXT,
	PRIMARY KEY (airport, ident)
);

CREATE TABLE procedures (
	id INTEGER PRIMARY KEY,
	airport TEXT NOT NULL REFERENCES airports(ident),
	kind TEXT NOT NULL,
	ident TEXT NOT NULL,
	transition TEXT NOT NULL,
	route_type TEXT
);

CREATE TABLE legs (
	procedure_id INTEGER NOT NULL REFERENCES procedures(id),
	seq INTEGER NOT NULL,
	fix TEXT,
	fix_section TEXT,
	path_terminator TEXT NOT NULL,
	description TEXT,
	altitude TEXT,
	speed TEXT,
	course REAL,
	distance REAL,
	missed INTEGER NOT NULL
);

CREATE TABLE airways (
	ident TEXT PRIMARY KEY,
	route_type TEXT NOT NULL,
	level TEXT NOT NULL
);

CREATE TABLE airway_fixes (
	airway TEXT NOT NULL REFERENCES airways(ident),
	seq INTEGER NOT NULL,
	fix TEXT NOT NULL,
	region TEXT,
	section TEXT,
	direction TEXT,
	min_altitude TEXT,
	PRIMARY KEY (airway, seq)
);

CREATE INDEX idx_waypoints_ident ON waypoints(ident);
CREATE INDEX idx_legs_procedure ON legs(procedure_id, seq);
CREATE INDEX idx_procedures_airport ON procedures(airport, ident);
CREATE INDEX idx_airway_fixes_fix ON airway_fixes(fix);
`

// DB is an exported SQLite CIFP database.
type DB struct {
	db *sql.DB
}

// Create creates a new SQLite database at the given path, replacing any
// existing file there.
func Create(path string) (*DB, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	for _, stmt := range statements(sqliteSchema) {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &DB{db: db}, nil
}

// Open opens an existing exported database.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Export writes the contents of cifp to a new SQLite database at path.
func Export(ctx context.Context, cifp *aviation.Database, path string, lg *log.Logger) error {
	d, err := Create(path)
	if err != nil {
		return err
	}
	if err := d.Write(ctx, cifp); err != nil {
		_ = d.Close()
		return err
	}
	lg.Info("exported CIFP to SQLite", "path", path)
	return d.Close()
}

// sqliteSink inserts rows with prepared statements in a single
// transaction.
type sqliteSink struct {
	ctx   context.Context
	stmts map[string]*sql.Stmt
}

func (s *sqliteSink) insert(table string, values ...any) error {
	if _, err := s.stmts[table].ExecContext(s.ctx, values...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// Write inserts the contents of cifp in a single transaction.
func (d *DB) Write(ctx context.Context, cifp *aviation.Database) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sink := &sqliteSink{ctx: ctx, stmts: make(map[string]*sql.Stmt)}
	for _, t := range tables {
		stmt, err := tx.PrepareContext(ctx, t.insertQuery())
		if err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
		defer stmt.Close()
		sink.stmts[t.name] = stmt
	}

	if err := writeRows(sink, cifp); err != nil {
		return err
	}
	return tx.Commit()
}

// Count returns the number of rows in the given table.
func (d *DB) Count(ctx context.Context, table string) (int, error) {
	t, err := lookupTable(table)
	if err != nil {
		return 0, err
	}
	var n int
	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.name).Scan(&n)
	return n, err
}

// ProcedureFixes returns the fixes along the given procedure
// transition, in order, excluding the missed approach.
func (d *DB) ProcedureFixes(ctx context.Context, airport, ident, transition string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT l.fix FROM legs l JOIN procedures p ON l.procedure_id = p.id
		WHERE p.airport = ? AND p.ident = ? AND p.transition = ? AND l.missed = 0 AND l.fix IS NOT NULL
		ORDER BY l.seq`, airport, ident, transition)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fixes []string
	for rows.Next() {
		var fix string
		if err := rows.Scan(&fix); err != nil {
			return nil, err
		}
		fixes = append(fixes, fix)
	}
	return fixes, rows.Err()
}
