package storage

import (
	"context"
	"database/sql"

	"secmaster/src/helpers"
	"secmaster/src/logger"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS providers (
		id TEXT PRIMARY KEY,
		last_updated INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS intervals (
		id TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS symbols (
		id TEXT PRIMARY KEY,
		name TEXT,
		sector TEXT,
		industry TEXT,
		quote_type TEXT,
		provider TEXT REFERENCES providers(id),
		to_update BOOLEAN NOT NULL DEFAULT 1,
		last_updated INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol_id TEXT REFERENCES symbols(id),
		date INTEGER NOT NULL,
		open NUMERIC,
		high NUMERIC,
		low NUMERIC,
		close NUMERIC,
		volume INTEGER,
		"interval" TEXT REFERENCES intervals(id),
		provider TEXT REFERENCES providers(id),
		last_updated INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS bars_symbol_date_idx ON bars (symbol_id, date)`,
	`CREATE TABLE IF NOT EXISTS earning_dates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol_id TEXT REFERENCES symbols(id),
		earning_date INTEGER,
		provider TEXT REFERENCES providers(id),
		last_updated INTEGER NOT NULL
	)`,
}

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	*sqlStore
	Path string
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(path string, log *logger.Logger) *SQLiteDB {
	return &SQLiteDB{
		sqlStore: &sqlStore{Logger: log},
		Path:     path,
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize(ctx context.Context) error {
	if d.DB != nil {
		return d.exec(ctx, sqliteSchema)
	}

	db, err := sql.Open("sqlite", d.Path)
	if err != nil {
		return helpers.NewDatabaseError("open sqlite "+d.Path, err)
	}

	// One writer; also keeps a :memory: database on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return helpers.NewDatabaseError("open sqlite "+d.Path, err)
	}

	d.DB = db

	// PRAGMA optimizations
	if d.Path != MemoryPath {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
			d.Logger.Warning("Failed to set WAL mode: %v", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
			d.Logger.Warning("Failed to set synchronous mode: %v", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		d.Logger.Warning("Failed to enable foreign keys: %v", err)
	}

	return d.exec(ctx, sqliteSchema)
}
