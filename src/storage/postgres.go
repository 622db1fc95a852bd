package storage

import (
	"context"
	"database/sql"

	"secmaster/src/helpers"
	"secmaster/src/logger"

	_ "github.com/lib/pq"
)

// postgresSchema creates the securities master tables when missing.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS providers (
		id VARCHAR(255) PRIMARY KEY,
		last_updated BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS intervals (
		id VARCHAR(55) PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS symbols (
		id VARCHAR(120) PRIMARY KEY,
		name VARCHAR(255),
		sector VARCHAR(255),
		industry VARCHAR(255),
		quote_type VARCHAR(255),
		provider VARCHAR(55) REFERENCES providers(id),
		to_update BOOLEAN NOT NULL DEFAULT TRUE,
		last_updated BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bars (
		id BIGSERIAL PRIMARY KEY,
		symbol_id VARCHAR(55) REFERENCES symbols(id),
		date BIGINT NOT NULL,
		open NUMERIC(12,4),
		high NUMERIC(12,4),
		low NUMERIC(12,4),
		close NUMERIC(12,4),
		volume BIGINT,
		"interval" VARCHAR(55) REFERENCES intervals(id),
		provider VARCHAR(55) REFERENCES providers(id),
		last_updated BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS bars_symbol_date_idx ON bars (symbol_id, date)`,
	`CREATE TABLE IF NOT EXISTS earning_dates (
		id SERIAL PRIMARY KEY,
		symbol_id VARCHAR(55) REFERENCES symbols(id),
		earning_date BIGINT,
		provider VARCHAR(55) REFERENCES providers(id),
		last_updated BIGINT NOT NULL
	)`,
}

// -----------------------------------------------------------------------------

type PostgresDB struct {
	*sqlStore
	DSN string
}

// -----------------------------------------------------------------------------

func NewPostgresDB(dsn string, log *logger.Logger) *PostgresDB {
	return &PostgresDB{
		sqlStore: &sqlStore{Logger: log, dollarPH: true},
		DSN:      dsn,
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize(ctx context.Context) error {
	if d.DB != nil {
		return d.exec(ctx, postgresSchema)
	}

	db, err := sql.Open("postgres", d.DSN)
	if err != nil {
		return helpers.NewDatabaseError("open postgres", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return helpers.NewDatabaseError("connect to postgres", err)
	}

	d.DB = db

	if err := d.exec(ctx, postgresSchema); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully")
	return nil
}
