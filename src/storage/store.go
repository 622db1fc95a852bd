package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"secmaster/src/helpers"
	"secmaster/src/logger"
	"secmaster/src/models"
)

// sqlStore holds the queries shared by the PostgreSQL and SQLite backends.
// Queries are written with '?' placeholders and rebound per dialect.
// Timestamps are stored as unix seconds.
type sqlStore struct {
	DB       *sql.DB
	Logger   *logger.Logger
	dollarPH bool // $1, $2 ... placeholders
}

// -----------------------------------------------------------------------------

func (s *sqlStore) rebind(query string) string {
	if !s.dollarPH {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// -----------------------------------------------------------------------------

func (s *sqlStore) exec(ctx context.Context, statements []string) error {
	for _, stmt := range statements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return helpers.NewDatabaseError("schema statement failed", err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) MaxBarDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	var last sql.NullInt64
	err := s.DB.QueryRowContext(ctx, s.rebind(`SELECT MAX(date) FROM bars WHERE symbol_id = ?`), symbol).Scan(&last)
	if err != nil {
		return time.Time{}, false, helpers.NewDatabaseError("max bar date of "+symbol, err)
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	return time.Unix(last.Int64, 0).UTC(), true, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) AppendBars(ctx context.Context, bars []models.MBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return helpers.NewDatabaseError("begin bars transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO bars (symbol_id, date, open, high, low, close, volume, provider, "interval", last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return helpers.NewDatabaseError("prepare bars insert", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.ExecContext(ctx,
			b.SymbolID, b.Date.Unix(),
			b.Open.StringFixed(models.PricePlaces), b.High.StringFixed(models.PricePlaces),
			b.Low.StringFixed(models.PricePlaces), b.Close.StringFixed(models.PricePlaces),
			b.Volume, b.Provider, b.Interval, b.LastUpdated.Unix(),
		)
		if err != nil {
			return helpers.NewDatabaseError(fmt.Sprintf("insert bar %s %s", b.SymbolID, b.Date.Format("2006-01-02")), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helpers.NewDatabaseError("commit bars", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) LoadBars(ctx context.Context, symbol string) ([]models.MBar, error) {
	rows, err := s.DB.QueryContext(ctx, s.rebind(`
		SELECT symbol_id, date, open, high, low, close, volume, provider, "interval", last_updated
		FROM bars WHERE symbol_id = ? ORDER BY date
	`), symbol)
	if err != nil {
		return nil, helpers.NewDatabaseError("load bars of "+symbol, err)
	}
	defer rows.Close()

	var bars []models.MBar
	for rows.Next() {
		var (
			b             models.MBar
			date, updated int64
		)
		if err := rows.Scan(&b.SymbolID, &date, &b.Open, &b.High, &b.Low, &b.Close,
			&b.Volume, &b.Provider, &b.Interval, &updated); err != nil {
			return nil, helpers.NewDatabaseError("scan bar", err)
		}
		b.Date = time.Unix(date, 0).UTC()
		b.LastUpdated = time.Unix(updated, 0).UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("iterate bars", err)
	}
	return bars, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) ListSymbolIDs(ctx context.Context) ([]string, error) {
	return s.queryIDs(ctx, `SELECT id FROM symbols ORDER BY id`)
}

// -----------------------------------------------------------------------------

func (s *sqlStore) ListSymbolsMissingClassification(ctx context.Context) ([]string, error) {
	return s.queryIDs(ctx, `SELECT id FROM symbols WHERE quote_type IS NULL ORDER BY id`)
}

// -----------------------------------------------------------------------------

func (s *sqlStore) queryIDs(ctx context.Context, query string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, s.rebind(query))
	if err != nil {
		return nil, helpers.NewDatabaseError("list symbols", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, helpers.NewDatabaseError("scan symbol id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("iterate symbols", err)
	}
	return ids, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) GetSymbol(ctx context.Context, id string) (*models.MSymbol, error) {
	var (
		sym                         models.MSymbol
		sector, industry, quoteType sql.NullString
		updated                     int64
	)
	err := s.DB.QueryRowContext(ctx, s.rebind(`
		SELECT id, name, sector, industry, quote_type, provider, to_update, last_updated
		FROM symbols WHERE id = ?
	`), id).Scan(&sym.ID, &sym.Name, &sector, &industry, &quoteType, &sym.Provider, &sym.ToUpdate, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, helpers.NewDatabaseError("get symbol "+id, err)
	}

	sym.Sector = nullable(sector)
	sym.Industry = nullable(industry)
	sym.QuoteType = nullable(quoteType)
	sym.LastUpdated = time.Unix(updated, 0).UTC()
	return &sym, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) SymbolClassification(ctx context.Context, id string) (models.MClassification, bool, error) {
	sym, err := s.GetSymbol(ctx, id)
	if err != nil || sym == nil {
		return models.MClassification{}, false, err
	}
	return sym.Classification(), true, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) InsertSymbols(ctx context.Context, symbols []models.MSymbol) error {
	if len(symbols) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return helpers.NewDatabaseError("begin symbols transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO symbols (id, name, sector, industry, quote_type, provider, to_update, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return helpers.NewDatabaseError("prepare symbols insert", err)
	}
	defer stmt.Close()

	for _, sym := range symbols {
		updated := sym.LastUpdated
		if updated.IsZero() {
			updated = time.Now()
		}
		_, err := stmt.ExecContext(ctx, sym.ID, sym.Name, sym.Sector, sym.Industry, sym.QuoteType,
			sym.Provider, sym.ToUpdate, updated.Unix())
		if err != nil {
			return helpers.NewDatabaseError("insert symbol "+sym.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helpers.NewDatabaseError("commit symbols", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) UpdateClassification(ctx context.Context, id string, c models.MClassification) error {
	res, err := s.DB.ExecContext(ctx, s.rebind(`
		UPDATE symbols SET sector = ?, industry = ?, quote_type = ?, last_updated = ?
		WHERE id = ?
	`), c.Sector, c.Industry, c.QuoteType, time.Now().Unix(), id)
	if err != nil {
		return helpers.NewDatabaseError("update classification of "+id, err)
	}

	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return helpers.NewValidationError("unknown symbol "+id, nil)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) ProviderExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM providers WHERE id = ?`), id).Scan(&n)
	if err != nil {
		return false, helpers.NewDatabaseError("check provider "+id, err)
	}
	return n > 0, nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) EnsureReferenceData(ctx context.Context, providers []string, intervals []string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return helpers.NewDatabaseError("begin reference data transaction", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, p := range providers {
		if _, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO providers (id, last_updated) VALUES (?, ?) ON CONFLICT (id) DO NOTHING
		`), p, now); err != nil {
			return helpers.NewDatabaseError("insert provider "+p, err)
		}
	}
	for _, i := range intervals {
		if _, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO intervals (id) VALUES (?) ON CONFLICT (id) DO NOTHING
		`), i); err != nil {
			return helpers.NewDatabaseError("insert interval "+i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helpers.NewDatabaseError("commit reference data", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *sqlStore) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// -----------------------------------------------------------------------------

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
