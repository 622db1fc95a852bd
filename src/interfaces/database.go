package interfaces

import (
	"context"
	"time"

	"secmaster/src/models"
)

// -----------------------------------------------------------------------------
// IBarStore is the storage contract of the bar ingestion pipeline.
// -----------------------------------------------------------------------------

type IBarStore interface {

	// MaxBarDate returns the latest stored bar date of a symbol, or ok=false
	// when the symbol has no bars.
	MaxBarDate(ctx context.Context, symbol string) (last time.Time, ok bool, err error)

	// -----------------------------------------------------------------------------

	// AppendBars inserts bars as new rows in one transaction.
	AppendBars(ctx context.Context, bars []models.MBar) error
}

// -----------------------------------------------------------------------------
// ISymbolStore reads and writes the symbol catalog.
// -----------------------------------------------------------------------------

type ISymbolStore interface {

	// ListSymbolIDs returns every symbol id, sorted.
	ListSymbolIDs(ctx context.Context) ([]string, error)

	// GetSymbol returns one symbol, or nil when the id is unknown.
	GetSymbol(ctx context.Context, id string) (*models.MSymbol, error)

	// SymbolClassification returns the classification fields of a symbol.
	SymbolClassification(ctx context.Context, id string) (c models.MClassification, ok bool, err error)

	// InsertSymbols creates new symbols in one transaction.
	InsertSymbols(ctx context.Context, symbols []models.MSymbol) error

	// ProviderExists reports whether the provider reference row exists.
	ProviderExists(ctx context.Context, id string) (bool, error)

	// ListSymbolsMissingClassification returns ids whose quote type is NULL.
	ListSymbolsMissingClassification(ctx context.Context) ([]string, error)

	// UpdateClassification sets sector, industry and quote type of a symbol.
	UpdateClassification(ctx context.Context, id string, c models.MClassification) error
}

// -----------------------------------------------------------------------------
// IDatabase defines the full contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {
	IBarStore
	ISymbolStore

	// Initialize opens the connection and creates missing tables.
	Initialize(ctx context.Context) error

	// EnsureReferenceData creates provider and interval rows when missing.
	EnsureReferenceData(ctx context.Context, providers []string, intervals []string) error

	// LoadBars returns the bars of a symbol ordered by date.
	LoadBars(ctx context.Context, symbol string) ([]models.MBar, error)

	// Close the database connection
	Close() error
}
