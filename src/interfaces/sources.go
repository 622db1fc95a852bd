package interfaces

import (
	"context"

	"secmaster/src/models"
)

// -----------------------------------------------------------------------------
// IPriceHistorySource fetches daily candles from the brokerage API.
// -----------------------------------------------------------------------------

type IPriceHistorySource interface {
	GetPriceHistory(ctx context.Context, req models.MPriceHistoryRequest) (*models.MPriceHistory, error)
}

// -----------------------------------------------------------------------------
// IListingsFetcher downloads exchange listings files.
// -----------------------------------------------------------------------------

type IListingsFetcher interface {

	// Download stores each named file into destDir.
	Download(ctx context.Context, filenames []string, destDir string) error
}

// -----------------------------------------------------------------------------
// IProfileSource returns classification data for a symbol, or nil when the
// source does not know it.
// -----------------------------------------------------------------------------

type IProfileSource interface {
	FetchProfile(ctx context.Context, symbol string) (*models.MProfile, error)
}

// -----------------------------------------------------------------------------
// IProgressReporter receives one event per processed symbol.
// -----------------------------------------------------------------------------

type IProgressReporter interface {
	Report(p models.MProgress)
}
