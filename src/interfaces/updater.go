package interfaces

import (
	"context"
	"time"

	"secmaster/src/models"
)

// -----------------------------------------------------------------------------
// ICalendar resolves market sessions.
// -----------------------------------------------------------------------------

type ICalendar interface {

	// PreviousBusinessDay returns the last trading day strictly before date.
	PreviousBusinessDay(date time.Time) time.Time
}

// -----------------------------------------------------------------------------
// IIngester brings the bars of one symbol up to date.
// -----------------------------------------------------------------------------

type IIngester interface {
	Ingest(ctx context.Context, symbol string) (models.MIngestResult, error)
}
