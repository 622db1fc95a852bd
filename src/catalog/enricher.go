package catalog

import (
	"context"

	"secmaster/src/helpers"
	"secmaster/src/interfaces"
	"secmaster/src/logger"
	"secmaster/src/models"
	"secmaster/src/utils"
)

// Enricher fills the classification of symbols that have none yet.
type Enricher struct {
	Store    interfaces.ISymbolStore
	Source   interfaces.IProfileSource
	Reporter interfaces.IProgressReporter
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewEnricher(store interfaces.ISymbolStore, source interfaces.IProfileSource, log *logger.Logger) *Enricher {
	return &Enricher{Store: store, Source: source, Logger: log}
}

// -----------------------------------------------------------------------------

// Run enriches every symbol whose quote type is NULL and returns how many
// were updated. Per-symbol failures are logged and skipped.
func (e *Enricher) Run(ctx context.Context) (int, error) {
	ids, err := e.Store.ListSymbolsMissingClassification(ctx)
	if err != nil {
		return 0, err
	}
	e.Logger.Info("Ready to update %d symbols' info", len(ids))

	updated := 0
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		status := e.enrichOne(ctx, id)
		if status == utils.StatusUpdated {
			updated++
		}
		if e.Reporter != nil {
			e.Reporter.Report(models.MProgress{Symbol: id, Index: i + 1, Total: len(ids), Status: status})
		}
	}

	e.Logger.Info("Done updating %d of %d symbols' info", updated, len(ids))
	return updated, nil
}

// -----------------------------------------------------------------------------

func (e *Enricher) enrichOne(ctx context.Context, id string) string {
	p, err := e.Source.FetchProfile(ctx, id)
	if err != nil {
		e.Logger.Warning("%s: profile fetch failed (%s): %v", id, helpers.Kind(err), err)
		return utils.StatusFailed
	}
	if p == nil {
		return utils.StatusNoData
	}

	// The catalog id is updated, not the Yahoo spelling of it.
	if err := e.Store.UpdateClassification(ctx, id, Classification(p)); err != nil {
		e.Logger.Warning("Error updating symbol %s, moving on: %v", id, err)
		return utils.StatusFailed
	}
	return utils.StatusUpdated
}

// -----------------------------------------------------------------------------

// Classification converts a profile to catalog fields; empty values become NULL.
func Classification(p *models.MProfile) models.MClassification {
	return models.MClassification{
		Sector:    optional(p.Sector),
		Industry:  optional(p.Industry),
		QuoteType: optional(p.QuoteType),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
