package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"secmaster/src/data_source/nasdaq"
	"secmaster/src/helpers"
	"secmaster/src/interfaces"
	"secmaster/src/logger"
	"secmaster/src/models"
)

// MaxNameLength is the longest security name kept from a listings file.
const MaxNameLength = 99

// ListingsImporter creates catalog symbols from exchange listings files.
type ListingsImporter struct {
	Config   models.MListingsConfig
	Store    interfaces.ISymbolStore
	Fetcher  interfaces.IListingsFetcher
	Reporter interfaces.IProgressReporter
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewListingsImporter(cfg models.MListingsConfig, store interfaces.ISymbolStore, fetcher interfaces.IListingsFetcher, log *logger.Logger) *ListingsImporter {
	return &ListingsImporter{
		Config:  cfg,
		Store:   store,
		Fetcher: fetcher,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Run optionally downloads the configured files, then imports each of them.
func (li *ListingsImporter) Run(ctx context.Context, download bool) ([]models.MImportResult, error) {
	if download {
		names := make([]string, 0, len(li.Config.Files))
		for _, f := range li.Config.Files {
			names = append(names, f.Filename)
		}
		if err := li.Fetcher.Download(ctx, names, li.Config.DestinationDir); err != nil {
			return nil, fmt.Errorf("download listings: %w", err)
		}
	}

	results := make([]models.MImportResult, 0, len(li.Config.Files))
	for _, f := range li.Config.Files {
		res, err := li.ImportFile(ctx, f, filepath.Join(li.Config.DestinationDir, f.Filename))
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	li.Logger.Info("New symbols created, classification pending")
	return results, nil
}

// -----------------------------------------------------------------------------

// ImportFile inserts the listed symbols of one file that are not in the
// catalog yet. Test issues and symbols with an excluded character are
// skipped. Inserts are committed every BatchSize new symbols.
func (li *ListingsImporter) ImportFile(ctx context.Context, f models.MListingFile, path string) (models.MImportResult, error) {
	res := models.MImportResult{Filename: f.Filename}
	li.Logger.Info("Starting database update for file %s", f.Filename)

	ok, err := li.Store.ProviderExists(ctx, f.Provider)
	if err != nil {
		return res, err
	}
	if !ok {
		return res, helpers.NewConfigurationError(
			fmt.Sprintf("provider %s for file %s not created in database", f.Provider, f.Filename), nil)
	}

	rows, err := nasdaq.ParseFile(path, f.Columns)
	if err != nil {
		return res, helpers.NewValidationError("read listings file "+path, err)
	}

	ids, err := li.Store.ListSymbolIDs(ctx)
	if err != nil {
		return res, err
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	batch := li.Config.BatchSize
	if batch < 1 {
		batch = len(rows) + 1
	}

	now := time.Now().UTC()
	pending := make([]models.MSymbol, 0, min(batch, len(rows)))
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := li.Store.InsertSymbols(ctx, pending); err != nil {
			return err
		}
		pending = pending[:0]
		return nil
	}

	for i, row := range rows {
		if li.Reporter != nil {
			li.Reporter.Report(models.MProgress{Symbol: row.Symbol, Index: i + 1, Total: len(rows)})
		}
		if row.TestIssue != "N" || row.Symbol == "" {
			continue
		}

		switch {
		case known[row.Symbol]:
			res.AlreadyInDB++
		case Excluded(row.Symbol, f.Exclude):
			res.Excluded++
		default:
			known[row.Symbol] = true
			pending = append(pending, models.MSymbol{
				ID:          row.Symbol,
				Name:        truncate(row.Name, MaxNameLength),
				Provider:    f.Provider,
				ToUpdate:    true,
				LastUpdated: now,
			})
			res.NewSymbols++

			if len(pending) >= batch {
				if err := flush(); err != nil {
					return res, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return res, err
	}

	li.Logger.Info("Database updated for %s. New symbols: %d, Excluded: %d, Already in database: %d",
		f.Filename, res.NewSymbols, res.Excluded, res.AlreadyInDB)
	return res, nil
}

// -----------------------------------------------------------------------------

// Excluded reports whether symbol contains any of the excluded substrings.
func Excluded(symbol string, exclude []string) bool {
	for _, e := range exclude {
		if e != "" && strings.Contains(symbol, e) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
