package updater

import (
	"context"
	"fmt"
	"time"

	"secmaster/src/helpers"
	"secmaster/src/interfaces"
	"secmaster/src/logger"
	"secmaster/src/models"
	"secmaster/src/utils"

	"github.com/google/uuid"
)

// SymbolLister provides the default symbol list of a run.
type SymbolLister interface {
	ListSymbolIDs(ctx context.Context) ([]string, error)
}

// Driver updates the bars of many symbols, one at a time, throttled.
type Driver struct {
	Ingester interfaces.IIngester
	Symbols  SymbolLister
	Reporter interfaces.IProgressReporter
	Config   models.MUpdaterConfig
	Logger   *logger.Logger

	// Sleep waits between symbols; it returns early with ctx.Err().
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// -----------------------------------------------------------------------------

func NewDriver(cfg models.MUpdaterConfig, ingester interfaces.IIngester, symbols SymbolLister, reporter interfaces.IProgressReporter, log *logger.Logger) *Driver {
	return &Driver{
		Ingester: ingester,
		Symbols:  symbols,
		Reporter: reporter,
		Config:   cfg,
		Logger:   log,
		Sleep:    sleepContext,
		Now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

// Run updates the given symbols, or every stored symbol when none are given.
// Denylisted symbols are always removed. A failing symbol is logged and
// recorded; the run goes on. The returned error is set only when the symbol
// list cannot be loaded or ctx is cancelled.
func (d *Driver) Run(ctx context.Context, override []string) (models.MRunSummary, error) {
	summary := models.MRunSummary{
		RunID:   uuid.New().String(),
		Started: d.Now(),
	}

	symbols := override
	if len(symbols) == 0 {
		ids, err := d.Symbols.ListSymbolIDs(ctx)
		if err != nil {
			summary.Finished = d.Now()
			return summary, fmt.Errorf("list symbols: %w", err)
		}
		symbols = ids
	}
	symbols = RemoveDenied(symbols, d.Config.Denylist)
	summary.Total = len(symbols)

	d.Logger.Info("Run %s: ready to update %d symbols", summary.RunID, summary.Total)

	for i, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			d.Logger.Warning("Run %s cancelled after %d/%d symbols", summary.RunID, i, summary.Total)
			d.finish(&summary)
			return summary, err
		}

		status := d.ingestOne(ctx, symbol, &summary)

		if d.Reporter != nil {
			d.Reporter.Report(models.MProgress{
				RunID:    summary.RunID,
				Symbol:   symbol,
				Index:    i + 1,
				Total:    summary.Total,
				Status:   status,
				Inserted: summary.Inserted,
			})
		}

		if i+1 < len(symbols) {
			if err := d.Sleep(ctx, d.Delay(i+1)); err != nil {
				d.Logger.Warning("Run %s cancelled after %d/%d symbols", summary.RunID, i+1, summary.Total)
				d.finish(&summary)
				return summary, err
			}
		}
	}

	d.finish(&summary)
	return summary, nil
}

// -----------------------------------------------------------------------------

func (d *Driver) ingestOne(ctx context.Context, symbol string, summary *models.MRunSummary) string {
	res, err := d.Ingester.Ingest(ctx, symbol)
	summary.Inserted += res.Inserted

	switch {
	case err != nil:
		kind := helpers.Kind(err)
		d.Logger.Error("%s: update failed (%s): %v", symbol, kind, err)
		summary.Failed++
		summary.Failures = append(summary.Failures, models.MFailure{
			Symbol: symbol,
			Kind:   kind,
			Reason: err.Error(),
		})
		return utils.StatusFailed
	case res.Skipped:
		summary.Skipped++
		return utils.StatusSkipped
	case res.NoData:
		summary.NoData++
		return utils.StatusNoData
	default:
		summary.Updated++
		return utils.StatusUpdated
	}
}

// -----------------------------------------------------------------------------

func (d *Driver) finish(summary *models.MRunSummary) {
	summary.Finished = d.Now()
	summary.Elapsed = summary.Finished.Sub(summary.Started)

	d.Logger.Info("Run %s done: %d symbols, %d updated, %d current, %d without data, %d failed, %d bars in %s",
		summary.RunID, summary.Total, summary.Updated, summary.Skipped, summary.NoData,
		summary.Failed, summary.Inserted, summary.Elapsed.Round(time.Millisecond))
}

// -----------------------------------------------------------------------------

// Delay returns the pause after the n-th processed symbol (1-based).
// The long tier wins over the medium tier when both divide n.
func (d *Driver) Delay(n int) time.Duration {
	c := d.Config
	switch {
	case c.LongEvery > 0 && n%c.LongEvery == 0:
		return c.LongDelay
	case c.MediumEvery > 0 && n%c.MediumEvery == 0:
		return c.MediumDelay
	default:
		return c.ShortDelay
	}
}

// -----------------------------------------------------------------------------

// RemoveDenied returns symbols without the denylisted ones, order kept.
func RemoveDenied(symbols, denylist []string) []string {
	denied := make(map[string]bool, len(denylist))
	for _, s := range denylist {
		denied[s] = true
	}

	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if !denied[s] {
			out = append(out, s)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
