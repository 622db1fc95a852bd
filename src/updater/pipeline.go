package updater

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"secmaster/src/helpers"
	"secmaster/src/interfaces"
	"secmaster/src/logger"
	"secmaster/src/models"
	"secmaster/src/utils"

	"github.com/shopspring/decimal"
)

// Pipeline fetches, sanitizes and appends the missing bars of one symbol.
type Pipeline struct {
	Resolver     *WindowResolver
	Source       interfaces.IPriceHistorySource
	Store        interfaces.IBarStore
	Provider     string
	Interval     string
	BatchSize    int
	HistoryYears int
	Location     *time.Location
	Now          func() time.Time
	Logger       *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPipeline(cfg models.MUpdaterConfig, historyYears int, store interfaces.IBarStore, source interfaces.IPriceHistorySource, cal interfaces.ICalendar, log *logger.Logger) *Pipeline {
	return &Pipeline{
		Resolver:     NewWindowResolver(store, cal, cfg.BoundaryHour),
		Source:       source,
		Store:        store,
		Provider:     cfg.Provider,
		Interval:     cfg.Interval,
		BatchSize:    cfg.BatchSize,
		HistoryYears: historyYears,
		Location:     utils.NewYork(),
		Now:          time.Now,
		Logger:       log,
	}
}

// -----------------------------------------------------------------------------

// Ingest brings symbol up to date. An empty or all-invalid upstream response
// is not an error. Bars are appended in chunks of BatchSize, one transaction
// each; on a failing chunk the earlier chunks stay committed and the
// returned result counts them.
func (p *Pipeline) Ingest(ctx context.Context, symbol string) (models.MIngestResult, error) {
	res := models.MIngestResult{Symbol: symbol}

	w, err := p.Resolver.Resolve(ctx, symbol)
	if err != nil {
		return res, err
	}
	res.Window = w

	if w.Mode == models.WindowCurrent {
		p.Logger.Debug("%s: up to date (last session %s)", symbol, w.LastSession.Format("2006-01-02"))
		res.Skipped = true
		return res, nil
	}

	req := models.MPriceHistoryRequest{Symbol: symbol}
	if w.Mode == models.WindowFullHistory {
		req.Full = true
		req.Years = p.HistoryYears
	} else {
		req.Start = w.From
		req.End = w.To
	}

	resp, err := p.Source.GetPriceHistory(ctx, req)
	if err != nil {
		if helpers.Kind(err) != "validation" {
			return res, fmt.Errorf("fetch %s: %w", symbol, err)
		}
		// A malformed answer carries nothing to ingest.
		p.Logger.Warning("%s: unusable price history: %v", symbol, err)
		resp = nil
	}
	if resp == nil {
		resp = &models.MPriceHistory{Symbol: symbol, Empty: true}
	}

	candles, ok := Sanitize(*resp)
	res.Fetched = len(resp.Candles)
	res.Valid = len(candles)
	if !ok || len(candles) == 0 {
		p.Logger.Debug("%s: no usable candles (%d fetched)", symbol, res.Fetched)
		res.NoData = true
		return res, nil
	}

	bars := p.transform(symbol, w, candles)
	if len(bars) == 0 {
		res.NoData = true
		return res, nil
	}

	for _, chunk := range utils.Chunk(bars, p.BatchSize) {
		if err := p.Store.AppendBars(ctx, chunk); err != nil {
			return res, fmt.Errorf("store %s: %w", symbol, err)
		}
		res.Inserted += len(chunk)
	}

	p.Logger.Debug("%s: inserted %d bars (%s)", symbol, res.Inserted, w.Mode)
	return res, nil
}

// -----------------------------------------------------------------------------

// transform converts candles to bars, drops those outside the window and
// returns them in ascending date order with one bar per date (the first seen).
// Chunks are then committed oldest first, so a failed chunk never leaves a
// gap below MaxBarDate.
func (p *Pipeline) transform(symbol string, w models.MWindow, candles []models.MCandle) []models.MBar {
	now := p.Now().UTC()
	bars := make([]models.MBar, 0, len(candles))

	for _, c := range candles {
		date := TradingDate(c.Datetime, p.Location)
		if !Contains(w, date) {
			continue
		}

		bars = append(bars, models.MBar{
			SymbolID:    symbol,
			Date:        date,
			Open:        price(c.Open.Value),
			High:        price(c.High.Value),
			Low:         price(c.Low.Value),
			Close:       price(c.Close.Value),
			Volume:      int64(math.Round(c.Volume.Value)),
			Provider:    p.Provider,
			Interval:    p.Interval,
			LastUpdated: now,
		})
	}

	slices.SortStableFunc(bars, func(a, b models.MBar) int {
		return a.Date.Compare(b.Date)
	})
	return slices.CompactFunc(bars, func(a, b models.MBar) bool {
		return a.Date.Equal(b.Date)
	})
}

// -----------------------------------------------------------------------------

// TradingDate maps an epoch millisecond timestamp to its session date in loc,
// stored at 12:00 UTC.
func TradingDate(epochMillis int64, loc *time.Location) time.Time {
	return utils.DateOf(time.UnixMilli(epochMillis), loc).Add(12 * time.Hour)
}

// -----------------------------------------------------------------------------

func price(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(models.PricePlaces)
}
