package updater

import (
	"context"
	"errors"
	"testing"
	"time"

	"secmaster/src/helpers"
	"secmaster/src/interfaces"
	"secmaster/src/models"
	"secmaster/src/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedBar(t *testing.T, p *Pipeline, symbol string, date time.Time) {
	t.Helper()
	require.NoError(t, p.Store.AppendBars(context.Background(), []models.MBar{{
		SymbolID: symbol, Date: date,
		Open: decimal.NewFromInt(1), High: decimal.NewFromInt(1), Low: decimal.NewFromInt(1), Close: decimal.NewFromInt(1),
		Volume: 1, Provider: "TDA", Interval: "EOD", LastUpdated: date,
	}}))
}

func TestIngestEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "AAPL")
	src := &mockSource{}
	p := newTestPipeline(store, src, nyTime(2024, time.January, 5, 10, 0))
	seedBar(t, p, "AAPL", utcDate(2024, time.January, 2, 12))

	nanClose := validCandle(tdaMillis(2024, time.January, 4), 186)
	nanClose.Close = models.NaN()

	src.On("GetPriceHistory", mock.Anything, models.MPriceHistoryRequest{
		Symbol: "AAPL",
		Start:  utcDate(2024, time.January, 3, 5),
		End:    utcDate(2024, time.January, 5, 5),
	}).Return(&models.MPriceHistory{Symbol: "AAPL", Candles: []models.MCandle{
		validCandle(tdaMillis(2024, time.January, 3), 184.256789),
		nanClose,
	}}, nil).Once()

	res, err := p.Ingest(ctx, "AAPL")
	require.NoError(t, err)
	src.AssertExpectations(t)

	assert.Equal(t, models.WindowRange, res.Window.Mode)
	assert.Equal(t, 2, res.Fetched)
	assert.Equal(t, 1, res.Valid)
	assert.Equal(t, 1, res.Inserted)

	bars, err := store.LoadBars(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	got := bars[1]
	assert.Equal(t, utcDate(2024, time.January, 3, 12), got.Date)
	assert.Equal(t, "TDA", got.Provider)
	assert.Equal(t, "EOD", got.Interval)
	assert.Equal(t, "184.2568", got.Close.StringFixed(4))
	assert.Equal(t, int64(1_000_000), got.Volume)

	last, ok, err := store.MaxBarDate(ctx, "AAPL")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, utcDate(2024, time.January, 3, 12), last)
}

func TestIngestTwiceInsertsOnce(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "MSFT")
	src := &mockSource{}
	p := newTestPipeline(store, src, nyTime(2024, time.January, 5, 10, 0))

	src.On("GetPriceHistory", mock.Anything, mock.MatchedBy(func(r models.MPriceHistoryRequest) bool {
		return r.Full && r.Years == 20
	})).Return(&models.MPriceHistory{Symbol: "MSFT", Candles: []models.MCandle{
		validCandle(tdaMillis(2024, time.January, 2), 370),
		validCandle(tdaMillis(2024, time.January, 3), 371),
		validCandle(tdaMillis(2024, time.January, 4), 372),
		// partial session after the window end
		validCandle(tdaMillis(2024, time.January, 5), 373),
	}}, nil).Once()

	first, err := p.Ingest(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, models.WindowFullHistory, first.Window.Mode)
	assert.Equal(t, 3, first.Inserted)

	second, err := p.Ingest(ctx, "MSFT")
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Zero(t, second.Inserted)

	src.AssertExpectations(t)

	bars, err := store.LoadBars(ctx, "MSFT")
	require.NoError(t, err)
	assert.Len(t, bars, 3)
}

func TestIngestRepeatedRangeDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "AAPL")
	src := &mockSource{}
	p := newTestPipeline(store, src, nyTime(2024, time.January, 5, 10, 0))
	seedBar(t, p, "AAPL", utcDate(2024, time.January, 2, 12))

	nanClose := validCandle(tdaMillis(2024, time.January, 4), 186)
	nanClose.Close = models.NaN()
	resp := &models.MPriceHistory{Candles: []models.MCandle{
		validCandle(tdaMillis(2024, time.January, 3), 184),
		nanClose,
	}}
	src.On("GetPriceHistory", mock.Anything, mock.Anything).Return(resp, nil)

	first, err := p.Ingest(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	// Same upstream data: the window now starts on the 4th.
	second, err := p.Ingest(ctx, "AAPL")
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.True(t, second.NoData)

	bars, err := store.LoadBars(ctx, "AAPL")
	require.NoError(t, err)
	assert.Len(t, bars, 2)
}

func TestIngestEmptyResponse(t *testing.T) {
	store := newStore(t, "AAPL")
	src := &mockSource{}
	p := newTestPipeline(store, src, nyTime(2024, time.January, 5, 10, 0))

	src.On("GetPriceHistory", mock.Anything, mock.Anything).
		Return(&models.MPriceHistory{Empty: true}, nil).Once()

	res, err := p.Ingest(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, res.NoData)
	assert.Zero(t, res.Inserted)
}

func TestIngestUpstreamError(t *testing.T) {
	store := newStore(t, "AAPL")
	src := &mockSource{}
	p := newTestPipeline(store, src, nyTime(2024, time.January, 5, 10, 0))

	src.On("GetPriceHistory", mock.Anything, mock.Anything).
		Return(nil, helpers.NewUpstreamStatusError("/marketdata/AAPL/pricehistory", 500)).Once()

	_, err := p.Ingest(context.Background(), "AAPL")

	var statusErr *helpers.UpstreamStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 500, statusErr.StatusCode)
}

func TestIngestCommitsPerChunk(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "AAPL")
	src := &mockSource{}
	p := newTestPipeline(store, src, nyTime(2024, time.January, 12, 10, 0))
	p.BatchSize = 2

	candles := []models.MCandle{
		validCandle(tdaMillis(2024, time.January, 2), 1),
		validCandle(tdaMillis(2024, time.January, 3), 2),
		validCandle(tdaMillis(2024, time.January, 4), 3),
		validCandle(tdaMillis(2024, time.January, 5), 4),
		validCandle(tdaMillis(2024, time.January, 8), 5),
	}
	src.On("GetPriceHistory", mock.Anything, mock.Anything).
		Return(&models.MPriceHistory{Candles: candles}, nil).Once()

	p.Store = &failAfter{IBarStore: store, okChunks: 1}

	res, err := p.Ingest(ctx, "AAPL")
	require.Error(t, err)
	assert.Equal(t, "database", helpers.Kind(err))
	assert.Equal(t, 2, res.Inserted)

	last, ok, err := store.MaxBarDate(ctx, "AAPL")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, utcDate(2024, time.January, 3, 12), last)
}

func TestIngestDescendingResponseCommitsOldestFirst(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "AAPL")
	src := &mockSource{}
	p := newTestPipeline(store, src, nyTime(2024, time.January, 10, 10, 0))
	p.BatchSize = 2
	seedBar(t, p, "AAPL", utcDate(2024, time.January, 2, 12))

	newestFirst := &models.MPriceHistory{Candles: []models.MCandle{
		validCandle(tdaMillis(2024, time.January, 8), 5),
		validCandle(tdaMillis(2024, time.January, 5), 4),
		validCandle(tdaMillis(2024, time.January, 4), 3),
		validCandle(tdaMillis(2024, time.January, 3), 2),
	}}
	src.On("GetPriceHistory", mock.Anything, mock.Anything).Return(newestFirst, nil)

	p.Store = &failAfter{IBarStore: store, okChunks: 1}
	res, err := p.Ingest(ctx, "AAPL")
	require.Error(t, err)
	assert.Equal(t, 2, res.Inserted)

	bars, err := store.LoadBars(ctx, "AAPL")
	require.NoError(t, err)
	dates := make([]time.Time, len(bars))
	for i, b := range bars {
		dates[i] = b.Date
	}
	assert.Equal(t, []time.Time{
		utcDate(2024, time.January, 2, 12),
		utcDate(2024, time.January, 3, 12),
		utcDate(2024, time.January, 4, 12),
	}, dates)

	// The next run resumes right after the committed chunk.
	p.Store = store
	w, err := p.Resolver.Resolve(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, models.WindowRange, w.Mode)
	assert.Equal(t, utcDate(2024, time.January, 5, 5), w.From)

	res, err = p.Ingest(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)

	bars, err = store.LoadBars(ctx, "AAPL")
	require.NoError(t, err)
	assert.Len(t, bars, 5)
}

func TestIngestKeepsOneBarPerDate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "AAPL")
	src := &mockSource{}
	p := newTestPipeline(store, src, nyTime(2024, time.January, 5, 10, 0))
	seedBar(t, p, "AAPL", utcDate(2024, time.January, 2, 12))

	first := validCandle(tdaMillis(2024, time.January, 3), 184)
	again := validCandle(tdaMillis(2024, time.January, 3)+time.Hour.Milliseconds(), 190)
	src.On("GetPriceHistory", mock.Anything, mock.Anything).
		Return(&models.MPriceHistory{Candles: []models.MCandle{first, again}}, nil).Once()

	res, err := p.Ingest(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	bars, err := store.LoadBars(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "184", bars[1].Close.String())
}

func TestIngestMalformedResponseIsNoData(t *testing.T) {
	store := newStore(t, "AAPL")
	src := &mockSource{}
	p := newTestPipeline(store, src, nyTime(2024, time.January, 5, 10, 0))

	src.On("GetPriceHistory", mock.Anything, mock.Anything).
		Return(nil, helpers.NewValidationError("malformed price history for AAPL", errors.New("unexpected end of JSON input"))).Once()

	res, err := p.Ingest(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, res.NoData)
	assert.Zero(t, res.Inserted)
}

// failAfter lets okChunks AppendBars calls through and fails the rest.
type failAfter struct {
	interfaces.IBarStore
	okChunks int
	calls    int
}

func (f *failAfter) AppendBars(ctx context.Context, bars []models.MBar) error {
	f.calls++
	if f.calls > f.okChunks {
		return helpers.NewDatabaseError("insert bars", errors.New("connection reset"))
	}
	return f.IBarStore.AppendBars(ctx, bars)
}

func TestTradingDate(t *testing.T) {
	ny := utils.NewYork()

	// 2024-01-03 00:00 Central is 01:00 in New York.
	assert.Equal(t, utcDate(2024, time.January, 3, 12), TradingDate(tdaMillis(2024, time.January, 3), ny))
	// 03:00 UTC on the 4th is still the 3rd in New York.
	assert.Equal(t, utcDate(2024, time.January, 3, 12), TradingDate(utcDate(2024, time.January, 4, 3).UnixMilli(), ny))
}
