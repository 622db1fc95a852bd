package updater

import (
	"context"
	"testing"
	"time"

	"secmaster/src/logger"
	"secmaster/src/models"
	"secmaster/src/storage"
	"secmaster/src/utils"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockSource is a testify mock of the upstream price-history API.
type mockSource struct {
	mock.Mock
}

func (m *mockSource) GetPriceHistory(ctx context.Context, req models.MPriceHistoryRequest) (*models.MPriceHistory, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.MPriceHistory)
	return resp, args.Error(1)
}

// nyTime builds a wall clock time in New York.
func nyTime(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, utils.NewYork())
}

func utcDate(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

// tdaMillis is the daily candle timestamp the upstream uses: midnight Central.
func tdaMillis(y int, m time.Month, d int) int64 {
	return utcDate(y, m, d, 6).UnixMilli()
}

func validCandle(ms int64, c float64) models.MCandle {
	return models.MCandle{
		Open: models.Num(c - 1), High: models.Num(c + 1), Low: models.Num(c - 2),
		Close: models.Num(c), Volume: models.Num(1_000_000), Datetime: ms,
	}
}

func newStore(t *testing.T, symbols ...string) *storage.SQLiteDB {
	t.Helper()
	ctx := context.Background()

	db := storage.NewSQLiteDB(storage.MemoryPath, logger.Discard())
	require.NoError(t, db.Initialize(ctx))
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.EnsureReferenceData(ctx,
		[]string{utils.ProviderTDA, utils.ProviderNASDAQ}, []string{utils.IntervalEOD}))

	rows := make([]models.MSymbol, 0, len(symbols))
	for _, s := range symbols {
		rows = append(rows, models.MSymbol{ID: s, Name: s, Provider: utils.ProviderNASDAQ, ToUpdate: true})
	}
	require.NoError(t, db.InsertSymbols(ctx, rows))
	return db
}

func testUpdaterConfig() models.MUpdaterConfig {
	return models.MUpdaterConfig{
		Provider:     utils.ProviderTDA,
		Interval:     utils.IntervalEOD,
		BatchSize:    1000,
		BoundaryHour: 5,
		ShortDelay:   200 * time.Millisecond,
		MediumDelay:  time.Second,
		MediumEvery:  10,
		LongDelay:    3 * time.Second,
		LongEvery:    100,
	}
}

func newTestPipeline(store *storage.SQLiteDB, src *mockSource, now time.Time) *Pipeline {
	p := NewPipeline(testUpdaterConfig(), 20, store, src, utils.NewStaticCalendar(), logger.Discard())
	p.Now = func() time.Time { return now }
	p.Resolver.Now = p.Now
	return p
}
