package updater

import (
	"encoding/json"
	"testing"

	"secmaster/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candle(ms int64, close models.MNumber) models.MCandle {
	return models.MCandle{
		Open: models.Num(10), High: models.Num(11), Low: models.Num(9),
		Close: close, Volume: models.Num(1000), Datetime: ms,
	}
}

func TestSanitizeEmptyResponse(t *testing.T) {
	candles, ok := Sanitize(models.MPriceHistory{
		Empty:   true,
		Candles: []models.MCandle{candle(1, models.Num(10))},
	})

	assert.False(t, ok)
	assert.Nil(t, candles)
}

func TestSanitizeDropsSingleNaNField(t *testing.T) {
	c := candle(1, models.Num(10))
	c.Volume = models.NaN()

	candles, ok := Sanitize(models.MPriceHistory{Candles: []models.MCandle{c}})

	assert.True(t, ok)
	assert.Empty(t, candles)
}

func TestSanitizeKeepsOrder(t *testing.T) {
	resp := models.MPriceHistory{Candles: []models.MCandle{
		candle(1, models.Num(10)),
		candle(2, models.NaN()),
		candle(3, models.Num(12)),
	}}

	candles, ok := Sanitize(resp)

	require.True(t, ok)
	require.Len(t, candles, 2)
	assert.Equal(t, int64(1), candles[0].Datetime)
	assert.Equal(t, int64(3), candles[1].Datetime)
}

func TestSanitizeDecodedSentinel(t *testing.T) {
	body := `{"symbol":"X","empty":false,"candles":[
		{"open":1,"high":2,"low":0.5,"close":"NaN","volume":10,"datetime":1704218400000},
		{"open":1,"high":2,"low":0.5,"close":1.5,"volume":"NaN","datetime":1704304800000},
		{"open":1,"high":2,"low":0.5,"close":1.5,"volume":10,"datetime":1704391200000}]}`

	var resp models.MPriceHistory
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	candles, ok := Sanitize(resp)

	require.True(t, ok)
	require.Len(t, candles, 1)
	assert.Equal(t, int64(1704391200000), candles[0].Datetime)
}
