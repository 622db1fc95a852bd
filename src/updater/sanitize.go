package updater

import "secmaster/src/models"

// Sanitize drops every candle with a "NaN" field and keeps the rest in order.
// It returns ok=false when the upstream flagged the response as empty; a
// response whose candles are all invalid yields ok=true and no candles.
func Sanitize(resp models.MPriceHistory) (candles []models.MCandle, ok bool) {
	if resp.Empty {
		return nil, false
	}

	candles = make([]models.MCandle, 0, len(resp.Candles))
	for _, c := range resp.Candles {
		if c.Open.NaN || c.High.NaN || c.Low.NaN || c.Close.NaN || c.Volume.NaN {
			continue
		}
		candles = append(candles, c)
	}
	return candles, true
}
