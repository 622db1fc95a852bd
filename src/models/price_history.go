package models

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// NaNSentinel is the literal the upstream uses for a missing numeric field.
const NaNSentinel = "NaN"

// MNumber is a candle field that is either a number or the "NaN" sentinel.
type MNumber struct {
	Value float64
	NaN   bool
}

// Num builds a numeric MNumber.
func Num(v float64) MNumber {
	return MNumber{Value: v}
}

// NaN builds a sentinel MNumber.
func NaN() MNumber {
	return MNumber{NaN: true}
}

func (n *MNumber) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = MNumber{NaN: true}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if s == NaNSentinel || err != nil || math.IsNaN(v) {
			*n = MNumber{NaN: true}
			return nil
		}
		*n = MNumber{Value: v}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = MNumber{Value: v}
	return nil
}

func (n MNumber) MarshalJSON() ([]byte, error) {
	if n.NaN {
		return json.Marshal(NaNSentinel)
	}
	return json.Marshal(n.Value)
}

// MCandle is one upstream price-history candle.
type MCandle struct {
	Open     MNumber `json:"open"`
	High     MNumber `json:"high"`
	Low      MNumber `json:"low"`
	Close    MNumber `json:"close"`
	Volume   MNumber `json:"volume"`
	Datetime int64   `json:"datetime"` // epoch milliseconds
}

// MPriceHistory is the upstream price-history response body.
type MPriceHistory struct {
	Symbol  string    `json:"symbol"`
	Empty   bool      `json:"empty"`
	Candles []MCandle `json:"candles"`
}

// MPriceHistoryRequest asks for daily candles, either the full available
// history (Full) or the bounded range [Start, End].
type MPriceHistoryRequest struct {
	Symbol string
	Full   bool
	Years  int
	Start  time.Time
	End    time.Time
}
