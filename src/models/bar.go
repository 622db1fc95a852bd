package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePlaces is the number of fractional digits kept for bar prices.
const PricePlaces = 4

// MBar is one end-of-day price bar. Date is the trading date at 12:00 UTC.
type MBar struct {
	SymbolID    string          `json:"symbol_id"`
	Date        time.Time       `json:"date"`
	Open        decimal.Decimal `json:"open"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Close       decimal.Decimal `json:"close"`
	Volume      int64           `json:"volume"`
	Provider    string          `json:"provider"`
	Interval    string          `json:"interval"`
	LastUpdated time.Time       `json:"last_updated"`
}
