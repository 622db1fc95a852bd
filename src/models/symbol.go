package models

import "time"

// MSymbol is one tradable instrument in the securities master.
// Classification fields stay nil until the enrichment updater fills them.
type MSymbol struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Sector      *string   `json:"sector"`
	Industry    *string   `json:"industry"`
	QuoteType   *string   `json:"quote_type"`
	Provider    string    `json:"provider"`
	ToUpdate    bool      `json:"to_update"`
	LastUpdated time.Time `json:"last_updated"`
}

// MClassification holds the enrichment fields of a symbol.
type MClassification struct {
	Sector    *string `json:"sector"`
	Industry  *string `json:"industry"`
	QuoteType *string `json:"quote_type"`
}

// Classification returns the classification fields of the symbol.
func (s MSymbol) Classification() MClassification {
	return MClassification{Sector: s.Sector, Industry: s.Industry, QuoteType: s.QuoteType}
}

type MProvider struct {
	ID          string    `json:"id"`
	LastUpdated time.Time `json:"last_updated"`
}

type MInterval struct {
	ID string `json:"id"`
}

type MEarningDate struct {
	ID          int64     `json:"id"`
	SymbolID    string    `json:"symbol_id"`
	EarningDate time.Time `json:"earning_date"`
	Provider    string    `json:"provider"`
	LastUpdated time.Time `json:"last_updated"`
}
