package models

// MListing is one row of an exchange listings file.
type MListing struct {
	Symbol    string
	Name      string
	TestIssue string
}

// MImportResult summarises the import of one listings file.
type MImportResult struct {
	Filename    string `json:"filename"`
	NewSymbols  int    `json:"new_symbols"`
	AlreadyInDB int    `json:"already_in_db"`
	Excluded    int    `json:"exclude"`
}

// MProfile is the classification data returned by the enrichment source.
type MProfile struct {
	Symbol    string
	ShortName string
	Sector    string
	Industry  string
	QuoteType string
}
