package models

import "time"

// MIngestResult reports what one pipeline run did for a symbol.
type MIngestResult struct {
	Symbol   string  `json:"symbol"`
	Window   MWindow `json:"window"`
	Skipped  bool    `json:"skipped"`
	NoData   bool    `json:"no_data"`
	Fetched  int     `json:"fetched"`
	Valid    int     `json:"valid"`
	Inserted int     `json:"inserted"`
}

type MFailure struct {
	Symbol string `json:"symbol"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// MRunSummary is the outcome of one batch driver run.
type MRunSummary struct {
	RunID    string        `json:"run_id"`
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Total    int           `json:"total"`
	Updated  int           `json:"updated"`
	Skipped  int           `json:"skipped"`
	NoData   int           `json:"no_data"`
	Failed   int           `json:"failed"`
	Inserted int           `json:"inserted"`
	Failures []MFailure    `json:"failures"`
	Elapsed  time.Duration `json:"elapsed"`
}

// MProgress is emitted after each processed symbol.
type MProgress struct {
	RunID    string `json:"run_id"`
	Symbol   string `json:"symbol"`
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Status   string `json:"status"`
	Inserted int    `json:"inserted"`
}
