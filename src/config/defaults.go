package config

import (
	"time"

	"secmaster/src/models"
)

// Default values for optional configuration fields.
const (
	DefaultName               = "secmaster"
	DefaultLogLevel           = "info"
	DefaultServerHost         = "127.0.0.1"
	DefaultServerPort         = 8090
	DefaultDBType             = "sqlite"
	DefaultDBPath             = "secmaster.db"
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultRequestTimeout     = 30
	DefaultMaxRetries         = 3
	DefaultRetryDelay         = 1 * time.Second
	DefaultUserAgent          = "secmaster/1.0"
	DefaultUpstreamURL        = "https://api.tdameritrade.com/v1"
	DefaultTokenPath          = "assets/token.json"
	DefaultHistoryYears       = 20
	DefaultFTPServer          = "ftp.nasdaqtrader.com"
	DefaultFTPDir             = "symboldirectory"
	DefaultFTPUser            = "anonymous"
	DefaultListingsDir        = "assets/nasdaq"
	DefaultFTPTimeout         = 30 * time.Second
	DefaultListingsBatchSize  = 1000
	DefaultEnrichmentURL      = "https://query2.finance.yahoo.com"
	DefaultProvider           = "TDA"
	DefaultInterval           = "EOD"
	DefaultBarBatchSize       = 1000
	DefaultBoundaryHour       = 5
	DefaultShortDelay         = 200 * time.Millisecond
	DefaultMediumDelay        = 1 * time.Second
	DefaultMediumEvery        = 10
	DefaultLongDelay          = 3 * time.Second
	DefaultLongEvery          = 100
	DefaultListingsProviderID = "NASDAQ"
)

// DefaultDenylist holds symbols with known upstream data problems.
var DefaultDenylist = []string{"CEI", "DCTH", "RSLS", "TOPS", "UVXY", "GMGI"}

// DefaultListingFiles are the NASDAQ symbol directory files.
func DefaultListingFiles() []models.MListingFile {
	return []models.MListingFile{
		{
			Filename: "nasdaqlisted.txt",
			Columns:  []int{0, 1, 3},
			Provider: DefaultListingsProviderID,
			Exclude:  []string{"$", "."},
		},
		{
			Filename: "otherlisted.txt",
			Columns:  []int{0, 1, 6},
			Provider: DefaultListingsProviderID,
			Exclude:  []string{"$", "."},
		},
	}
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	// Server defaults
	if c.Server.Host == "" {
		c.Server.Host = DefaultServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}

	// Storage defaults
	if c.Storage.DBType == "" {
		c.Storage.DBType = DefaultDBType
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = DefaultDBPath
	}
	if c.Storage.Port == 0 {
		c.Storage.Port = DefaultDBPort
	}
	if c.Storage.SSLMode == "" {
		c.Storage.SSLMode = DefaultDBSSLMode
	}

	// Network defaults
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = DefaultRequestTimeout
	}
	if c.Network.MaxRetries == 0 {
		c.Network.MaxRetries = DefaultMaxRetries
	}
	if c.Network.RetryDelay == 0 {
		c.Network.RetryDelay = DefaultRetryDelay
	}
	if c.Network.UserAgent == "" {
		c.Network.UserAgent = DefaultUserAgent
	}

	// Upstream defaults
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = DefaultUpstreamURL
	}
	if c.Upstream.TokenPath == "" {
		c.Upstream.TokenPath = DefaultTokenPath
	}
	if c.Upstream.HistoryYears == 0 {
		c.Upstream.HistoryYears = DefaultHistoryYears
	}

	// Listings defaults
	if c.Listings.Server == "" {
		c.Listings.Server = DefaultFTPServer
	}
	if c.Listings.Dir == "" {
		c.Listings.Dir = DefaultFTPDir
	}
	if c.Listings.User == "" {
		c.Listings.User = DefaultFTPUser
	}
	if c.Listings.DestinationDir == "" {
		c.Listings.DestinationDir = DefaultListingsDir
	}
	if c.Listings.Timeout == 0 {
		c.Listings.Timeout = DefaultFTPTimeout
	}
	if c.Listings.BatchSize == 0 {
		c.Listings.BatchSize = DefaultListingsBatchSize
	}
	if len(c.Listings.Files) == 0 {
		c.Listings.Files = DefaultListingFiles()
	}

	if c.Enrichment.BaseURL == "" {
		c.Enrichment.BaseURL = DefaultEnrichmentURL
	}

	// Updater defaults
	u := &c.Updater
	if u.Provider == "" {
		u.Provider = DefaultProvider
	}
	if u.Interval == "" {
		u.Interval = DefaultInterval
	}
	if u.Denylist == nil {
		u.Denylist = append([]string(nil), DefaultDenylist...)
	}
	if u.BatchSize == 0 {
		u.BatchSize = DefaultBarBatchSize
	}
	if u.BoundaryHour == 0 {
		u.BoundaryHour = DefaultBoundaryHour
	}
	if u.ShortDelay == 0 {
		u.ShortDelay = DefaultShortDelay
	}
	if u.MediumDelay == 0 {
		u.MediumDelay = DefaultMediumDelay
	}
	if u.MediumEvery == 0 {
		u.MediumEvery = DefaultMediumEvery
	}
	if u.LongDelay == 0 {
		u.LongDelay = DefaultLongDelay
	}
	if u.LongEvery == 0 {
		u.LongEvery = DefaultLongEvery
	}
}
