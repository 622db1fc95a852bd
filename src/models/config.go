package models

import "time"

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	LogLevel   string            `yaml:"log_level"`
	Server     MServerConfig     `yaml:"server"`
	Storage    MStorageConfig    `yaml:"storage"`
	Network    MNetworkConfig    `yaml:"network"`
	Upstream   MUpstreamConfig   `yaml:"upstream"`
	Listings   MListingsConfig   `yaml:"listings"`
	Enrichment MEnrichmentConfig `yaml:"enrichment"`
	Updater    MUpdaterConfig    `yaml:"updater"`
}

type MServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Name               string `yaml:"name"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	SSLMode            string `yaml:"ssl_mode"`
}

type MNetworkConfig struct {
	Proxies        []string      `yaml:"proxies"`
	RequestTimeout int           `yaml:"timeout"`
	MaxRetries     int           `yaml:"retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	UserAgent      string        `yaml:"user_agent"`
}

// MUpstreamConfig configures the brokerage price-history API.
type MUpstreamConfig struct {
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	TokenPath    string `yaml:"token_path"`
	HistoryYears int    `yaml:"history_years"`
}

// MListingsConfig configures the exchange listings FTP feed.
type MListingsConfig struct {
	Server         string         `yaml:"server"`
	User           string         `yaml:"user"`
	Password       string         `yaml:"password"`
	Dir            string         `yaml:"dir"`
	DestinationDir string         `yaml:"destination_dir"`
	Timeout        time.Duration  `yaml:"timeout"`
	BatchSize      int            `yaml:"batch_size"`
	Files          []MListingFile `yaml:"files"`
}

type MListingFile struct {
	Filename string   `yaml:"filename"`
	Columns  []int    `yaml:"columns"` // symbol, name, test issue
	Provider string   `yaml:"provider"`
	Exclude  []string `yaml:"exclude"`
}

type MEnrichmentConfig struct {
	BaseURL string `yaml:"base_url"`
}

// MUpdaterConfig drives the bar batch driver and ingestion pipeline.
type MUpdaterConfig struct {
	Provider     string        `yaml:"provider"`
	Interval     string        `yaml:"interval"`
	Denylist     []string      `yaml:"denylist"`
	BatchSize    int           `yaml:"batch_size"`
	BoundaryHour int           `yaml:"boundary_hour"`
	ShortDelay   time.Duration `yaml:"short_delay"`
	MediumDelay  time.Duration `yaml:"medium_delay"`
	MediumEvery  int           `yaml:"medium_every"`
	LongDelay    time.Duration `yaml:"long_delay"`
	LongEvery    int           `yaml:"long_every"`
}
