package storage

import (
	"fmt"

	"secmaster/src/config"
	"secmaster/src/interfaces"
	"secmaster/src/logger"
)

// New returns the configured backend. Call Initialize before use.
func New(cfg *config.Config, log *logger.Logger) (interfaces.IDatabase, error) {
	switch cfg.Storage.DBType {
	case "postgres":
		return NewPostgresDB(cfg.PostgresDSN(), log), nil
	case "sqlite":
		return NewSQLiteDB(cfg.Storage.DBPath, log), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.Storage.DBType)
	}
}
