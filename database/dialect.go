package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Dialector returns the GORM dialector for cfg.
func Dialector(cfg Config) gorm.Dialector {
	if cfg.ResolvedDriver() == DriverPostgres {
		return postgres.Open(cfg.DSN)
	}
	return sqlite.Open(cfg.DSN)
}
