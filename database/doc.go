// Package database provides a GORM-based database component with connection
// pooling, retrying connect, health checks and transactions.
//
// The dialector is chosen from the configuration: driver "postgres" or a DSN
// that looks like a PostgreSQL URL or keyword string selects
// gorm.io/driver/postgres, anything else is treated as a SQLite file path
// (":memory:" included) and opened with gorm.io/driver/sqlite.
//
//	comp := database.NewComponent(cfg, log).WithAutoMigrate(&usage.AttemptRecord{})
//	registry.Register(comp)
package database
