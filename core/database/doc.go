// Package database handles the connection to the export history database and schema inspection.
//
// It wraps GORM and supports two drivers: MySQL for deployments and SQLite for local runs and
// tests. The connection is optional; without it the server keeps working and export runs are
// simply not recorded.
//
// # Connect
//
// Connect opens the database, tunes the connection pool and pings it within the configured
// timeout.
//
// # Schema Inspection
//
// TableColumns and MissingColumns read the live column list of a table. The history store
// uses them after migration to verify that the table it writes to has the expected shape.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logger.Warn("History disabled", zap.Error(err))
//	}
//
//	missing, err := database.MissingColumns(db, "export_runs", []string{"id", "status"})
package database
