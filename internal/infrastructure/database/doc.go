// Package database provides SQLite connectivity for Rundown Core.
//
// This package manages:
//   - The connection, with WAL mode so API reads do not block as-run writes
//   - Schema migrations embedded by the migrations package
//   - Health checks for the /health endpoint
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migrations are additive: new columns must be NULLABLE or have DEFAULT
// values, and each .up.sql has a matching .down.sql.
package database
