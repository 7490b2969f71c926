// Package database provides the SQLite store behind the LightGuard fault
// journal.
//
// This package manages:
//   - The connection, with WAL mode and a busy timeout
//   - Versioned schema migrations read from an fs.FS
//   - An in-memory mode (Path ":memory:") for tests and bench runs
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration Strategy:
//
// Migrations are additive-only:
//   - New columns must be NULLABLE or have DEFAULT values
//   - Each migration file has both .up.sql and .down.sql
//   - Files are named YYYYMMDD_HHMMSS_description.{up,down}.sql
package database
