package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nerrad567/lightguard-core/internal/infrastructure/config"
)

// MemoryPath opens a private in-memory database instead of a file.
const MemoryPath = ":memory:"

const (
	dirPermissions  = 0o750
	filePermissions = 0o600

	msPerSecond = 1000

	connectionTimeout = 5 * time.Second
	connMaxIdleTime   = 30 * time.Minute
)

// DB wraps a sql.DB holding the fault journal.
type DB struct {
	*sql.DB
	path string
}

// Open creates a database connection from the database section of
// config.yaml.
//
// It performs the following setup:
//  1. Creates the database directory if it doesn't exist
//  2. Opens the database file with foreign keys and busy timeout
//  3. Enables WAL mode when configured
//  4. Verifies the connection with a ping
//  5. Restricts the file to owner read/write (0600)
//
// Path MemoryPath opens an in-memory database held by a single
// connection that is never recycled.
//
// Parameters:
//   - cfg: Database configuration
//
// Returns:
//   - *DB: Connected database wrapper
//   - error: If connection or configuration fails
func Open(cfg config.DatabaseConfig) (*DB, error) {
	memory := cfg.Path == MemoryPath

	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", cfg.Path, cfg.BusyTimeout*msPerSecond)
	if !memory {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		if cfg.WALMode {
			connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
		}
	}

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite has a single writer.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if memory {
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
	}

	db := &DB{DB: sqlDB, path: cfg.Path}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	if !memory {
		_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // File appears on first write
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the filesystem path of the database, or MemoryPath.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck runs a trivial query to verify the connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// ExecContext executes a statement that returns no rows, wrapping any
// error with a consistent prefix.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	result, err := db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return result, nil
}

// BeginTx starts a transaction.
//
// Example:
//
//	tx, err := db.BeginTx(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback() // No-op if committed
//
//	// ... execute queries on tx ...
//
//	return tx.Commit()
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return tx, nil
}
