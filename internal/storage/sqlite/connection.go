package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	_ "modernc.org/sqlite"
)

// DB wraps the single shared *sql.DB connection pool. SQLite serializes
// writers internally; capping MaxOpenConns at 1 makes the claim
// transaction in internal/queue/client.go behave like a server-side row
// lock.
type DB struct {
	conn   *sql.DB
	logger arbor.ILogger
	path   string
}

// Open creates (or reopens) the database file, applies pragmas, and
// installs the schema.
func Open(path string, logger arbor.ILogger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn, logger: logger, path: path}

	if err := db.configure(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.InitSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info().Str("path", path).Msg("sqlite database initialized")
	return db, nil
}

func (d *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := d.conn.Exec(p); err != nil {
			return fmt.Errorf("executing %s: %w", p, err)
		}
	}
	return nil
}

// Conn returns the underlying *sql.DB for packages that need raw access
// (the queue client's claim transaction, the product store's upsert).
func (d *DB) Conn() *sql.DB {
	return d.conn
}

// Close closes the connection pool.
func (d *DB) Close() error {
	return d.conn.Close()
}
