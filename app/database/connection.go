package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB handle so repository code stays decoupled from the
// driver choice.
type DB struct {
	*sql.DB
}

// NewConnection opens (creating if needed) the SQLite database at path.
// WAL mode plus a busy timeout keeps the pipeline and the digest server
// from tripping over each other's reads.
func NewConnection(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The dedup gate's check-then-insert assumes a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}
