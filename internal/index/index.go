// Package index maintains the relational shadow of document metadata:
// tags and allow-listed attributes, kept in SQLite for fast filtered
// queries and space statistics. The index is a pure, re-derivable
// function of the on-disk store and holds no independent state.
package index

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"
)

const (
	busyTimeoutMS   = 5000
	maxOpenConns    = 1
	maxIdleConns    = 1
	connMaxLifetime = 5 * time.Minute
)

// Index wraps the SQLite search index database.
type Index struct {
	db          *sql.DB
	indexedKeys map[string]struct{}
}

// Open opens the index database, bootstraps the schema, and fixes the
// attribute allow-list for this instance.
func Open(path string, indexedAttributes []string) (*Index, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	keys := make(map[string]struct{}, len(indexedAttributes))
	for _, key := range indexedAttributes {
		keys[key] = struct{}{}
	}
	return &Index{db: db, indexedKeys: keys}, nil
}

// Close closes the underlying database connection.
func (ix *Index) Close() error {
	if ix == nil || ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// IndexedAttribute reports whether an attribute key is allow-listed
// for materialization.
func (ix *Index) IndexedAttribute(key string) bool {
	_, ok := ix.indexedKeys[key]
	return ok
}

func configureDB(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// Tune connection pool for local usage.
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("db path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), nil
}
