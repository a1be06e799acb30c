package vault

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Index is the SQLite-backed link index of a vault.
//
// The index holds one row per document and one row per deduplicated link
// edge. It is derived state: Rebuild recreates it from document content at
// the start of every sync pass, so it is never the source of truth.
type Index struct {
	db *sql.DB
}

// OpenIndex creates or opens the index database at the given path.
// Applies required pragmas and the schema; idempotent, safe to call on an
// existing database.
func OpenIndex(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to index database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY during rebuilds.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply index schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the database connection.
func (i *Index) Close() error {
	if i.db == nil {
		return nil
	}
	return i.db.Close()
}

// Rebuild clears the index and repopulates it from the given documents and
// edges in a single transaction. Self-links and duplicate edges are
// expected to be filtered by the caller, but the schema tolerates
// duplicates via INSERT OR IGNORE.
func (i *Index) Rebuild(docs []Document, edges []Edge) error {
	tx, err := i.db.Begin()
	if err != nil {
		return fmt.Errorf("rebuild index: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.Exec(`DELETE FROM links`); err != nil {
		return fmt.Errorf("rebuild index: clear links: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM documents`); err != nil {
		return fmt.Errorf("rebuild index: clear documents: %w", err)
	}

	insertDoc, err := tx.Prepare(`INSERT OR IGNORE INTO documents (name, mtime) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("rebuild index: prepare: %w", err)
	}
	defer insertDoc.Close()

	insertLink, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("rebuild index: prepare: %w", err)
	}
	defer insertLink.Close()

	for _, d := range docs {
		if _, err := insertDoc.Exec(d.Name, d.ModTime); err != nil {
			return fmt.Errorf("rebuild index: insert document %s: %w", d.Name, err)
		}
	}
	for _, e := range edges {
		if _, err := insertLink.Exec(e.Source, e.Target); err != nil {
			return fmt.Errorf("rebuild index: insert link %s->%s: %w", e.Source, e.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rebuild index: commit: %w", err)
	}
	return nil
}

// LinksFrom returns the distinct link targets of one document, sorted.
func (i *Index) LinksFrom(name string) ([]string, error) {
	rows, err := i.db.Query(`SELECT target FROM links WHERE source = ? ORDER BY target`, name)
	if err != nil {
		return nil, fmt.Errorf("query links from %s: %w", name, err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan link target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// AllLinks returns the full source → targets map.
func (i *Index) AllLinks() (map[string][]string, error) {
	rows, err := i.db.Query(`SELECT source, target FROM links ORDER BY source, target`)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	links := make(map[string][]string)
	for rows.Next() {
		var source, target string
		if err := rows.Scan(&source, &target); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links[source] = append(links[source], target)
	}
	return links, rows.Err()
}

// DocumentCount returns the number of indexed documents.
func (i *Index) DocumentCount() (int, error) {
	var n int
	if err := i.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
