// Package history records successful parses in a local SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/drdon1234/weibo-parser/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS parses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL,
	media_type TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	published_at TEXT NOT NULL DEFAULT '',
	media_count INTEGER NOT NULL,
	parsed_at TEXT NOT NULL
);
`

// Entry is one recorded parse.
type Entry struct {
	URL         string
	MediaType   string
	Author      string
	PublishedAt string
	MediaCount  int
	ParsedAt    string
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one successful parse result.
func (s *Store) Record(m *media.ParsedMedia) error {
	_, err := s.db.Exec(
		`INSERT INTO parses (url, media_type, author, published_at, media_count, parsed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.SourceURL, m.Kind.String(), m.Author, m.PublishedAt, len(m.MediaURLs),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording parse: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *Store) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT url, media_type, author, published_at, media_count, parsed_at
		 FROM parses ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.URL, &e.MediaType, &e.Author, &e.PublishedAt, &e.MediaCount, &e.ParsedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}
