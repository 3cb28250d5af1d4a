// Package history keeps a transcript of interactive sessions in SQLite:
// every evaluated input with its rendered result or error.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcript (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session    TEXT    NOT NULL,
	source     TEXT    NOT NULL,
	result     TEXT    NOT NULL,
	is_error   INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS transcript_session ON transcript(session, id);
`

// Entry is one evaluated input.
type Entry struct {
	ID        int64
	Session   string
	Source    string
	Result    string
	IsError   bool
	CreatedAt time.Time
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the transcript database at path.
// ":memory:" gives a private in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}
	// ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewSession returns a fresh session id.
func NewSession() string {
	return uuid.NewString()
}

func (s *Store) Record(ctx context.Context, session, source, result string, isError bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcript (session, source, result, is_error, created_at) VALUES (?, ?, ?, ?, ?)`,
		session, source, result, isError, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}

// Recent returns the last n entries across all sessions, oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session, source, result, is_error, created_at
		   FROM transcript ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Session returns every entry of one session, oldest first.
func (s *Store) Session(ctx context.Context, session string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session, source, result, is_error, created_at
		   FROM transcript WHERE session = ? ORDER BY id`, session)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Session, &e.Source, &e.Result, &e.IsError, &created); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
