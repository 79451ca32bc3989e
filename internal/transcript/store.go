// Package transcript keeps the local record of chat exchanges and
// clarification outcomes.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Role identifies who produced an entry.
type Role string

// Role constants.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Kind classifies an entry.
type Kind string

// Kind constants.
const (
	KindMessage       Kind = "message"
	KindReceipt       Kind = "receipt"
	KindClarification Kind = "clarification"
)

// Outcome texts recorded after a clarification ends.
const (
	TextProcessed = "processing succeeded"
	TextCancelled = "processing cancelled"
)

// Entry is one line of the transcript.
type Entry struct {
	CreatedAt time.Time
	SessionID string
	UserID    string
	Role      Role
	Kind      Kind
	Text      string
	ID        int64
}

// Store is a SQLite-backed transcript.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens (creating if needed) the transcript database at dbPath.
// Use ":memory:" for a throwaway store.
func Open(dbPath string) (*Store, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records an entry and returns its id. A zero CreatedAt is set to now.
func (s *Store) Append(ctx context.Context, e Entry) (int64, error) {
	if err := validateEntry(e); err != nil {
		return 0, err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Kind == "" {
		e.Kind = KindMessage
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (session_id, user_id, role, kind, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.UserID, string(e.Role), string(e.Kind), e.Text, e.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to append entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read entry id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit of the newest entries, oldest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, user_id, role, kind, text, created_at
		FROM entries
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			role, kind string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.UserID, &role, &kind, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Role = Role(role)
		e.Kind = Kind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	slices.Reverse(entries)
	return entries, nil
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("failed to clear transcript: %w", err)
	}
	return nil
}
