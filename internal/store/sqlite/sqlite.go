package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chatrelay/chatrelay-server/internal/store"
)

// Schema creates the tables the relay writes to. joins has no uniqueness
// constraint: the same username rejoining on a later connection is a new row.
const Schema = `
CREATE TABLE IF NOT EXISTS messages (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_room_id TEXT NOT NULL,
	username     TEXT NOT NULL,
	body         TEXT NOT NULL,
	created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(chat_room_id, id);

CREATE TABLE IF NOT EXISTS joins (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	username  TEXT NOT NULL,
	joined_at DATETIME NOT NULL
);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply an alternative schema or seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// PutMessage appends a message record.
func (s *SQLiteStore) PutMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (chat_room_id, username, body, created_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, msg.ChatRoomID, msg.Username, msg.Body, msg.Timestamp); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// PutJoin appends a join record.
func (s *SQLiteStore) PutJoin(ctx context.Context, rec *store.JoinRecord) error {
	query := `
		INSERT INTO joins (username, joined_at)
		VALUES (?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, rec.Username, rec.JoinedAt); err != nil {
		return fmt.Errorf("insert join: %w", err)
	}
	return nil
}

// MessagesByRoom returns every message recorded for the room, oldest first.
func (s *SQLiteStore) MessagesByRoom(ctx context.Context, chatRoomID string) ([]*store.Message, error) {
	query := `
		SELECT chat_room_id, username, body, created_at
		FROM messages
		WHERE chat_room_id = ?
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, chatRoomID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ChatRoomID, &msg.Username, &msg.Body, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
