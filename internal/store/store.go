package store

import (
	"context"
	"time"
)

// Message is a durably recorded chat message. Records are immutable once
// written; the relay never updates or deletes them.
type Message struct {
	ChatRoomID string
	Username   string
	Body       string
	Timestamp  time.Time
}

// JoinRecord marks a user joining the chat. Written at most once per
// connection; the same username may appear again for later connections.
type JoinRecord struct {
	Username string
	JoinedAt time.Time
}

// Store is the durable append-only store behind the relay. Implementations
// must be safe for concurrent use: writes arrive from per-connection
// goroutines while history reads come from HTTP handlers.
type Store interface {
	// PutMessage appends a message record.
	PutMessage(ctx context.Context, msg *Message) error

	// PutJoin appends a join record.
	PutJoin(ctx context.Context, rec *JoinRecord) error

	// MessagesByRoom returns every message recorded for the room in write
	// order.
	MessagesByRoom(ctx context.Context, chatRoomID string) ([]*Message, error)

	// Close closes the underlying database connection.
	Close() error
}
