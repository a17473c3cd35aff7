package core

import (
	"context"
	"time"

	"github.com/chatrelay/chatrelay-server/internal/store"
)

// WriteFailurePolicy decides what happens to an event whose durable write
// failed. The relay never retries and never reports the failure back over
// the wire; the policy exists so call sites name that decision instead of
// burying it.
type WriteFailurePolicy int

const (
	// WriteFailureDrop logs the failure and drops the event.
	WriteFailureDrop WriteFailurePolicy = iota
)

// serveClient consumes one connection's commands in emission order. Running
// per connection keeps store writes off the hub goroutine while still
// serializing each connection's own events: a second message is not touched
// until the first one's durable write has finished.
func (h *Hub) serveClient(c *Client) {
	added := false
	name := ""

	for cmd := range c.Commands {
		switch cmd.Kind {
		case CommandAddUser:
			if added {
				// Duplicate add user is a silent no-op.
				continue
			}
			rec := &store.JoinRecord{Username: cmd.Name, JoinedAt: time.Now().UTC()}
			if err := h.putJoin(rec); err != nil {
				h.dropWrite(c, "join", err)
				continue
			}
			added = true
			name = cmd.Name
			h.ops <- op{kind: opAdmit, client: c, name: name}

		case CommandSendMessage:
			if !added {
				// Identity-gated: messages before admission are dropped.
				h.log.Debug().Str("client_id", c.ID).Msg("dropping message from unidentified connection")
				continue
			}
			msg := &store.Message{
				ChatRoomID: c.Room,
				Username:   name,
				Body:       cmd.Text,
				Timestamp:  time.Now().UTC(),
			}
			if err := h.putMessage(msg); err != nil {
				h.dropWrite(c, "message", err)
				continue
			}
			h.ops <- op{kind: opBroadcast, client: c, event: &Event{
				Kind:     EventNewMessage,
				Username: name,
				Text:     cmd.Text,
			}}

		case CommandTyping, CommandStopTyping:
			if !added {
				continue
			}
			kind := EventTyping
			if cmd.Kind == CommandStopTyping {
				kind = EventStopTyping
			}
			h.ops <- op{kind: opBroadcast, client: c, event: &Event{
				Kind:     kind,
				Username: name,
			}}
		}
	}
}

func (h *Hub) putJoin(rec *store.JoinRecord) error {
	ctx, cancel := h.storeContext()
	defer cancel()
	return h.store.PutJoin(ctx, rec)
}

func (h *Hub) putMessage(msg *store.Message) error {
	ctx, cancel := h.storeContext()
	defer cancel()
	return h.store.PutMessage(ctx, msg)
}

// storeContext bounds a durable store call so a hung store cannot stall a
// connection forever.
func (h *Hub) storeContext() (context.Context, context.CancelFunc) {
	if h.opts.StoreTimeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), h.opts.StoreTimeout)
}

// dropWrite applies the write-failure policy. Only drop is implemented; a
// retry or backpressure policy would slot in here without touching call
// sites.
func (h *Hub) dropWrite(c *Client, record string, err error) {
	switch h.opts.OnWriteFailure {
	case WriteFailureDrop:
		h.log.Error().Err(err).Str("client_id", c.ID).Str("record", record).Msg("store write failed, dropping event")
	}
}
