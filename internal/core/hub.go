package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/store"
)

// session is the hub's record of one registered connection. Only the hub
// goroutine touches it.
type session struct {
	client   *Client
	name     string
	admitted bool
}

type opKind int

const (
	opRegister opKind = iota
	opUnregister
	opAdmit
	opBroadcast
	opCount
)

// op is a request processed by the hub goroutine. Everything that touches
// shared state flows through one channel so that ordering per client is the
// order the ops were enqueued.
type op struct {
	kind   opKind
	client *Client
	name   string
	event  *Event
	reply  chan int
}

// Hub owns the connection registry and the admitted-user count, and fans
// events out to room peers. All shared state is confined to the Run
// goroutine; store writes never happen there.
type Hub struct {
	store    store.Store
	log      *zerolog.Logger
	opts     Options
	ops      chan op
	sessions map[*Client]*session
	numUsers int
}

// Options tune hub behaviour.
type Options struct {
	// StoreTimeout bounds every durable store call. Zero means no bound.
	StoreTimeout time.Duration
	// OnWriteFailure is the policy applied when a durable write fails.
	OnWriteFailure WriteFailurePolicy
}

// NewHub creates a hub backed by the given store.
func NewHub(st store.Store, logger *zerolog.Logger, opts Options) *Hub {
	return &Hub{
		store:    st,
		log:      logger,
		opts:     opts,
		ops:      make(chan op, 64),
		sessions: make(map[*Client]*session),
	}
}

// Run processes hub operations until the context is cancelled. Must be
// running before clients are registered.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-h.ops:
			h.handle(o)
		}
	}
}

// RegisterClient adds a connection to the registry and starts consuming its
// commands. The connection is unidentified until its first add user command
// is admitted.
func (h *Hub) RegisterClient(c *Client) {
	h.ops <- op{kind: opRegister, client: c}
	go h.serveClient(c)
}

// UnregisterClient retires a connection. If it was admitted, the departure
// is announced to its room. Safe to call for never-admitted connections.
func (h *Hub) UnregisterClient(c *Client) {
	h.ops <- op{kind: opUnregister, client: c}
}

// NumUsers reports the number of currently admitted connections.
func (h *Hub) NumUsers() int {
	reply := make(chan int, 1)
	h.ops <- op{kind: opCount, reply: reply}
	return <-reply
}

func (h *Hub) handle(o op) {
	switch o.kind {
	case opRegister:
		h.sessions[o.client] = &session{client: o.client}

	case opUnregister:
		sess, ok := h.sessions[o.client]
		if !ok {
			return
		}
		delete(h.sessions, o.client)
		if !sess.admitted {
			return
		}
		h.numUsers--
		h.broadcast(o.client, &Event{
			Kind:     EventUserLeft,
			Username: sess.name,
			NumUsers: h.numUsers,
		})

	case opAdmit:
		sess, ok := h.sessions[o.client]
		if !ok || sess.admitted {
			return
		}
		sess.name = o.name
		sess.admitted = true
		h.numUsers++
		h.send(o.client, &Event{Kind: EventLogin, NumUsers: h.numUsers})
		h.broadcast(o.client, &Event{
			Kind:     EventUserJoined,
			Username: o.name,
			NumUsers: h.numUsers,
		})

	case opBroadcast:
		if _, ok := h.sessions[o.client]; !ok {
			return
		}
		h.broadcast(o.client, o.event)

	case opCount:
		o.reply <- h.numUsers
	}
}

// broadcast delivers an event to every connection in the source's room
// except the source itself.
func (h *Hub) broadcast(from *Client, event *Event) {
	for client := range h.sessions {
		if client == from || client.Room != from.Room {
			continue
		}
		h.send(client, event)
	}
}

// send delivers an event without blocking the hub.
func (h *Hub) send(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
		h.log.Warn().Str("client_id", c.ID).Msg("dropping event for slow consumer")
	}
}
