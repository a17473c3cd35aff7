package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/store"
)

// fakeStore records puts and can be told to fail the next N writes.
type fakeStore struct {
	mu       sync.Mutex
	joins    []*store.JoinRecord
	messages []*store.Message
	failPuts int
	putCalls int
}

func (f *fakeStore) PutMessage(_ context.Context, msg *store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	if f.failPuts > 0 {
		f.failPuts--
		return errStoreDown
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeStore) PutJoin(_ context.Context, rec *store.JoinRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	if f.failPuts > 0 {
		f.failPuts--
		return errStoreDown
	}
	f.joins = append(f.joins, rec)
	return nil
}

func (f *fakeStore) MessagesByRoom(_ context.Context, chatRoomID string) ([]*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Message
	for _, msg := range f.messages {
		if msg.ChatRoomID == chatRoomID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) failNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPuts = n
}

func (f *fakeStore) puts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putCalls
}

func (f *fakeStore) joinCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.joins)
}

var errStoreDown = errors.New("store unavailable")

func startTestHub(t *testing.T, st store.Store) *Hub {
	t.Helper()

	logger := zerolog.Nop()
	hub := NewHub(st, &logger, Options{StoreTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNoEvent asserts that nothing arrives on the channel for a short window.
func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}
