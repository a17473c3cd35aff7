package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/config"
	"github.com/chatrelay/chatrelay-server/internal/core"
	"github.com/chatrelay/chatrelay-server/internal/store"
	"github.com/chatrelay/chatrelay-server/internal/store/sqlite"
)

func startTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := zerolog.Nop()
	hub := core.NewHub(st, &logger, core.Options{StoreTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, st, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		DefaultRoom:       "Group 2",
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, st
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	return conn
}

type outboundFrame struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
	} `json:"error"`
}

func sendEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, eventType string, data any) {
	t.Helper()

	var raw json.RawMessage
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal %s payload: %v", eventType, err)
		}
		raw = payload
	}
	if err := wsjson.Write(ctx, conn, map[string]any{"type": eventType, "data": raw}); err != nil {
		t.Fatalf("write %s: %v", eventType, err)
	}
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) outboundFrame {
	t.Helper()

	var frame outboundFrame
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestChatScenario(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// B connects first and stays unidentified.
	connB := dialWS(t, ctx, ts)
	connA := dialWS(t, ctx, ts)

	sendEvent(t, ctx, connA, "add user", "alice")

	// A gets the login ack with its own count.
	login := readFrame(t, ctx, connA)
	if login.Type != "login" || !strings.Contains(string(login.Data), `"numUsers":1`) {
		t.Fatalf("unexpected login frame: %+v", login)
	}

	// B, though unidentified, sees the join announcement.
	joined := readFrame(t, ctx, connB)
	if joined.Type != "user joined" {
		t.Fatalf("unexpected frame on B: %+v", joined)
	}
	var joinData struct {
		Username string `json:"username"`
		NumUsers int    `json:"numUsers"`
	}
	if err := json.Unmarshal(joined.Data, &joinData); err != nil {
		t.Fatalf("unmarshal join data: %v", err)
	}
	if joinData.Username != "alice" || joinData.NumUsers != 1 {
		t.Fatalf("unexpected join data: %+v", joinData)
	}

	sendEvent(t, ctx, connA, "new message", "hi")

	relayed := readFrame(t, ctx, connB)
	if relayed.Type != "new message" {
		t.Fatalf("unexpected frame on B: %+v", relayed)
	}
	var msgData struct {
		Username string `json:"username"`
		Message  string `json:"message"`
	}
	if err := json.Unmarshal(relayed.Data, &msgData); err != nil {
		t.Fatalf("unmarshal message data: %v", err)
	}
	if msgData.Username != "alice" || msgData.Message != "hi" {
		t.Fatalf("unexpected message data: %+v", msgData)
	}

	// The persisted record lands in the default room and is queryable over
	// the read path.
	resp, err := ts.Client().Get(ts.URL + "/getMessages?chatRoomId=Group%202")
	if err != nil {
		t.Fatalf("getMessages request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("unexpected getMessages status: %d", resp.StatusCode)
	}
	var history []MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].Username != "alice" || history[0].Message != "hi" {
		t.Fatalf("unexpected history: %+v", history)
	}

	// The sender never receives its own broadcast. The short read deadline
	// tears down A's connection, so this check comes last.
	shortCtx, shortCancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer shortCancel()
	var stray outboundFrame
	if err := wsjson.Read(shortCtx, connA, &stray); err == nil {
		t.Fatalf("sender received its own broadcast: %+v", stray)
	}
}

func TestTypingRelay(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connB := dialWS(t, ctx, ts)
	connA := dialWS(t, ctx, ts)

	sendEvent(t, ctx, connA, "add user", "alice")
	readFrame(t, ctx, connA) // login
	readFrame(t, ctx, connB) // user joined

	sendEvent(t, ctx, connA, "typing", nil)
	typing := readFrame(t, ctx, connB)
	if typing.Type != "typing" || !strings.Contains(string(typing.Data), `"username":"alice"`) {
		t.Fatalf("unexpected typing frame: %+v", typing)
	}

	sendEvent(t, ctx, connA, "stop typing", nil)
	stopped := readFrame(t, ctx, connB)
	if stopped.Type != "stop typing" {
		t.Fatalf("unexpected frame: %+v", stopped)
	}
}

func TestDisconnectAnnouncesDeparture(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connB := dialWS(t, ctx, ts)
	connA := dialWS(t, ctx, ts)

	sendEvent(t, ctx, connA, "add user", "alice")
	readFrame(t, ctx, connA) // login
	readFrame(t, ctx, connB) // user joined

	connA.Close(websocket.StatusNormalClosure, "bye")

	left := readFrame(t, ctx, connB)
	if left.Type != "user left" {
		t.Fatalf("unexpected frame: %+v", left)
	}
	var leftData struct {
		Username string `json:"username"`
		NumUsers int    `json:"numUsers"`
	}
	if err := json.Unmarshal(left.Data, &leftData); err != nil {
		t.Fatalf("unmarshal user left data: %v", err)
	}
	if leftData.Username != "alice" || leftData.NumUsers != 0 {
		t.Fatalf("unexpected user left data: %+v", leftData)
	}
}

func TestUnknownEventType(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)

	sendEvent(t, ctx, conn, "launch missiles", nil)

	frame := readFrame(t, ctx, conn)
	if frame.Type != "error" || frame.Error == nil || frame.Error.Code != "invalid_message" {
		t.Fatalf("expected invalid_message error, got %+v", frame)
	}
}
