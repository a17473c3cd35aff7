// Command ws_chat is a small terminal client for poking at a running relay.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/chatrelay/chatrelay-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3300/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	room := flag.String("room", "", "chat room (server default when empty)")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	target := *addr
	if *room != "" {
		target += "?chatRoomId=" + url.QueryEscape(*room)
	}

	conn, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	namePayload, err := json.Marshal(*user)
	if err != nil {
		return fmt.Errorf("marshal username: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeAddUser, Data: namePayload}); err != nil {
		return fmt.Errorf("send add user: %w", err)
	}

	fmt.Printf("Connected to %s as %s\n", target, *user)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var frame struct {
			Type  string          `json:"type"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch frame.Type {
		case proto.OutboundTypeLogin:
			var data proto.LoginData
			if err := json.Unmarshal(frame.Data, &data); err != nil {
				log.Printf("unmarshal login: %v", err)
				continue
			}
			fmt.Printf("logged in, %d user(s) online\n", data.NumUsers)
		case proto.OutboundTypeNewMessage:
			var data proto.NewMessageData
			if err := json.Unmarshal(frame.Data, &data); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			fmt.Printf("%s: %s\n", data.Username, data.Message)
		case proto.OutboundTypeUserJoined:
			var data proto.UserJoinedData
			if err := json.Unmarshal(frame.Data, &data); err != nil {
				log.Printf("unmarshal user joined: %v", err)
				continue
			}
			fmt.Printf("%s joined (%d online)\n", data.Username, data.NumUsers)
		case proto.OutboundTypeUserLeft:
			var data proto.UserLeftData
			if err := json.Unmarshal(frame.Data, &data); err != nil {
				log.Printf("unmarshal user left: %v", err)
				continue
			}
			fmt.Printf("%s left (%d online)\n", data.Username, data.NumUsers)
		case proto.OutboundTypeTyping, proto.OutboundTypeStopTyping:
			// Ignore typing noise in the terminal.
		case proto.OutboundTypeError:
			if frame.Error != nil {
				fmt.Printf("server error: %s (%s)\n", frame.Error.Msg, frame.Error.Code)
			}
		default:
			fmt.Printf("event=%s data=%s\n", frame.Type, frame.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			payload, err := json.Marshal(text)
			if err != nil {
				log.Printf("marshal msg: %v", err)
				return
			}
			if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeNewMessage, Data: payload}); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
