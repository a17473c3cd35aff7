package proto

import "encoding/json"

// Inbound is the envelope for events coming from the client. Event names and
// payload shapes mirror the chat wire protocol: add user and new message
// carry a bare JSON string, typing indicators carry nothing.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	InboundTypeAddUser    = "add user"
	InboundTypeNewMessage = "new message"
	InboundTypeTyping     = "typing"
	InboundTypeStopTyping = "stop typing"

	OutboundTypeLogin      = "login"
	OutboundTypeUserJoined = "user joined"
	OutboundTypeNewMessage = "new message"
	OutboundTypeTyping     = "typing"
	OutboundTypeStopTyping = "stop typing"
	OutboundTypeUserLeft   = "user left"
	OutboundTypeError      = "error"
)

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// LoginData acknowledges admission to the connection that requested it.
type LoginData struct {
	NumUsers int `json:"numUsers"`
}

// UserJoinedData announces an admitted user to the rest of the room.
type UserJoinedData struct {
	Username string `json:"username"`
	NumUsers int    `json:"numUsers"`
}

// NewMessageData carries a relayed chat message.
type NewMessageData struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// TypingData carries a typing or stop typing indicator.
type TypingData struct {
	Username string `json:"username"`
}

// UserLeftData announces a departure to the rest of the room.
type UserLeftData struct {
	Username string `json:"username"`
	NumUsers int    `json:"numUsers"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
