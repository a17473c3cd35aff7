package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventLogin confirms admission to the connection that sent add user.
	EventLogin EventKind = iota
	// EventUserJoined notifies other connections about an admitted user.
	EventUserJoined
	// EventNewMessage notifies other connections about a chat message.
	EventNewMessage
	// EventTyping notifies other connections that a user started typing.
	EventTyping
	// EventStopTyping notifies other connections that a user stopped typing.
	EventStopTyping
	// EventUserLeft notifies other connections about a departure.
	EventUserLeft
)

// Event is sent to clients to describe what happened in the room.
type Event struct {
	Kind     EventKind
	Username string
	Text     string
	NumUsers int
}
