package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandAddUser binds a username to the connection. Only the first
	// one has any effect.
	CommandAddUser CommandKind = iota
	// CommandSendMessage relays a chat message to the room.
	CommandSendMessage
	// CommandTyping tells the room the user started typing.
	CommandTyping
	// CommandStopTyping tells the room the user stopped typing.
	CommandStopTyping
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Name string // username for CommandAddUser
	Text string // message body for CommandSendMessage
}
