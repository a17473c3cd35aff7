package core

// Client is one live connection as seen by the core layer. Identity is not
// part of the handle: the hub tracks the assigned username in its session
// record once the connection is admitted.
type Client struct {
	ID   string
	Room string

	// Commands carries inbound actions for this connection. The transport
	// layer is the only sender and closes the channel on disconnect; the
	// hub consumes it strictly in order.
	Commands chan *Command

	// Events carries outbound events for this connection. Events are
	// dropped rather than blocking the hub when the consumer is slow.
	Events chan *Event
}

// NewClient constructs a client handle bound to a room.
func NewClient(id, room string) *Client {
	return &Client{
		ID:       id,
		Room:     room,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
	}
}

// CloseCommands signals that no further commands will arrive. Must be called
// exactly once, by the transport layer, after it stops sending.
func (c *Client) CloseCommands() {
	close(c.Commands)
}
