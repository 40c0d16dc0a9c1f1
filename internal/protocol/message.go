package protocol

import "fmt"

// MaxMessageSize is the largest client frame the server reads.
const MaxMessageSize = 1024

// MaxKeyLength bounds the key field; browser key names are short.
const MaxKeyLength = 32

// MessageType identifies a message on the wire.
type MessageType string

// Client to server.
const (
	TypeKey   MessageType = "key"
	TypePing  MessageType = "ping"
	TypeReset MessageType = "reset"
)

// Server to client.
const (
	TypeDisplay MessageType = "display"
	TypeError   MessageType = "error"
	TypePong    MessageType = "pong"
)

// ClientMessage is sent by the browser page.
type ClientMessage struct {
	Type MessageType `json:"type"`
	Key  string      `json:"key,omitempty"`
}

// ServerMessage is sent to the browser page.
type ServerMessage struct {
	Type    MessageType `json:"type"`
	Display string      `json:"display"`
	State   string      `json:"state,omitempty"`
	Action  string      `json:"action,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// String returns a compact description for logs.
func (m *ClientMessage) String() string {
	if m.Type == TypeKey {
		return fmt.Sprintf("%s(%q)", m.Type, m.Key)
	}
	return string(m.Type)
}

// String returns a compact description for logs.
func (m *ServerMessage) String() string {
	switch m.Type {
	case TypeDisplay:
		return fmt.Sprintf("%s(%q, %s)", m.Type, m.Display, m.State)
	case TypeError:
		return fmt.Sprintf("%s(%s)", m.Type, m.Error)
	default:
		return string(m.Type)
	}
}
