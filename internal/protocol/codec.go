package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/muurk/tapcalc/internal/calc"
)

// ErrInvalidMessage wraps every client message rejected by ParseClientMessage.
var ErrInvalidMessage = errors.New("invalid message")

// ParseClientMessage decodes and validates a client frame.
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrInvalidMessage)
	}
	if len(data) > MaxMessageSize {
		return nil, fmt.Errorf("%w: frame too large: %d bytes (max %d)", ErrInvalidMessage, len(data), MaxMessageSize)
	}

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	switch msg.Type {
	case TypeKey:
		if msg.Key == "" {
			return nil, fmt.Errorf("%w: key message without key", ErrInvalidMessage)
		}
		if len(msg.Key) > MaxKeyLength || !utf8.ValidString(msg.Key) {
			return nil, fmt.Errorf("%w: malformed key %q", ErrInvalidMessage, msg.Key)
		}
	case TypePing, TypeReset:
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, msg.Type)
	}

	return &msg, nil
}

// ParseServerMessage decodes a server frame. Used by clients and tests.
func ParseServerMessage(data []byte) (*ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode server message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("server message without type")
	}
	return &msg, nil
}

// BuildDisplay reports the current display. evalErr is the error returned
// by the action that produced it, if any.
func BuildDisplay(d *calc.Display, action calc.Action, evalErr error) *ServerMessage {
	msg := &ServerMessage{
		Type:    TypeDisplay,
		Display: d.Text(),
		State:   string(d.State()),
	}
	if action != calc.ActionNone {
		msg.Action = action.String()
	}
	var calcErr *calc.Error
	if errors.As(evalErr, &calcErr) {
		msg.Error = calcErr.Kind.String()
	}
	return msg
}

// BuildError reports a rejected request; the display is included so the
// page stays in sync.
func BuildError(d *calc.Display, reason string) *ServerMessage {
	return &ServerMessage{
		Type:    TypeError,
		Display: d.Text(),
		State:   string(d.State()),
		Error:   reason,
	}
}

// BuildPong answers a ping.
func BuildPong(d *calc.Display) *ServerMessage {
	return &ServerMessage{Type: TypePong, Display: d.Text()}
}

// BuildKey builds a key message for clients.
func BuildKey(key string) *ClientMessage {
	return &ClientMessage{Type: TypeKey, Key: key}
}
