// Package hub provides a thread-safe websocket broadcast hub using
// the channel-based fan-out pattern. One hub carries the tracking
// result stream, another the annotated camera frames.
package hub

import "github.com/gofiber/websocket/v2"

// MessageType indicates the websocket message format.
type MessageType int

const (
	// JSONMessage is a JSON-encoded message (tracking results, status).
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data (JPEG annotated frames).
	BinaryMessage
)

// Message is a payload to be broadcast to all connected clients.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON bytes.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps raw binary data.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}

// wsFrameType returns the websocket frame type carrying this message:
// text frames for JSON, binary frames for everything else.
func (m Message) wsFrameType() int {
	if m.Type == BinaryMessage {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}
