package websocket

import "time"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is the only client message shape.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Messages (Server → Client) ─────────────────────────────────────

type MessageType string

const (
	TypeReady    MessageType = "session.ready"
	TypeReplaced MessageType = "session.replaced"
	TypeEnded    MessageType = "session.ended"
	TypePong     MessageType = "pong"
	TypeError    MessageType = "error"
)

// Message is every server-sent frame. Pages reload on replaced and ended.
type Message struct {
	Type  MessageType `json:"type"`
	At    *time.Time  `json:"at,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Terminal reports whether the session the page shows is gone.
func (m Message) Terminal() bool {
	return m.Type == TypeReplaced || m.Type == TypeEnded
}
