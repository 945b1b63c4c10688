package models

import "time"

// Chat represents a conversation container in the chat system. It provides basic identification and
// labeling capabilities for organizing message threads.
type Chat struct {
	ID    string
	Title string
}

// Message represents an individual communication entry within a chat. The Content field is an
// append-only text buffer while the assistant response is streaming, and is immutable once the
// stream ends. Assistant content is stored raw, including any thinking delimiter tags.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
}

// Role represents the role of a message participant.
type Role string

const (
	// RoleUser represents a user message.
	RoleUser Role = "user"
	// RoleAssistant represents an assistant message.
	RoleAssistant Role = "assistant"
	// RoleSystem represents the fixed system instruction prepended by the relay.
	RoleSystem Role = "system"
)

// Streaming display states carried on rendered message elements so the client knows whether to
// subscribe for live updates.
const (
	StreamingStateLoading   = "loading"
	StreamingStateStreaming = "streaming"
	StreamingStateEnded     = "ended"
)
