package domain

import "time"

// Message is one entry in a chat timeline (user, agent or system).
// Messages are never mutated after they are appended to a store.
type Message struct {
	ID        MessageID
	SessionID SessionID
	Role      Role
	Content   string
	CreatedAt Timestamp

	// VisualOutputURL points to an image/design attached to an agent reply.
	// Empty means no visual output.
	VisualOutputURL string
}

func (m *Message) HasVisual() bool {
	return m.VisualOutputURL != ""
}

// AgentResponse is the reply of the remote agent for one exchange.
type AgentResponse struct {
	Message         string
	DesignResultURL string
}

// SessionContext scopes every request of a running client to one backend
// conversation. It is created once when the chat session starts.
type SessionContext struct {
	ID        SessionID
	StartedAt Timestamp
}

func NewSessionContext(id SessionID) SessionContext {
	return SessionContext{ID: id, StartedAt: time.Now()}
}

// Session is the backend view of a conversation.
type Session struct {
	ID        SessionID
	CreatedAt Timestamp
	UpdatedAt Timestamp
	Turns     int
}
