package domain

import "context"

// AgentClient sends user text to the remote agent.
type AgentClient interface {
	Send(ctx context.Context, sess SessionContext, text string) (*AgentResponse, error)
}

// LLMClient defines how the assistant backend interacts with an LLM service.
type LLMClient interface {
	GenerateReply(ctx context.Context, prompt string, convCtx ConversationContext) (string, error)
}

// ConversationContext gives the LLM minimal context about the conversation.
type ConversationContext struct {
	SessionID SessionID
	History   []*Message // last N turns
}

// SessionStore defines session's persistence
type SessionStore interface {
	CreateSession(session *Session) error
	UpdateSession(session *Session) error
	GetSession(id SessionID) (*Session, error)
}

// MessageStore defines message's persistence. It is append-only.
type MessageStore interface {
	AppendMessage(msg *Message) error
	GetMessagesBySession(sessionID SessionID, limit int) ([]*Message, error)
}
