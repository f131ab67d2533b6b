package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/agent-chat/internal/app/agentflow"
	"github.com/PabloGalante/agent-chat/internal/app/tools"
	"github.com/PabloGalante/agent-chat/internal/domain"
	"github.com/PabloGalante/agent-chat/internal/observability"
)

// historyLimit bounds how many earlier turns are handed to the LLM.
const historyLimit = 20

// Service answers /chat requests for the dev agent backend.
type Service struct {
	sessionStore domain.SessionStore
	messageStore domain.MessageStore
	orchestrator *agentflow.Orchestrator
	now          func() time.Time
}

func NewService(
	llm domain.LLMClient,
	sessionStore domain.SessionStore,
	messageStore domain.MessageStore,
	designTool tools.Tool,
) *Service {
	return &Service{
		sessionStore: sessionStore,
		messageStore: messageStore,
		orchestrator: agentflow.NewDefaultOrchestrator(llm, designTool),
		now:          time.Now,
	}
}

type ChatInput struct {
	SessionID domain.SessionID
	UserInput string
}

type ChatOutput struct {
	Message         string
	DesignResultURL string
}

func (s *Service) Chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	text := strings.TrimSpace(in.UserInput)
	if text == "" {
		return nil, domain.ErrEmptyInput
	}

	log := observability.LoggerFromContext(ctx).With("session_id", in.SessionID)
	log.Info("received chat request", "user_input", text)

	session, err := s.ensureSession(in.SessionID)
	if err != nil {
		log.Error("failed to load session", "error", err)
		return nil, err
	}

	// history before the new turn, so the LLM does not see it twice
	history, err := s.messageStore.GetMessagesBySession(session.ID, historyLimit)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, err
	}

	userMsg := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Content:   text,
		CreatedAt: s.now(),
	}
	if err := s.messageStore.AppendMessage(userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	out, err := s.orchestrator.Run(ctx, text, domain.ConversationContext{
		SessionID: session.ID,
		History:   history,
	})
	if err != nil {
		log.Error("orchestrator failed", "error", err)
		return nil, err
	}

	agentMsg := &domain.Message{
		ID:              domain.MessageID(uuid.NewString()),
		SessionID:       session.ID,
		Role:            domain.RoleAgent,
		Content:         out.Reply,
		VisualOutputURL: out.DesignResultURL,
		CreatedAt:       s.now(),
	}
	if err := s.messageStore.AppendMessage(agentMsg); err != nil {
		log.Error("failed to append agent message", "error", err)
		return nil, err
	}

	session.Turns++
	session.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(session); err != nil {
		log.Error("failed to update session", "error", err)
		return nil, err
	}

	log.Info("chat request completed", "turns", session.Turns, "has_visual", out.DesignResultURL != "")

	return &ChatOutput{
		Message:         out.Reply,
		DesignResultURL: out.DesignResultURL,
	}, nil
}

// ensureSession returns the session, creating it on first contact.
func (s *Service) ensureSession(id domain.SessionID) (*domain.Session, error) {
	session, err := s.sessionStore.GetSession(id)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, err
	}

	now := s.now()
	session = &domain.Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionStore.CreateSession(session); err != nil {
		if errors.Is(err, domain.ErrSessionExists) {
			return s.sessionStore.GetSession(id)
		}
		return nil, err
	}
	return session, nil
}

func (s *Service) GetSessionTimeline(
	ctx context.Context,
	sessionID domain.SessionID,
	limit int,
) (*domain.Session, []*domain.Message, error) {

	log := observability.LoggerFromContext(ctx).With(
		"session_id", sessionID,
		"limit", limit,
	)

	session, err := s.sessionStore.GetSession(sessionID)
	if err != nil {
		log.Error("failed to get session", "error", err)
		return nil, nil, err
	}

	msgs, err := s.messageStore.GetMessagesBySession(sessionID, limit)
	if err != nil {
		log.Error("failed to get messages", "error", err)
		return nil, nil, err
	}

	log.Info("fetched session timeline", "message_count", len(msgs))

	return session, msgs, nil
}
