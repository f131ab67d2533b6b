package conversation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/PabloGalante/agent-chat/internal/adapters/llm"
	"github.com/PabloGalante/agent-chat/internal/adapters/storage/memory"
	"github.com/PabloGalante/agent-chat/internal/app/conversation"
	"github.com/PabloGalante/agent-chat/internal/app/tools"
	"github.com/PabloGalante/agent-chat/internal/domain"
)

func newService() *conversation.Service {
	return conversation.NewService(
		llm.NewMockLLM(),
		memory.NewSessionStore(),
		memory.NewMessageStore(),
		tools.NewDesignTool(""),
	)
}

func TestChatCreatesSessionAndRecordsTurns(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	out, err := svc.Chat(ctx, conversation.ChatInput{SessionID: "s1", UserInput: "hello"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if out.Message == "" || out.DesignResultURL != "" {
		t.Fatalf("unexpected chat output %+v", out)
	}

	out, err = svc.Chat(ctx, conversation.ChatInput{SessionID: "s1", UserInput: "design a flyer"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if out.DesignResultURL == "" {
		t.Fatalf("expected a design url")
	}

	session, msgs, err := svc.GetSessionTimeline(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("GetSessionTimeline failed: %v", err)
	}
	if session.Turns != 2 {
		t.Fatalf("expected 2 turns, got %d", session.Turns)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	wantRoles := []domain.Role{domain.RoleUser, domain.RoleAgent, domain.RoleUser, domain.RoleAgent}
	for i, m := range msgs {
		if m.Role != wantRoles[i] {
			t.Fatalf("message %d: expected %s, got %s", i, wantRoles[i], m.Role)
		}
	}
	if msgs[3].VisualOutputURL != out.DesignResultURL {
		t.Fatalf("agent message should carry the design url")
	}
}

func TestChatRejectsEmptyInput(t *testing.T) {
	_, err := newService().Chat(context.Background(), conversation.ChatInput{SessionID: "s1", UserInput: "  "})
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestGetSessionTimelineUnknownSession(t *testing.T) {
	_, _, err := newService().GetSessionTimeline(context.Background(), "missing", 0)
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
