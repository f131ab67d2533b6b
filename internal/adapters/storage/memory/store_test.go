package memory_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/PabloGalante/agent-chat/internal/adapters/storage/memory"
	"github.com/PabloGalante/agent-chat/internal/domain"
)

func TestMessageStoreKeepsInsertionOrder(t *testing.T) {
	store := memory.NewMessageStore()

	for i := 0; i < 5; i++ {
		msg := &domain.Message{
			ID:        domain.MessageID(fmt.Sprintf("m%d", i)),
			SessionID: "s1",
			Role:      domain.RoleUser,
			Content:   fmt.Sprintf("text %d", i),
		}
		if err := store.AppendMessage(msg); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}
	_ = store.AppendMessage(&domain.Message{ID: "other", SessionID: "s2"})

	all, err := store.GetMessagesBySession("s1", 0)
	if err != nil {
		t.Fatalf("GetMessagesBySession failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(all))
	}
	for i, m := range all {
		if want := domain.MessageID(fmt.Sprintf("m%d", i)); m.ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, m.ID)
		}
	}

	last, _ := store.GetMessagesBySession("s1", 2)
	if len(last) != 2 || last[0].ID != "m3" || last[1].ID != "m4" {
		t.Fatalf("expected last two messages, got %+v", last)
	}
}

func TestMessageStoreReturnsCopy(t *testing.T) {
	store := memory.NewMessageStore()
	_ = store.AppendMessage(&domain.Message{ID: "a", SessionID: "s"})

	got, _ := store.GetMessagesBySession("s", 0)
	got[0] = &domain.Message{ID: "mutated"}

	again, _ := store.GetMessagesBySession("s", 0)
	if again[0].ID != "a" {
		t.Fatalf("store was mutated through returned slice")
	}
}

func TestSessionStore(t *testing.T) {
	store := memory.NewSessionStore()

	if _, err := store.GetSession("missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	sess := &domain.Session{ID: "s1"}
	if err := store.CreateSession(sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := store.CreateSession(sess); !errors.Is(err, domain.ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}

	sess.Turns = 3
	if err := store.UpdateSession(sess); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	got, err := store.GetSession("s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Turns != 3 {
		t.Fatalf("expected 3 turns, got %d", got.Turns)
	}

	if err := store.UpdateSession(&domain.Session{ID: "nope"}); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on update, got %v", err)
	}
}
