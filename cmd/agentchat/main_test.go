package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/PabloGalante/agent-chat/internal/adapters/http"
	"github.com/PabloGalante/agent-chat/internal/adapters/llm"
	"github.com/PabloGalante/agent-chat/internal/adapters/storage/memory"
	"github.com/PabloGalante/agent-chat/internal/app/conversation"
	"github.com/PabloGalante/agent-chat/internal/app/tools"
	"github.com/PabloGalante/agent-chat/internal/domain"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	svc := conversation.NewService(llm.NewMockLLM(), memory.NewSessionStore(), memory.NewMessageStore(), tools.NewDesignTool(""))
	srv := httptest.NewServer(httpadapter.NewServer(svc, nil))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AGENTCHAT_LLM_PROVIDER", "mock")
	t.Setenv("AGENTCHAT_STORAGE_BACKEND", "memory")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAskPrintsReplyAndVisual(t *testing.T) {
	srv := newBackend(t)

	out, err := runCLI(t, "ask", "--url", srv.URL+"/chat", "--session", "cli-test", "design", "a", "logo")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if !strings.Contains(out, "Design complete!") || !strings.Contains(out, "visual: "+tools.DefaultDesignBaseURL) {
		t.Fatalf("unexpected output %q", out)
	}
	if cfg.SessionID != "cli-test" {
		t.Fatalf("session flag not applied, got %q", cfg.SessionID)
	}
}

func TestAskFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := runCLI(t, "ask", "--url", srv.URL, "hello")
	if err != domain.ErrAgentCommunication {
		t.Fatalf("expected ErrAgentCommunication, got %v", err)
	}
}

func TestInvalidTimeoutFlagIsRejected(t *testing.T) {
	_, err := runCLI(t, "ask", "--timeout", "-1s", "hello")
	if err == nil {
		t.Fatalf("expected validation error for negative timeout")
	}
}

func TestTimeoutFlagOverridesInvalidEnv(t *testing.T) {
	srv := newBackend(t)
	t.Setenv("AGENTCHAT_AGENT_TIMEOUT", "0s")

	out, err := runCLI(t, "ask", "--url", srv.URL+"/chat", "--timeout", "5s", "hello")
	if err != nil {
		t.Fatalf("flag should override the environment: %v", err)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestAskIgnoresBackendSettings(t *testing.T) {
	srv := newBackend(t)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"ask", "--url", srv.URL + "/chat", "hi"})
	t.Setenv("AGENTCHAT_LLM_PROVIDER", "vertex")
	t.Setenv("AGENTCHAT_GCP_PROJECT", "")
	t.Setenv("GCP_PROJECT", "")

	if err := cmd.Execute(); err != nil {
		t.Fatalf("ask should not require backend settings: %v", err)
	}
}
