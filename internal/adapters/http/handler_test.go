package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PabloGalante/agent-chat/internal/adapters/agentclient"
	httpadapter "github.com/PabloGalante/agent-chat/internal/adapters/http"
	"github.com/PabloGalante/agent-chat/internal/adapters/llm"
	"github.com/PabloGalante/agent-chat/internal/adapters/storage/memory"
	"github.com/PabloGalante/agent-chat/internal/app/chat"
	"github.com/PabloGalante/agent-chat/internal/app/conversation"
	"github.com/PabloGalante/agent-chat/internal/app/tools"
	"github.com/PabloGalante/agent-chat/internal/domain"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	convSvc := conversation.NewService(
		llm.NewMockLLM(),
		memory.NewSessionStore(),
		memory.NewMessageStore(),
		tools.NewDesignTool(""),
	)

	return httpadapter.NewServer(convSvc, []string{"http://localhost:5173"})
}

func postChat(t *testing.T, srv http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestChatDesignIntent(t *testing.T) {
	srv := newTestServer(t)

	w := postChat(t, srv, `{"user_input":"design a poster","session_id":"user-session-123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if url, _ := resp["design_result_url"].(string); !strings.HasPrefix(url, tools.DefaultDesignBaseURL) {
		t.Fatalf("expected design_result_url, got %v", resp["design_result_url"])
	}
}

func TestChatPlainIntentHasNoDesignURL(t *testing.T) {
	srv := newTestServer(t)

	w := postChat(t, srv, `{"user_input":"hello","session_id":"s"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["design_result_url"] != nil {
		t.Fatalf("expected null design_result_url, got %v", resp["design_result_url"])
	}
	if msg, _ := resp["message"].(string); msg == "" {
		t.Fatalf("expected message")
	}
}

func TestChatValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"user_input":`},
		{"missing input", `{"session_id":"s"}`},
		{"blank input", `{"user_input":"  ","session_id":"s"}`},
		{"missing session", `{"user_input":"hi"}`},
	}

	srv := newTestServer(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if w := postChat(t, srv, tc.body); w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestChatMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestGetSession(t *testing.T) {
	srv := newTestServer(t)
	postChat(t, srv, `{"user_input":"hello","session_id":"s1"}`)

	req := httptest.NewRequest(http.MethodGet, "/sessions/s1", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Messages []map[string]any `json:"messages"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Messages))
	}

	req = httptest.NewRequest(http.MethodGet, "/sessions/unknown", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSpeechToText(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("audio_file", "clip.wav")
	part.Write([]byte("RIFF...."))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/stt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"text"`) {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/stt", strings.NewReader(""))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a file, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("origin should not be allowed, got %q", got)
	}
}

func TestChatSessionAgainstBackend(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t))
	defer ts.Close()

	client := agentclient.NewClient(agentclient.Options{Endpoint: ts.URL + "/chat"})
	sess := chat.NewSession(domain.NewSessionContext("e2e"), client, memory.NewMessageStore())

	ex, err := sess.Submit(context.Background(), "design a birthday card")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	reply := ex.Wait()

	if reply.Role != domain.RoleAgent || !reply.HasVisual() {
		t.Fatalf("expected agent reply with visual, got %+v", reply)
	}

	ex, err = sess.Submit(context.Background(), "thanks")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if reply := ex.Wait(); reply.Role != domain.RoleAgent || reply.HasVisual() {
		t.Fatalf("expected plain agent reply, got %+v", reply)
	}

	if n := len(sess.Messages()); n != 4 {
		t.Fatalf("expected 4 messages, got %d", n)
	}
}
