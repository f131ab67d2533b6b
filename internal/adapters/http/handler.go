package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PabloGalante/agent-chat/internal/app/conversation"
	"github.com/PabloGalante/agent-chat/internal/domain"
)

const (
	maxRequestBytes = 1 << 20
	maxAudioBytes   = 25 << 20
)

type Server struct {
	svc *conversation.Service
}

// NewServer builds the dev agent backend router.
func NewServer(svc *conversation.Service, allowedOrigins []string) http.Handler {
	s := &Server{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(withLogging)
	r.Use(middleware.Recoverer)
	r.Use(withCORS(allowedOrigins))

	r.Get("/", s.handleHealth)
	r.Post("/chat", s.handleChat)
	r.Post("/stt", s.handleSpeechToText)
	r.Get("/sessions/{id}", s.handleGetSession)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		methodNotAllowed(w)
	})

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	UserInput *string `json:"user_input"`
	SessionID *string `json:"session_id"`
}

type chatResponse struct {
	Message         string  `json:"message"`
	DesignResultURL *string `json:"design_result_url"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Turns     int       `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type messageResponse struct {
	ID              string    `json:"id"`
	Role            string    `json:"role"`
	Content         string    `json:"content"`
	VisualOutputURL string    `json:"visual_output_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "AI Agent Backend is operational.",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserInput == nil || strings.TrimSpace(*req.UserInput) == "" {
		badRequest(w, "user_input is required")
		return
	}
	if req.SessionID == nil || strings.TrimSpace(*req.SessionID) == "" {
		badRequest(w, "session_id is required")
		return
	}

	out, err := s.svc.Chat(r.Context(), conversation.ChatInput{
		SessionID: domain.SessionID(*req.SessionID),
		UserInput: *req.UserInput,
	})
	if err != nil {
		internalError(w)
		return
	}

	resp := chatResponse{Message: out.Message}
	if out.DesignResultURL != "" {
		resp.DesignResultURL = &out.DesignResultURL
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleSpeechToText accepts an audio upload; transcription is not wired to
// a model yet, so it answers with placeholder text.
func (s *Server) handleSpeechToText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)

	file, header, err := r.FormFile("audio_file")
	if err != nil {
		badRequest(w, "audio_file is required")
		return
	}
	defer file.Close()

	n, err := io.Copy(io.Discard, file)
	if err != nil {
		badRequest(w, "could not read audio_file")
		return
	}

	loggerFor(r).Info("received audio upload", "filename", header.Filename, "bytes", n)

	writeJSON(w, http.StatusOK, map[string]string{
		"text": "This is a placeholder for your transcribed voice input.",
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(chi.URLParam(r, "id"))

	session, msgs, err := s.svc.GetSessionTimeline(r.Context(), id, 0)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(session),
		Messages: toMessagesResponse(msgs),
	})
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:        string(s.ID),
		Turns:     s.Turns,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:              string(m.ID),
		Role:            string(m.Role),
		Content:         m.Content,
		VisualOutputURL: m.VisualOutputURL,
		CreatedAt:       m.CreatedAt,
	}
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
