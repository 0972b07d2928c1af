package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jobcoach/coach-api/internal/app/coaching"
	"github.com/jobcoach/coach-api/internal/domain"
	"github.com/jobcoach/coach-api/internal/observability"
)

type Server struct {
	svc *coaching.Service
}

func NewServer(svc *coaching.Service) http.Handler {
	s := &Server{svc: svc}
	mux := http.NewServeMux()

	// /chat        → GET: one batch exchange (query params session_id, user_input)
	// /chat/stream → POST: incremental exchange, text/plain chunks
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/chat/stream", s.handleChatStream)
	mux.HandleFunc("/healthz", s.handleHealth)

	return chainMiddlewares(mux, withCORS, withRequestID, withLogging)
}

// ─────────────────────────────────────────────
// DTOs
// ─────────────────────────────────────────────

type chatResponse struct {
	Response string `json:"response"`
}

type chatStreamRequest struct {
	SessionID string `json:"sessionId"`
	UserInput string `json:"userInput"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	userInput := r.URL.Query().Get("user_input")
	if sessionID == "" {
		badRequest(w, "session_id is required")
		return
	}
	if strings.TrimSpace(userInput) == "" {
		badRequest(w, "User input cannot be empty.")
		return
	}

	reply, err := s.svc.HandleTurn(r.Context(), domain.SessionID(sessionID), userInput)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		badRequest(w, "sessionId is required")
		return
	}
	if strings.TrimSpace(req.UserInput) == "" {
		badRequest(w, "User input cannot be empty.")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		internalError(w)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	wroteAny := false
	err := s.svc.HandleTurnStream(r.Context(), domain.SessionID(req.SessionID), req.UserInput, func(fragment string) error {
		if _, werr := w.Write([]byte(fragment)); werr != nil {
			return werr
		}
		wroteAny = true
		flusher.Flush()
		return nil
	})
	if err != nil && !wroteAny {
		writeServiceError(w, r, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────
// HTTP helpers
// ─────────────────────────────────────────────

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := observability.LoggerFromContext(r.Context())
	switch {
	case errors.Is(err, coaching.ErrEmptyInput):
		badRequest(w, "User input cannot be empty.")
	case errors.Is(err, coaching.ErrBackendFailure):
		log.Error("model backend failure", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "The model did not return a valid response.",
		})
	default:
		log.Error("chat request failed", "error", err)
		internalError(w)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
