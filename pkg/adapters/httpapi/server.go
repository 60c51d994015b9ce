// Package httpapi exposes the assistant over a small JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/domain"
)

// Assistant is the subset of the steward API the server needs.
type Assistant interface {
	HandleTurn(ctx context.Context, sessionID, userText, screenContext string) (*domain.TurnState, error)
	Confirm(ctx context.Context, sessionID string, approved bool) (*domain.TurnState, error)
	Schema(ctx context.Context) string
}

// Server serves the assistant endpoints.
type Server struct {
	assistant Assistant
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for the assistant.
func NewHandler(assistant Assistant, opts ...Option) http.Handler {
	s := &Server{
		assistant: assistant,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/turn", s.handleTurn)
	r.Post("/confirm", s.handleConfirm)
	r.Get("/schema", s.handleSchema)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

type turnRequest struct {
	SessionID     string `json:"session_id,omitempty"`
	Text          string `json:"text"`
	ScreenContext string `json:"screen_context,omitempty"`
}

type turnResponse struct {
	SessionID           string `json:"session_id"`
	Response            string `json:"response"`
	Error               string `json:"error,omitempty"`
	NeedsConfirmation   bool   `json:"needs_confirmation"`
	ConfirmationMessage string `json:"confirmation_message,omitempty"`
	NeedsClarification  bool   `json:"needs_clarification,omitempty"`
	Iterations          int    `json:"iterations"`
}

type confirmRequest struct {
	SessionID string `json:"session_id"`
	Approved  bool   `json:"approved"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var body turnRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	state, err := s.assistant.HandleTurn(r.Context(), body.SessionID, body.Text, body.ScreenContext)
	if err != nil {
		s.logger.Error("turn failed", "err", err)
		http.Error(w, "turn failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stateToResponse(state))
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var body confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	state, err := s.assistant.Confirm(r.Context(), body.SessionID, body.Approved)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			http.Error(w, "session not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrNoPendingAction):
			http.Error(w, "nothing pending confirmation", http.StatusConflict)
		default:
			s.logger.Error("confirm failed", "err", err)
			http.Error(w, "confirm failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, stateToResponse(state))
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(s.assistant.Schema(r.Context())))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func stateToResponse(state *domain.TurnState) turnResponse {
	resp := turnResponse{
		SessionID:          state.SessionID,
		Response:           state.Response,
		Error:              state.Err,
		NeedsClarification: state.NeedsClarification,
		Iterations:         state.Iterations,
	}
	if p := state.PendingConfirmation; p != nil {
		resp.NeedsConfirmation = true
		resp.ConfirmationMessage = p.Message
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
