// Package server exposes the chat and knowledge-base admin HTTP API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jhlu2019/GustoBot-sub001/internal/kb"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/supervisor"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// HealthChecker probes one dependency.
type HealthChecker func(ctx context.Context) types.HealthStatus

// Server wires the HTTP mux to the supervisor and KB service.
type Server struct {
	sup       *supervisor.Supervisor
	kbService *kb.Service
	checks    map[string]HealthChecker
	logger    *observability.TracedLogger
	mux       *http.ServeMux
}

// New builds the HTTP server. kbService may be nil; its endpoints then
// answer 503.
func New(sup *supervisor.Supervisor, kbService *kb.Service, checks map[string]HealthChecker, logger *observability.TracedLogger) *Server {
	s := &Server{
		sup:       sup,
		kbService: kbService,
		checks:    checks,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("GET /api/chat/stream", s.handleChatStream)
	s.mux.HandleFunc("POST /api/kb/documents", s.handleIngestDocument)
	s.mux.HandleFunc("DELETE /api/kb/documents/{id}", s.handleDeleteDocument)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	Question  string `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}
	if req.Question == "" {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "question is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	resp := s.sup.HandleTurn(r.Context(), req.SessionID, req.UserID, req.Question)
	s.writeJSON(w, http.StatusOK, resp)
}

// handleChatStream answers over SSE: the answer is sent as delta events
// followed by a done event carrying the response metadata.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("question")
	if question == "" {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "question query parameter is required")
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	userID := r.URL.Query().Get("user_id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "STREAM_UNSUPPORTED", "response writer does not support streaming")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	resp := s.sup.HandleTurn(r.Context(), sessionID, userID, question)

	for _, chunk := range splitChunks(resp.Answer, 64) {
		writeSSE(w, "delta", map[string]string{"content": chunk})
		flusher.Flush()
		select {
		case <-r.Context().Done():
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
	writeSSE(w, "done", resp)
	flusher.Flush()
}

type ingestRequest struct {
	ID       string            `json:"id,omitempty"`
	Title    string            `json:"title,omitempty"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type ingestResponse struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
}

func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	if s.kbService == nil {
		s.writeError(w, http.StatusServiceUnavailable, "KB_UNAVAILABLE", "knowledge base is not configured")
		return
	}
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}
	if req.Content == "" {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "content is required")
		return
	}

	doc := kb.Document{
		ID:        req.ID,
		Title:     req.Title,
		Content:   req.Content,
		Metadata:  req.Metadata,
		CreatedAt: time.Now(),
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	chunks, err := s.kbService.Ingest(r.Context(), doc)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, string(types.CodeOf(err)), err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, ingestResponse{DocumentID: doc.ID, Chunks: chunks})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if s.kbService == nil {
		s.writeError(w, http.StatusServiceUnavailable, "KB_UNAVAILABLE", "knowledge base is not configured")
		return
	}
	id := r.PathValue("id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "document id is required")
		return
	}
	if err := s.kbService.Delete(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, string(types.CodeOf(err)), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status     string                        `json:"status"`
	Components map[string]types.HealthStatus `json:"components,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if len(s.checks) > 0 {
		resp.Components = make(map[string]types.HealthStatus, len(s.checks))
		for name, check := range s.checks {
			status := check(r.Context())
			resp.Components[name] = status
			if status.State == types.HealthStateUnhealthy {
				resp.Status = "degraded"
			}
		}
	}
	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, resp)
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.logger != nil {
		s.logger.Warn(context.Background(), "failed to encode response", "error", err)
	}
}

func writeSSE(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n"))
}

// splitChunks cuts text into rune-safe pieces for streaming.
func splitChunks(text string, size int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	var chunks []string
	for len(runes) > size {
		chunks = append(chunks, string(runes[:size]))
		runes = runes[size:]
	}
	return append(chunks, string(runes))
}
