// Package server exposes the Brahma orchestrator over HTTP: the chat,
// feedback, and upload operations, the externally triggered batch jobs, and
// a WebSocket event feed for the dashboard.
//
// The caller's identity arrives in the X-Brahma-User header. Authentication
// happens upstream (reverse proxy or gateway); this server trusts the header
// and enforces per-document ownership in the orchestrator.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/scrypster/brahma/internal/jobs"
	"github.com/scrypster/brahma/internal/llm"
	"github.com/scrypster/brahma/internal/orchestrator"
	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

// userHeader carries the authenticated caller identity.
const userHeader = "X-Brahma-User"

// Server wires the orchestrator and batch jobs into an HTTP API.
type Server struct {
	orch *orchestrator.Orchestrator
	st   store.Store
	hub  *EventHub
}

// New creates a Server. The hub may be nil to disable the event feed.
func New(orch *orchestrator.Orchestrator, st store.Store, hub *EventHub) *Server {
	return &Server{orch: orch, st: st, hub: hub}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/chat", s.handleChat)
	r.Post("/api/feedback", s.handleFeedback)
	r.Post("/api/uploads/process", s.handleUpload)
	r.Post("/api/jobs/decay", s.handleDecayJob)
	r.Post("/api/jobs/meta-learning", s.handleMetaLearningJob)

	if s.hub != nil {
		r.Get("/ws", s.hub.ServeHTTP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	SessionID        string `json:"session_id"`
	Query            string `json:"query"`
	AssociatedItemID string `json:"associated_item_id,omitempty"`
	SessionTitle     string `json:"session_title,omitempty"`
	Voice            string `json:"voice,omitempty"`
}

type chatResponse struct {
	SessionID    string `json:"session_id"`
	ResponseText string `json:"response_text"`
	AudioRef     string `json:"audio_ref,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := s.orch.ProcessChat(r.Context(), orchestrator.ChatInput{
		UserID:           userID,
		SessionID:        req.SessionID,
		UserQuery:        req.Query,
		AssociatedItemID: req.AssociatedItemID,
		SessionTitle:     req.SessionTitle,
		Voice:            req.Voice,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.Publish(EventChatCompleted, map[string]string{"session_id": out.SessionID})
	}
	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:    out.SessionID,
		ResponseText: out.ResponseText,
		AudioRef:     out.AudioRef,
	})
}

type feedbackRequest struct {
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
	Value     int    `json:"value"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.orch.HandleFeedback(r.Context(), orchestrator.FeedbackInput{
		UserID:    userID,
		SessionID: req.SessionID,
		MessageID: req.MessageID,
		Value:     req.Value,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.Publish(EventFeedbackApplied, map[string]string{
			"session_id": req.SessionID,
			"message_id": req.MessageID,
		})
	}

	resp := map[string]interface{}{"status": "ok"}
	if result.NewWeight != nil {
		resp["new_weight"] = *result.NewWeight
	}
	writeJSON(w, http.StatusOK, resp)
}

type uploadRequest struct {
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := s.orch.ProcessUpload(r.Context(), orchestrator.UploadInput{
		UserID:   userID,
		FileName: req.FileName,
		FileType: types.FileType(req.FileType),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.Publish(EventItemIngested, map[string]string{"item_id": item.ID})
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDecayJob(w http.ResponseWriter, r *http.Request) {
	processed, err := jobs.RunDecaySweep(r.Context(), s.st.Items())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if s.hub != nil {
		s.hub.Publish(EventDecayCompleted, map[string]int{"processed": processed})
	}
	writeJSON(w, http.StatusOK, map[string]int{"processed": processed})
}

func (s *Server) handleMetaLearningJob(w http.ResponseWriter, r *http.Request) {
	reported, err := jobs.RunMetaLearning(r.Context(), s.st.AgentLogs(), s.st.Messages(), s.st.Reports())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if s.hub != nil {
		s.hub.Publish(EventMetaLearningCompleted, map[string]int{"intents": reported})
	}
	writeJSON(w, http.StatusOK, map[string]int{"intents": reported})
}

// requireUser reads the caller identity header, writing a 401 when absent.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userHeader+" header")
		return "", false
	}
	return userID, true
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, llm.ErrUnavailable), errors.Is(err, llm.ErrCircuitOpen):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("server: internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
