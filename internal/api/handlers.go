package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/velours-studio/reflet/internal/features"
	"github.com/velours-studio/reflet/internal/feedback"
	"github.com/velours-studio/reflet/internal/store"
)

// ConversationRequest is the payload for POST /api/v1/conversations.
type ConversationRequest struct {
	UserText string           `json:"user_text"`
	Context  features.Context `json:"context"`
}

func (s *Server) processConversation(w http.ResponseWriter, r *http.Request) {
	var req ConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.UserText == "" {
		writeError(w, http.StatusBadRequest, "user_text is required")
		return
	}
	if req.Context.UserID == "" {
		writeError(w, http.StatusBadRequest, "context.user_id is required")
		return
	}

	result := s.orch.ProcessConversation(r.Context(), req.UserText, req.Context)
	writeJSON(w, http.StatusOK, result)
}

// TriggerRequest is the payload for POST /api/v1/feedback/trigger.
type TriggerRequest struct {
	Event  string `json:"event"`
	UserID string `json:"user_id"`
}

func (s *Server) triggerFeedback(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	session, err := s.orch.TriggerFeedbackPrompt(r.Context(), feedback.TriggerEvent(req.Event), req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// AnswerRequest is the payload for POST /api/v1/feedback/{sessionID}.
type AnswerRequest struct {
	Response string `json:"response"`
}

func (s *Server) answerFeedback(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.Response == "" {
		writeError(w, http.StatusBadRequest, "response is required")
		return
	}

	rec, err := s.orch.ProcessUserFeedback(r.Context(), sessionID, req.Response)
	if err != nil {
		if errors.Is(err, feedback.ErrNotPending) {
			writeError(w, http.StatusConflict, "session already resolved or unknown")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}
	writeJSON(w, http.StatusOK, s.memory.GetOrCreate(userID))
}

func (s *Server) conversationHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	history, err := s.orch.ConversationHistory(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if history == nil {
		history = []store.ConversationSummary{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.GeneratePerformanceReport())
}
