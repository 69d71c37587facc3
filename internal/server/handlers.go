// internal/server/handlers.go
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "filter-agent/internal/common/errors"
	"filter-agent/internal/common/metrics"
	"filter-agent/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "filter-agent",
	})
}

func (s *Server) handleFilterRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeValidationError(w, "failed to read request body")
		return
	}
	if err := validateBody(filterRequestLoader, body); err != nil {
		s.writeValidationError(w, err.Error())
		return
	}

	var req models.FilterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeValidationError(w, err.Error())
		return
	}

	resp := s.processor.Process(r.Context(), &req)
	s.recordOutcome(r, resp, start)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelectGroup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeValidationError(w, "failed to read request body")
		return
	}
	if err := validateBody(selectGroupRequestLoader, body); err != nil {
		s.writeValidationError(w, err.Error())
		return
	}

	var req models.SelectGroupRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeValidationError(w, err.Error())
		return
	}

	resp := s.processor.SelectGroup(r.Context(), &req)
	s.recordOutcome(r, resp, start)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConversationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.conversations.Stats(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("conversation stats failed", nil)
		s.writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Type:      models.ResponseTypeError,
			Message:   "Failed to read conversation statistics",
			ErrorCode: string(apperrors.ErrCodeProcessingError),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if err := s.conversations.Clear(r.Context(), conversationID); err != nil {
		s.logger.WithError(err).Error("conversation clear failed", map[string]interface{}{
			"conversationId": conversationID,
		})
		s.writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Type:      models.ResponseTypeError,
			Message:   "Failed to clear conversation",
			ErrorCode: string(apperrors.ErrCodeProcessingError),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Conversation " + conversationID + " cleared",
	})
}

func (s *Server) recordOutcome(r *http.Request, resp interface{}, start time.Time) {
	status := models.ResponseTypeSuccess
	switch typed := resp.(type) {
	case models.ErrorResponse:
		status = typed.Type
	case models.ClarificationResponse:
		status = typed.Type
	}
	metrics.RequestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if s.obs != nil {
		s.obs.RecordRequestProcessed(r.Context(), status)
		s.obs.RecordRequestDuration(r.Context(), time.Since(start), status)
	}
}

func (s *Server) writeValidationError(w http.ResponseWriter, details string) {
	s.logger.Warn("request validation failed", map[string]interface{}{"details": details})
	s.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
		Type:      models.ResponseTypeError,
		Message:   "Request validation failed: " + details,
		ErrorCode: string(apperrors.ErrCodeInvalidRequest),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response", nil)
	}
}
