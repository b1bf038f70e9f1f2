package handlers

import (
	"net/http"

	"medicalink-backend/internal/models"
	"medicalink-backend/internal/services"

	"go.uber.org/zap"
)

// ConversationHandlers handles HTTP requests for sessions and their messages.
type ConversationHandlers struct {
	conversationService *services.ConversationService
	logger              *zap.Logger
}

// NewConversationHandlers creates a new ConversationHandlers instance.
func NewConversationHandlers(conversationService *services.ConversationService, logger *zap.Logger) *ConversationHandlers {
	return &ConversationHandlers{
		conversationService: conversationService,
		logger:              logger.Named("handlers.conversation"),
	}
}

// HandleAsk handles POST /ask.
func (h *ConversationHandlers) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := decodeBody(r, askRequestSchema, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	res, err := h.conversationService.Ask(r.Context(), services.AskParams{
		Message:   req.Message,
		SessionID: req.SessionID,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Session not found")
		return
	}

	RespondWithJSON(w, http.StatusOK, models.AskResponse{
		Response:  res.Response,
		SessionID: res.SessionID,
		Timestamp: models.FormatTimestamp(res.Timestamp),
		Degraded:  res.Degraded,
	})
}

// HandleGetHistory handles GET /history/{sessionID}.
func (h *ConversationHandlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseIDParam(r, "sessionID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	messages, err := h.conversationService.GetHistory(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Session not found")
		return
	}

	RespondWithJSON(w, http.StatusOK, models.NewHistoryEntries(messages))
}

// HandleListSessions handles GET /sessions.
func (h *ConversationHandlers) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.conversationService.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Sessions not found")
		return
	}

	RespondWithJSON(w, http.StatusOK, models.NewSessionInfos(sessions))
}

// HandleDeleteSession handles DELETE /sessions/{sessionID}.
func (h *ConversationHandlers) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseIDParam(r, "sessionID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	if err := h.conversationService.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, r, h.logger, err, "Session not found")
		return
	}

	RespondWithJSON(w, http.StatusOK, models.MessageResponse{Message: "Session deleted successfully"})
}

// HandleExportSession handles GET /export/{sessionID}.
func (h *ConversationHandlers) HandleExportSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseIDParam(r, "sessionID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	export, err := h.conversationService.ExportSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Session not found")
		return
	}

	RespondWithJSON(w, http.StatusOK, export)
}
