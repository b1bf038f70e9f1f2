package handlers

import (
	"net/http"

	"medicalink-backend/internal/models"
	"medicalink-backend/internal/services"

	"go.uber.org/zap"
)

// FeedbackHandlers handles HTTP requests for message ratings.
type FeedbackHandlers struct {
	feedbackService *services.FeedbackService
	logger          *zap.Logger
}

func NewFeedbackHandlers(feedbackService *services.FeedbackService, logger *zap.Logger) *FeedbackHandlers {
	return &FeedbackHandlers{feedbackService: feedbackService, logger: logger.Named("handlers.feedback")}
}

// HandleSubmitFeedback handles POST /feedback.
func (h *FeedbackHandlers) HandleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := decodeBody(r, feedbackRequestSchema, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	fb, err := h.feedbackService.SubmitFeedback(r.Context(), services.SubmitFeedbackParams{
		MessageID: req.MessageID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Message not found")
		return
	}

	RespondWithJSON(w, http.StatusCreated, models.NewFeedbackResponse(fb))
}

// HandleListFeedback handles GET /feedback/{messageID}.
func (h *FeedbackHandlers) HandleListFeedback(w http.ResponseWriter, r *http.Request) {
	messageID, err := parseIDParam(r, "messageID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	items, err := h.feedbackService.ListFeedback(r.Context(), messageID)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Message not found")
		return
	}

	resp := make([]models.FeedbackResponse, 0, len(items))
	for i := range items {
		resp = append(resp, models.NewFeedbackResponse(&items[i]))
	}
	RespondWithJSON(w, http.StatusOK, resp)
}
