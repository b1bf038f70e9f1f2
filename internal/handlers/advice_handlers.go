package handlers

import (
	"net/http"

	"medicalink-backend/internal/models"
	"medicalink-backend/internal/services"

	"go.uber.org/zap"
)

// AdviceHandlers serves the stateless health tips and symptom endpoints.
type AdviceHandlers struct {
	adviceService *services.AdviceService
	logger        *zap.Logger
}

func NewAdviceHandlers(adviceService *services.AdviceService, logger *zap.Logger) *AdviceHandlers {
	return &AdviceHandlers{adviceService: adviceService, logger: logger.Named("handlers.advice")}
}

// HandleHealthTips handles GET /tips.
func (h *AdviceHandlers) HandleHealthTips(w http.ResponseWriter, r *http.Request) {
	resp, err := h.adviceService.HealthTips(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// HandleSymptomAnalysis handles POST /symptoms.
func (h *AdviceHandlers) HandleSymptomAnalysis(w http.ResponseWriter, r *http.Request) {
	var req models.SymptomsRequest
	if err := decodeBody(r, symptomsRequestSchema, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	resp, err := h.adviceService.SymptomAnalysis(r.Context(), req.Symptoms)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, resp)
}
