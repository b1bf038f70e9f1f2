package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"medicalink-backend/internal/services"
	"medicalink-backend/internal/store"
	"medicalink-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RespondWithError responds with an error message.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	httputil.RespondError(w, code, message)
}

// RespondWithJSON responds with a JSON payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	httputil.RespondJSON(w, code, payload)
}

// parseIDParam reads an integer path parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// respondServiceError maps service errors to HTTP statuses.
// notFound is the message sent when the error wraps store.ErrNotFound.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, notFound)
	case errors.Is(err, services.ErrInvalidInput):
		RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		RespondWithError(w, http.StatusInternalServerError, "Internal error: "+err.Error())
	}
}
