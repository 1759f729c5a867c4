package handlers

import (
	"errors"
	"net/http"

	"github.com/baharkarakas/points-backend/internal/api/httpx"
	"github.com/baharkarakas/points-backend/internal/api/validate"
	"github.com/baharkarakas/points-backend/internal/logger"
	"github.com/baharkarakas/points-backend/internal/models"
	"github.com/baharkarakas/points-backend/internal/services"
)

// writeServiceError maps a service error to a status and the caller-facing
// message. Unknown errors are logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		me *models.Error
		ve *services.ValidationError
		fe validate.Errs
	)
	switch {
	case errors.As(err, &fe):
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "invalid request", fe)
		return
	case errors.As(err, &ve):
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", ve.Msg, nil)
		return
	case errors.As(err, &me):
		status, code := statusFor(me.Kind)
		httpx.WriteError(w, status, code, me.Message, nil)
		return
	}
	logger.FromContext(r.Context()).Error("request failed", "err", err)
	httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
}

func statusFor(kind error) (int, string) {
	switch kind {
	case models.ErrNotFound:
		return http.StatusNotFound, "not_found"
	case models.ErrInvalidOperation:
		return http.StatusBadRequest, "invalid_operation"
	case models.ErrInsufficientFunds:
		return http.StatusBadRequest, "insufficient_funds"
	case models.ErrExpired:
		return http.StatusBadRequest, "expired"
	case models.ErrUnauthorized:
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
