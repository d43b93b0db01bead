package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"busgo/internal/domain"
	"busgo/internal/http/middleware"
	"busgo/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	if ce, ok := domain.AsCapacity(err); ok {
		respondError(c, http.StatusConflict, "capacity_exceeded", ce.Error(), gin.H{
			"availableSeats": ce.Available,
			"requestedSeats": ce.Requested,
		})
		return
	}
	switch {
	case errors.Is(err, domain.ErrInvalidSection):
		respondError(c, http.StatusBadRequest, "invalid_section", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidSeatCount):
		respondError(c, http.StatusBadRequest, "invalid_seat_count", err.Error(), gin.H{"min": domain.MinSeats, "max": domain.MaxSeats})
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "unauthorized", "invalid credentials or token", nil)
	case errors.Is(err, domain.ErrForbidden):
		respondError(c, http.StatusForbidden, "forbidden", "not allowed", nil)
	case domain.IsInternal(err):
		// Msg is safe to show; the wrapped cause is only logged.
		utils.LogEvent(middleware.GetRequestID(c), "http", "internal_error", fmt.Sprintf("%v: %v", err, errors.Unwrap(err)))
		respondError(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
	default:
		utils.LogEvent(middleware.GetRequestID(c), "http", "internal_error", err.Error())
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}
