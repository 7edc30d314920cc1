package api

import (
	"net/http"

	"dailybet/domain/apperrors"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch apperrors.Kind(err) {
	case apperrors.ErrValidation, apperrors.ErrInsufficientFunds:
		return http.StatusBadRequest
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrAlreadyProcessed:
		return http.StatusConflict
	case apperrors.ErrUpstreamUnavailable:
		return http.StatusBadGateway
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Unclassified errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"requestID": c.GetString(requestIDKey),
			"path":      c.FullPath(),
			"error":     err,
		}).Error("Request failed")
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// bindJSON decodes the body into req, answering 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, apperrors.Validation("invalid request body: %v", err))
		return false
	}
	return true
}
