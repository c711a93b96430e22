package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/funnelquiz/internal/quiz"
)

// Error codes returned in the error envelope.
const (
	CodeInvalidTransition = "invalid_transition"
	CodeUnknownQuestion   = "unknown_question"
	CodeUnknownChoice     = "unknown_choice"
	CodeMissingContact    = "missing_contact"
	CodeSessionNotFound   = "session_not_found"
	CodeBadRequest        = "bad_request"
	CodeInternal          = "internal"
	CodeUnavailable       = "unavailable"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// respondTransitionError maps machine errors onto HTTP statuses.
func respondTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, quiz.ErrInvalidTransition):
		respondError(c, http.StatusConflict, CodeInvalidTransition, err)
	case errors.Is(err, quiz.ErrUnknownQuestion):
		respondError(c, http.StatusBadRequest, CodeUnknownQuestion, err)
	case errors.Is(err, quiz.ErrUnknownChoice):
		respondError(c, http.StatusBadRequest, CodeUnknownChoice, err)
	case errors.Is(err, quiz.ErrMissingContact):
		respondError(c, http.StatusBadRequest, CodeMissingContact, err)
	default:
		respondError(c, http.StatusInternalServerError, CodeInternal, err)
	}
}
