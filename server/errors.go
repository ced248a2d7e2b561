package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hupe1980/membuf"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// StatusCode maps a membuf error to its HTTP status.
func StatusCode(err error) int {
	var he *echo.HTTPError

	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, membuf.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, membuf.ErrNotAllocated), errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, membuf.ErrStaleHandle), errors.Is(err, membuf.ErrClosed):
		return http.StatusGone
	case errors.Is(err, membuf.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, membuf.ErrNoSpace):
		return http.StatusInsufficientStorage
	case errors.Is(err, membuf.ErrOutOfMemory):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes err as an ErrorResponse and logs it.
func (s *Server) handleError(c echo.Context, err error, message string) error {
	code := StatusCode(err)
	resp := &ErrorResponse{
		Error:         err.Error(),
		Message:       message,
		Code:          code,
		CorrelationID: uuid.NewString(),
	}

	level := s.logger.Debug
	if code >= http.StatusInternalServerError && code != http.StatusInsufficientStorage {
		level = s.logger.Warn
	}
	level("request failed",
		"correlation_id", resp.CorrelationID,
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"code", code,
		"error", err,
	)

	return c.JSON(code, resp)
}
