package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/todo-chatbot/internal/services"
)

var (
	errInvalidRequestBody      = errors.New("invalid request body")
	errMandatoryCookieNotFound = errors.New("mandatory cookie not found")
	errInvalidID               = errors.New("invalid id")
)

// serviceErrorStatuses lists the service errors a client can act on.
// Anything else is reported as a bare 500.
var serviceErrorStatuses = []struct {
	err    error
	status int
}{
	{services.ErrTaskNotFound, http.StatusNotFound},
	{services.ErrConversationNotFound, http.StatusNotFound},
	{services.ErrEmptyTitle, http.StatusBadRequest},
	{services.ErrInvalidTaskStatus, http.StatusBadRequest},
	{services.ErrInvalidRole, http.StatusBadRequest},
	{services.ErrUserAlreadyExists, http.StatusConflict},
	{services.ErrUserNotFound, http.StatusUnauthorized},
	{services.ErrUserPasswordMismatch, http.StatusUnauthorized},
	{services.ErrSessionNotFound, http.StatusUnauthorized},
	{services.ErrSessionExpired, http.StatusUnauthorized},
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

// abortServiceError aborts with the status mapped to err, logging msg at
// warn level for expected errors and at error level otherwise.
func (h *handlerImpl) abortServiceError(c *gin.Context, err error, msg string) {
	for _, known := range serviceErrorStatuses {
		if errors.Is(err, known.err) {
			h.logger.Warn().
				Err(err).
				Msg(msg)
			abort(c, newAPIError(known.status, known.err.Error()))
			return
		}
	}

	h.logger.Error().
		Err(err).
		Msg(msg)
	abort(c, newStatusTextError(http.StatusInternalServerError))
}
