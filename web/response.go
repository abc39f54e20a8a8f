package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexandro/mdindex/docs"
	"github.com/lexandro/mdindex/search"
)

type response struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

func writeResponse(c *gin.Context, data any, statusCode int, errors []string) {
	if statusCode == http.StatusNoContent {
		c.Status(statusCode)
		return
	}

	c.JSON(statusCode, response{
		Data:   data,
		Errors: errors,
	})
}

// writeError maps a service error to a status code and writes it in the envelope.
// Access denials never carry details about the rejected path.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	statusCode := statusFor(err)

	message := err.Error()
	switch statusCode {
	case http.StatusForbidden:
		message = "access denied"
	case http.StatusInternalServerError:
		logger.Error("request failed", "path", c.Request.URL.Path, "request_id", requestID(c), "err", err.Error())
		message = "internal error"
	}

	c.Abort()
	writeResponse(c, nil, statusCode, []string{message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, docs.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, docs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, docs.ErrNotADocument),
		errors.Is(err, docs.ErrNotADirectory),
		errors.Is(err, docs.ErrInvalidPattern),
		errors.Is(err, search.ErrUnknownScope):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
