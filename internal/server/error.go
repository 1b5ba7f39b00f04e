package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HttpError is the JSON body of every failed request
type HttpError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHttpError creates a new HttpError with the given status code and message
func NewHttpError(statusCode int, message string) *HttpError {
	return &HttpError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ErrBadRequest creates a 400 Bad Request error
func ErrBadRequest(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message)
}

// ErrNotFound creates a 404 Not Found error
func ErrNotFound(message string) *HttpError {
	return NewHttpError(http.StatusNotFound, message)
}

// ErrExtractionFailed creates a 502 error carrying the extraction failure
func ErrExtractionFailed(err error) *HttpError {
	e := NewHttpError(http.StatusBadGateway, "extraction failed")
	e.Details = err.Error()
	return e
}

func abort(c *gin.Context, err *HttpError) {
	c.AbortWithStatusJSON(err.StatusCode, err)
}
