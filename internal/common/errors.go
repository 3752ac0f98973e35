// Package common provides shared utilities used across all features
package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Engine error taxonomy. Validation errors fail fast before any oracle call;
// oracle errors are isolated per candidate; persistence errors are logged and
// swallowed.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrTokenNotAllowed = errors.New("token not allowed")
	ErrInvalidSlippage = errors.New("slippage tolerance out of range")
	ErrNoRouteFound    = errors.New("no route found")
	ErrQuoteNotFound   = errors.New("quote not found")
	ErrQuoteExpired    = errors.New("quote expired")
	ErrPersistence     = errors.New("persistence failure")
)

// OracleError marks a single candidate's oracle failure as transient. The
// evaluator drops the candidate and continues the batch.
type OracleError struct {
	Candidate string
	Err       error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle: candidate %s: %v", e.Candidate, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// HttpError represents an HTTP error with status code and message
type HttpError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s %s", e.StatusCode, e.Code, e.Message)
}

func messageOrDefault(msg string, defaultMsg string) string {
	if msg != "" {
		return msg
	}
	return defaultMsg
}

// HTTP Error constructors

func HTTPErrorBadRequest(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    messageOrDefault(msg, "Bad request"),
	}
}

func HTTPErrorNotFound(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    messageOrDefault(msg, "Not found"),
	}
}

func HTTPErrorGone(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusGone,
		Code:       "GONE",
		Message:    messageOrDefault(msg, "Gone"),
	}
}

func HTTPErrorInternalError(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    messageOrDefault(msg, "Internal server error"),
	}
}

func HTTPErrorUnauthorized(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    messageOrDefault(msg, "Unauthorized"),
	}
}

func HTTPErrorResourceConflict(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusConflict,
		Code:       "RESOURCE_CONFLICT",
		Message:    messageOrDefault(msg, "Resource conflict"),
	}
}
