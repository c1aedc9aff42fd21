package client

import (
	"context"
	"errors"
	"fmt"
)

// ErrorType categorizes failures talking to the scraping service
type ErrorType string

const (
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeTimeout        ErrorType = "timeout"
	ErrorTypeHTTPStatus     ErrorType = "http_status"
	ErrorTypeDecode         ErrorType = "decode"
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeCancelled      ErrorType = "cancelled"
)

// APIError represents a structured error from an API call
type APIError struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *APIError) Error() string {
	prefix := string(e.Type)
	if e.StatusCode != 0 {
		prefix = fmt.Sprintf("API error (%d)", e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *APIError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly error message
func (e *APIError) UserMessage() string {
	switch e.Type {
	case ErrorTypeNetwork:
		return "Could not reach the scraping service. Please check that it is running."
	case ErrorTypeTimeout:
		return "The scraping service took too long to answer."
	case ErrorTypeHTTPStatus:
		return fmt.Sprintf("The scraping service rejected the request (%d): %s", e.StatusCode, e.Message)
	case ErrorTypeDecode:
		return "Received an invalid response from the scraping service."
	case ErrorTypeCancelled:
		return "Request was cancelled."
	default:
		return e.Message
	}
}

// UserMessage converts API errors into friendly messages while leaving other
// error types unchanged.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return err.Error()
}

func newNetworkError(cause error) *APIError {
	switch {
	case errors.Is(cause, context.Canceled):
		return &APIError{Type: ErrorTypeCancelled, Message: "request cancelled", Cause: cause}
	case errors.Is(cause, context.DeadlineExceeded) || isTimeout(cause):
		return &APIError{Type: ErrorTypeTimeout, Message: "request timed out", Cause: cause}
	}
	return &APIError{
		Type:    ErrorTypeNetwork,
		Message: "request failed",
		Cause:   cause,
	}
}

func newStatusError(status int, message string) *APIError {
	return &APIError{
		Type:       ErrorTypeHTTPStatus,
		StatusCode: status,
		Message:    message,
	}
}

func newDecodeError(cause error) *APIError {
	return &APIError{
		Type:    ErrorTypeDecode,
		Message: "failed to parse response",
		Cause:   cause,
	}
}

func newInvalidRequestError(message string, cause error) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Message: message,
		Cause:   cause,
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
