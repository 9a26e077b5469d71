package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrRateLimited marks an HTTP 429 response.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidConfig is returned by New for an unusable Config.
	ErrInvalidConfig = errors.New("invalid client config")
)

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassCSRF represents a 403 carrying a fresh X-CSRF-Token.
	ErrorClassCSRF ErrorClass = "csrf"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// ErrorDetail is one entry of the platform's {"errors": [...]} body.
type ErrorDetail struct {
	Code    int64
	Message string
}

// APIError is a non-2xx platform response.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Errors     []ErrorDetail
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if len(e.Errors) > 0 && e.Errors[0].Message != "" {
		msg = e.Errors[0].Message
	}
	if e.Err != nil {
		return fmt.Sprintf("platform %s error (status %d): %s: %v",
			e.Class, e.StatusCode, msg, e.Err)
	}
	return fmt.Sprintf("platform %s error (status %d): %s",
		e.Class, e.StatusCode, msg)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// newAPIError builds an APIError from a response, decoding the errors array
// when the body has one.
func newAPIError(status int, class ErrorClass, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Class:      class,
		Message:    http.StatusText(status),
	}

	if gjson.ValidBytes(body) {
		gjson.GetBytes(body, "errors").ForEach(func(_, v gjson.Result) bool {
			apiErr.Errors = append(apiErr.Errors, ErrorDetail{
				Code:    v.Get("code").Int(),
				Message: v.Get("message").String(),
			})
			return true
		})
	}

	if class == ErrorClassRateLimit {
		apiErr.Err = ErrRateLimited
	}

	return apiErr
}

// classifyStatus maps a response status to an error class.
// Returns "" for non-error responses.
func classifyStatus(status int, header http.Header) ErrorClass {
	switch {
	case status < 400:
		return ""
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status == http.StatusForbidden && header.Get(csrfHeader) != "":
		return ErrorClassCSRF
	case status < 500:
		return ErrorClassClient
	default:
		return ErrorClassServer
	}
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassClient:
		return false
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassCSRF, ErrorClassNetwork:
		return true
	default:
		return false
	}
}
