// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

var (
	// ErrMissingCredentials is returned when no API key is configured.
	ErrMissingCredentials = errors.New("API key is not configured")

	// ErrUnauthorized is returned when the provider rejects the API key.
	ErrUnauthorized = errors.New("invalid or expired API key")

	// ErrRateLimited is returned when the provider throttles the client.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrModelNotFound is returned when the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrBadRequest is returned when the provider rejects the request.
	ErrBadRequest = errors.New("request rejected by provider")

	// ErrServer is returned for 5xx responses.
	ErrServer = errors.New("provider server error")

	// ErrUnavailable is returned when the provider cannot be reached.
	ErrUnavailable = errors.New("provider is unreachable")

	// ErrMalformedResponse is returned when a stream event cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response from provider")
)

// InitError is returned by Provider.NewSession when a session cannot be
// created.
type InitError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	if e.Provider == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}

// APIError is a non-success HTTP response from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error // one of the Err* classification sentinels
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, msg)
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Provider, msg, e.StatusCode)
}

// Unwrap returns the classification sentinel.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError classifies an HTTP status code into an *APIError.
func NewAPIError(provider string, status int, message string) *APIError {
	return &APIError{
		Provider:   provider,
		StatusCode: status,
		Message:    message,
		Err:        ClassifyStatus(status),
	}
}

// ClassifyStatus maps an HTTP status code to a sentinel error.
func ClassifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusNotFound:
		return ErrModelNotFound
	case status >= 500:
		return ErrServer
	default:
		return ErrBadRequest
	}
}
