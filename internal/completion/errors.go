// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured indicates no API key is available.
	ErrNotConfigured = errors.New("completion API key not configured (set OPENAI_API_KEY)")

	// ErrAuthFailed indicates the API key was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates the service is throttling requests.
	ErrRateLimited = errors.New("rate limited")

	// ErrQuotaExceeded indicates the account has no remaining quota or credit.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrEmptyResponse indicates the service returned no choices.
	ErrEmptyResponse = errors.New("empty response from model")
)

// APIError is a failure reported by the completion service.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%v (HTTP %d): %s", e.Err, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%v (HTTP %d)", e.Err, e.StatusCode)
	case e.Message != "":
		return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (HTTP %d)", e.StatusCode)
}

// Unwrap returns the sentinel the status code mapped to, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}
