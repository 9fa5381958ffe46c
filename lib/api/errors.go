// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a structured non-2xx response from the blog server. The
// server's error envelope is {"error": "..."}; when a response carries
// no parseable envelope, Message is synthesized from the status code.
//
// Callers use errors.As to branch on status:
//
//	var apiErr *api.Error
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound { ... }
type Error struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Message is the server's error string, or a generic fallback.
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// errorEnvelope is the JSON shape of server error bodies.
type errorEnvelope struct {
	Error string `json:"error"`
}

// IsNotFound reports whether err is an API error with status 404.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is an API error with status 401.
// Seen when the token is missing, expired, or revoked.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden reports whether err is an API error with status 403.
// Seen when a non-admin calls an admin endpoint.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}

// genericMessage is the fallback when the server's error body is
// missing or unparseable.
func genericMessage(status int) string {
	return fmt.Sprintf("request failed, status %d", status)
}
