package mastodon

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AuthError indicates the server rejected the access token (HTTP 401).
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "authentication failed (401): " + e.Message
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// APIError is a non-2xx response other than 401.
type APIError struct {
	StatusCode int
	Method     string
	Path       string

	// Message is the server's "error" field, or the raw body when the
	// response was not the standard error shape.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf(
			"unexpected status %d on %s %s", e.StatusCode, e.Method, e.Path,
		)
	}
	return fmt.Sprintf(
		"api error (%d) on %s %s: %s",
		e.StatusCode, e.Method, e.Path, e.Message,
	)
}

// errorResponse is the standard Mastodon error body.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func newAPIError(status int, method, path string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Method: method, Path: path}

	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		apiErr.Message = er.Error
		if er.ErrorDescription != "" {
			apiErr.Message += ": " + er.ErrorDescription
		}
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}
