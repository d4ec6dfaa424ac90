package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors. APIError unwraps to one of the status-class sentinels.
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrClient         = errors.New("request rejected")
	ErrServer         = errors.New("server error")
	ErrNetwork        = errors.New("network error")
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrNoRefreshToken = errors.New("no refresh token")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	// Detail is the "detail" field of the error body, if present.
	Detail string
	// Fields holds per-field validation messages, keyed by field name.
	Fields map[string][]string
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return e
	}
	for k, v := range raw {
		msgs := decodeMessages(v)
		if len(msgs) == 0 {
			continue
		}
		if k == "detail" {
			e.Detail = strings.Join(msgs, " ")
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string][]string)
		}
		e.Fields[k] = msgs
	}
	return e
}

// decodeMessages accepts a string or a list of strings.
func decodeMessages(v json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var list []string
	if err := json.Unmarshal(v, &list); err == nil {
		return list
	}
	return nil
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	if e.Detail != "" {
		return msg + ": " + e.Detail
	}
	if len(e.Fields) > 0 {
		return msg + ": " + e.FieldSummary()
	}
	return msg
}

// Unwrap returns the status-class sentinel.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity:
		return ErrValidation
	case e.Status >= 500:
		return ErrServer
	default:
		return ErrClient
	}
}

// FieldSummary joins field errors as "field: msg; field: msg" in field order.
func (e *APIError) FieldSummary() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return strings.Join(parts, "; ")
}

// Message derives the user-facing text for err: the response detail, then
// joined field errors, then a connectivity message for network failures,
// then fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if len(apiErr.Fields) > 0 {
			return apiErr.FieldSummary()
		}
	}
	if errors.Is(err, ErrNetwork) {
		return "Unable to reach the server. Check your connection and try again."
	}
	return fallback
}
