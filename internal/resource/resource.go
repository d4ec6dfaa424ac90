// Package resource holds the shared machinery of server-backed collections:
// the session guard, optimistic mutations with rollback, and superseding fetches.
package resource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrLoginRequired is returned for operations that need an authenticated session.
	ErrLoginRequired = errors.New("login required")

	// ErrSuperseded is returned by a fetch that a newer fetch replaced.
	ErrSuperseded = errors.New("superseded by a newer fetch")
)

// AuthState reports the session mode. session.Controller satisfies it.
type AuthState interface {
	IsGuest() bool
	IsAuthenticated() bool
}

// Guard returns ErrLoginRequired unless the session is authenticated.
func Guard(auth AuthState, action string) error {
	if auth.IsAuthenticated() {
		return nil
	}
	if auth.IsGuest() {
		return fmt.Errorf("%s: %w (guest mode)", action, ErrLoginRequired)
	}
	return fmt.Errorf("%s: %w", action, ErrLoginRequired)
}

// ID is a server-assigned identifier. The backend sends numbers; provisional
// client ids are strings.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Entity is an item of a Collection.
type Entity interface {
	EntityID() ID
}
