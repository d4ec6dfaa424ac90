package tokenstore

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Snapshot is the persisted session as read from storage.
type Snapshot struct {
	AccessToken  string
	RefreshToken string
	IsGuest      bool
	Username     string
	Email        string
}

// LoggedOut reports whether the snapshot holds neither a token nor the guest flag.
func (s Snapshot) LoggedOut() bool {
	return s.AccessToken == "" && !s.IsGuest
}

// Store is the session token store. The in-memory copy is what the HTTP client
// reads at send time; every write goes to Storage first.
// Storage failures are logged and never panic.
type Store struct {
	storage Storage
	log     *slog.Logger

	mu   sync.RWMutex
	snap Snapshot
}

// New creates a Store over storage and primes its in-memory copy with Read.
func New(storage Storage, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Store{storage: storage, log: log}
	s.Read()
	return s
}

// Read returns the persisted session and refreshes the in-memory copy.
// Any storage error yields an empty snapshot.
func (s *Store) Read() Snapshot {
	snap, err := s.readStorage()
	if err != nil {
		s.log.Warn("session storage unavailable, treating as logged out", "error", err)
		snap = Snapshot{}
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return snap
}

func (s *Store) readStorage() (Snapshot, error) {
	var snap Snapshot
	fields := []struct {
		key string
		dst *string
	}{
		{KeyAccessToken, &snap.AccessToken},
		{KeyRefreshToken, &snap.RefreshToken},
		{KeyUsername, &snap.Username},
		{KeyProfileEmail, &snap.Email},
	}
	for _, f := range fields {
		v, _, err := s.storage.Get(f.key)
		if err != nil {
			return Snapshot{}, err
		}
		*f.dst = v
	}

	guest, _, err := s.storage.Get(KeyIsGuest)
	if err != nil {
		return Snapshot{}, err
	}
	snap.IsGuest = guest == "true"
	return snap, nil
}

// Snapshot returns the in-memory session without touching storage.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// SetTokens stores the access token, and the refresh token when non-empty.
// Writing a real token clears the guest flag. Repeating a call with the same
// values leaves storage and memory unchanged.
func (s *Store) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.AccessToken = access
	if refresh != "" {
		s.snap.RefreshToken = refresh
	}
	s.snap.IsGuest = false

	var errs []error
	if err := s.storage.Set(KeyAccessToken, access); err != nil {
		errs = append(errs, err)
	}
	if refresh != "" {
		if err := s.storage.Set(KeyRefreshToken, refresh); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.storage.Delete(KeyIsGuest); err != nil {
		errs = append(errs, err)
	}
	return s.logged("save tokens", errors.Join(errs...))
}

// ClearTokens removes every session key from storage and memory.
func (s *Store) ClearTokens() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = Snapshot{}
	return s.logged("clear session", s.storage.Delete(AllKeys...))
}

// SetGuest drops any real tokens and profile fields and sets the guest flag.
func (s *Store) SetGuest() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = Snapshot{IsGuest: true}

	err := s.storage.Delete(KeyAccessToken, KeyRefreshToken, KeyUsername, KeyProfileEmail)
	if err == nil {
		err = s.storage.Set(KeyIsGuest, "true")
	}
	return s.logged("save guest flag", err)
}

// SetProfile caches the display fields of the logged-in user.
func (s *Store) SetProfile(username, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Username = username
	s.snap.Email = email

	err := s.storage.Set(KeyUsername, username)
	if err == nil {
		err = s.storage.Set(KeyProfileEmail, email)
	}
	return s.logged("save profile", err)
}

// AccessToken returns the current in-memory access token.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.AccessToken
}

// RefreshToken returns the current in-memory refresh token.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.RefreshToken
}

// IsGuest reports whether the guest flag is set.
func (s *Store) IsGuest() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.IsGuest
}

func (s *Store) logged(op string, err error) error {
	if err != nil {
		s.log.Warn("session storage write failed", "op", op, "error", err)
	}
	return err
}

// Subject returns the sub claim of a JWT access token, if any.
func Subject(token string) string {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return ""
	}
	return claims.Subject
}
