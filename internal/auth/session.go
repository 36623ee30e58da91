// Package auth holds the email-based identity. There are no tokens: the
// identity is just an email, resolved deterministically to a spreadsheet by
// the backend and remembered locally together with the resource handle.
package auth

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"guestlist/internal/api"
	"guestlist/internal/storage"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Session struct {
	mu            sync.RWMutex
	email         string
	spreadsheetID string

	client *api.Client
	store  *storage.Store
	log    zerolog.Logger
}

func NewSession(client *api.Client, store *storage.Store) *Session {
	return &Session{
		client: client,
		store:  store,
		log:    zerolog.New(os.Stdout).With().Str("component", "auth").Logger(),
	}
}

// Login validates the email and resolves (or creates) the remote
// spreadsheet for it. On success the identity is persisted for auto-login.
func (s *Session) Login(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return fmt.Errorf("invalid email: %q", email)
	}

	result := s.client.Do(ctx, api.GetOrCreateSpreadsheet{Email: email})
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Error)
	}
	var data api.SpreadsheetData
	if err := result.Decode(&data); err != nil {
		return fmt.Errorf("login response malformed: %w", err)
	}
	if data.SpreadsheetID == "" {
		return fmt.Errorf("login failed: backend returned no spreadsheet id")
	}

	s.mu.Lock()
	s.email = email
	s.spreadsheetID = data.SpreadsheetID
	s.mu.Unlock()

	if err := s.store.RememberEmail(email); err != nil {
		s.log.Warn().Err(err).Msg("failed to remember identity")
	}
	settings := s.store.LoadSettings()
	settings.SpreadsheetID = data.SpreadsheetID
	if err := s.store.SaveSettings(settings); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist spreadsheet handle")
	}

	s.log.Info().Str("email", email).Bool("new_spreadsheet", data.IsNew).Msg("logged in")
	return nil
}

// AutoLogin retries login with the persisted identity, if any.
func (s *Session) AutoLogin(ctx context.Context) error {
	settings := s.store.LoadSettings()
	if settings.UserEmail == "" {
		return fmt.Errorf("no saved identity")
	}
	return s.Login(ctx, settings.UserEmail)
}

// Logout clears the in-memory identity and the persisted one.
func (s *Session) Logout() {
	s.mu.Lock()
	s.email = ""
	s.spreadsheetID = ""
	s.mu.Unlock()

	settings := s.store.LoadSettings()
	settings.UserEmail = ""
	settings.SpreadsheetID = ""
	if err := s.store.SaveSettings(settings); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted identity")
	}
}

// Authenticated reports whether a login has succeeded this session.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email != "" && s.spreadsheetID != ""
}

// Email returns the logged-in identity, or "".
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// SpreadsheetID returns the remote resource handle, or "".
func (s *Session) SpreadsheetID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spreadsheetID
}

// ValidEmail reports whether the string looks like an email address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
