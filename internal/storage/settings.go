package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const settingsFile = "settings.json"

// maxEmailHistory bounds the remembered identity list.
const maxEmailHistory = 5

// Settings holds mutable runtime configuration that survives restarts:
// remote endpoint, remembered identity and the remote resource handle.
type Settings struct {
	APIURL        string   `json:"api_url,omitempty"`
	TimeoutSec    int      `json:"timeout_sec,omitempty"`
	UserEmail     string   `json:"user_email,omitempty"`
	EmailHistory  []string `json:"email_history,omitempty"`
	SpreadsheetID string   `json:"spreadsheet_id,omitempty"`
}

// LoadSettings reads persisted settings; missing or corrupt files yield zero settings.
func (s *Store) LoadSettings() Settings {
	var settings Settings
	data, err := os.ReadFile(filepath.Join(s.dir, settingsFile))
	if err != nil {
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		s.log.Warn().Err(err).Msg("settings file is corrupt, using defaults")
		return Settings{}
	}
	return settings
}

// SaveSettings persists settings, trimming the identity history to its bound.
func (s *Store) SaveSettings(settings Settings) error {
	if len(settings.EmailHistory) > maxEmailHistory {
		settings.EmailHistory = settings.EmailHistory[:maxEmailHistory]
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, settingsFile), data, 0644)
}

// RememberEmail records an identity as most recently used.
func (s *Store) RememberEmail(email string) error {
	settings := s.LoadSettings()
	settings.UserEmail = email

	history := []string{email}
	for _, prev := range settings.EmailHistory {
		if prev != email {
			history = append(history, prev)
		}
	}
	settings.EmailHistory = history
	return s.SaveSettings(settings)
}
