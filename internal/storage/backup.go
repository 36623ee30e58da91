package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"guestlist/internal/models"
)

// CreateBackup snapshots all events with version tag and summary metadata.
func (s *Store) CreateBackup() models.Backup {
	events := s.state.Events()
	totalGuests := 0
	for _, e := range events {
		totalGuests += len(e.Guests)
	}

	now := time.Now().UTC()
	return models.Backup{
		Version: models.SnapshotVersion,
		Date:    now,
		Events:  events,
		Metadata: models.BackupMetadata{
			TotalEvents: len(events),
			TotalGuests: totalGuests,
			CreatedAt:   now,
		},
	}
}

// MarshalBackup serializes a backup for download.
func (s *Store) MarshalBackup() ([]byte, error) {
	data, err := json.MarshalIndent(s.CreateBackup(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}
	return data, nil
}

// RestoreBackup parses backup file contents, replaces the event collection
// wholesale, invalidates all caches and persists. Rejects on parse failure
// or when the backup carries no event list.
func (s *Store) RestoreBackup(contents []byte) error {
	var backup models.Backup
	if err := json.Unmarshal(contents, &backup); err != nil {
		return fmt.Errorf("invalid backup file: %w", err)
	}
	if backup.Events == nil {
		return fmt.Errorf("invalid backup file: missing event list")
	}
	if backup.Version != "" && backup.Version != models.SnapshotVersion {
		s.log.Warn().Str("version", backup.Version).Msg("restoring backup from a different version")
	}

	s.state.ReplaceEvents(migrate(backup.Events))
	s.state.InvalidateStats("")

	if err := s.Save(); err != nil {
		return fmt.Errorf("backup restored but save failed: %w", err)
	}
	s.log.Info().Int("events", len(backup.Events)).Msg("backup restored")
	return nil
}

// Snapshot serializes the full application state, selection included.
func (s *Store) Snapshot() ([]byte, error) {
	data, err := json.MarshalIndent(s.state.ExportState(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// RestoreSnapshot parses a snapshot and imports it into state.
func (s *Store) RestoreSnapshot(contents []byte) bool {
	var snapshot models.Snapshot
	if err := json.Unmarshal(contents, &snapshot); err != nil {
		s.log.Error().Err(err).Msg("failed to parse snapshot")
		return false
	}
	return s.state.ImportState(snapshot)
}
