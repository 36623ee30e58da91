// Package storage persists the event collection to a JSON file under a data
// directory, enforcing a hard size ceiling so an oversized collection never
// reaches disk partially written.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"guestlist/internal/models"
	"guestlist/internal/state"
)

const (
	eventsFile   = "events.json"
	lastSaveFile = "last_save"

	// MaxSizeKB is the hard ceiling for the serialized collection.
	MaxSizeKB = 5120
	// WarnSizeKB triggers a warning log but still saves.
	WarnSizeKB = 4000
)

// ErrCapacity is returned when the serialized collection exceeds MaxSizeKB.
var ErrCapacity = errors.New("data exceeds storage capacity, back up and remove old events")

type Store struct {
	mu    sync.Mutex
	dir   string
	state *state.State
	log   zerolog.Logger

	autoSaveMu    sync.Mutex
	autoSaveTimer *time.Timer
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string, st *state.State) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{
		dir:   dir,
		state: st,
		log:   zerolog.New(os.Stdout).With().Str("component", "storage").Logger(),
	}, nil
}

// Save serializes the full event collection to disk. Returns ErrCapacity
// when the payload exceeds the ceiling; the in-memory state is unaffected
// on any failure.
func (s *Store) Save() error {
	return s.saveEvents(s.state.Events())
}

func (s *Store) saveEvents(events []models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	sizeKB := float64(len(data)) / 1024
	if sizeKB > MaxSizeKB {
		s.log.Error().Float64("size_kb", sizeKB).Msg("save rejected: over capacity")
		return fmt.Errorf("%w (%.0fKB / %dKB)", ErrCapacity, sizeKB, MaxSizeKB)
	}
	if sizeKB > WarnSizeKB {
		s.log.Warn().Float64("size_kb", sizeKB).Int("max_kb", MaxSizeKB).Msg("storage nearing capacity")
	}

	if err := os.WriteFile(filepath.Join(s.dir, eventsFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write events: %w", err)
	}
	stamp := time.Now().UTC().Format(time.RFC3339)
	if err := os.WriteFile(filepath.Join(s.dir, lastSaveFile), []byte(stamp), 0644); err != nil {
		s.log.Warn().Err(err).Msg("failed to record save timestamp")
	}

	s.log.Debug().Float64("size_kb", sizeKB).Msg("events saved")
	return nil
}

// Load reads the persisted collection into state. Missing or corrupt data
// is treated as "no data": Load returns false and leaves state untouched.
func (s *Store) Load() bool {
	s.mu.Lock()
	data, err := os.ReadFile(filepath.Join(s.dir, eventsFile))
	s.mu.Unlock()
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Msg("failed to read saved events")
		}
		return false
	}

	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		s.log.Warn().Err(err).Msg("saved events are corrupt, starting fresh")
		return false
	}
	if events == nil {
		return false
	}

	s.state.ReplaceEvents(migrate(events))
	return true
}

// Clear removes all persisted data.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	os.Remove(filepath.Join(s.dir, eventsFile))
	os.Remove(filepath.Join(s.dir, lastSaveFile))
}

// HasData reports whether a persisted collection exists.
func (s *Store) HasData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := os.Stat(filepath.Join(s.dir, eventsFile))
	return err == nil
}

// Info describes the persisted collection.
type Info struct {
	SizeKB      float64
	MaxSizeKB   int
	PercentUsed float64
	LastSave    time.Time
	TotalEvents int
	TotalGuests int
}

// GetInfo returns size and freshness information about the store.
func (s *Store) GetInfo() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := Info{MaxSizeKB: MaxSizeKB}
	if fi, err := os.Stat(filepath.Join(s.dir, eventsFile)); err == nil {
		info.SizeKB = float64(fi.Size()) / 1024
		info.PercentUsed = info.SizeKB / MaxSizeKB * 100
	}
	if raw, err := os.ReadFile(filepath.Join(s.dir, lastSaveFile)); err == nil {
		if t, err := time.Parse(time.RFC3339, string(raw)); err == nil {
			info.LastSave = t
		}
	}
	for _, e := range s.state.Events() {
		info.TotalEvents++
		info.TotalGuests += len(e.Guests)
	}
	return info
}

// AutoSave coalesces rapid save requests: multiple calls within the window
// collapse to a single write.
func (s *Store) AutoSave() {
	s.autoSaveMu.Lock()
	defer s.autoSaveMu.Unlock()

	if s.autoSaveTimer != nil {
		s.autoSaveTimer.Stop()
	}
	s.autoSaveTimer = time.AfterFunc(time.Second, func() {
		if err := s.Save(); err != nil {
			s.log.Error().Err(err).Msg("auto-save failed")
		}
	})
}

// migrate assigns ids to guests persisted by older versions.
func migrate(events []models.Event) []models.Event {
	for i := range events {
		for j := range events[i].Guests {
			g := &events[i].Guests[j]
			if g.ID == "" {
				g.ID = models.NewID()
			}
			if g.Status == "" {
				g.Status = models.StatusPending
			}
			if g.Fields == nil {
				g.Fields = make(map[string]string)
			}
		}
	}
	return events
}
