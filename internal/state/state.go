// Package state holds the in-memory collection of events and guests and is
// the single source of truth for the running session. All operations are
// total over well-formed input: a bad id or index is a no-op signalled
// through the return value, never a panic.
package state

import (
	"os"
	"sync"

	"github.com/rs/zerolog"

	"guestlist/internal/models"
)

type State struct {
	mu             sync.RWMutex
	events         []models.Event
	currentEventID string

	// Per-event monotonic revision, bumped on every guest mutation.
	// The stats cache is keyed on it, so a same-count status change
	// still invalidates the cached snapshot.
	revisions  map[string]uint64
	statsCache map[string]cachedStats
	recomputes int

	log zerolog.Logger
}

// New creates an empty state.
func New() *State {
	return &State{
		events:     make([]models.Event, 0),
		revisions:  make(map[string]uint64),
		statsCache: make(map[string]cachedStats),
		log:        zerolog.New(os.Stdout).With().Str("component", "state").Logger(),
	}
}

// CreateEvent allocates a new event and appends it to the collection.
func (s *State) CreateEvent(name, date string) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := models.Event{
		ID:      models.NewID(),
		Name:    name,
		Date:    date,
		Columns: []string{},
		Guests:  []models.Guest{},
	}
	s.events = append(s.events, event)
	return event.Clone()
}

// RemoveEvent deletes the event with the given id.
// Returns false if no such event exists.
func (s *State) RemoveEvent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.events {
		if e.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			s.dropStats(id)
			if s.currentEventID == id {
				s.currentEventID = ""
			}
			return true
		}
	}
	return false
}

// GetEvent returns a copy of the event with the given id.
func (s *State) GetEvent(id string) (models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e := s.eventByID(id); e != nil {
		return e.Clone(), true
	}
	return models.Event{}, false
}

// Events returns a copy of the whole collection in insertion order.
func (s *State) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Event, len(s.events))
	for i, e := range s.events {
		out[i] = e.Clone()
	}
	return out
}

// EventCount returns the number of events.
func (s *State) EventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// CurrentEvent returns the currently selected event, if any.
func (s *State) CurrentEvent() (models.Event, bool) {
	s.mu.RLock()
	id := s.currentEventID
	s.mu.RUnlock()
	if id == "" {
		return models.Event{}, false
	}
	return s.GetEvent(id)
}

// SetCurrentEvent updates the selection pointer.
// Returns false if the id does not match any event.
func (s *State) SetCurrentEvent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.eventByID(id) == nil {
		return false
	}
	s.currentEventID = id
	return true
}

// CurrentEventID returns the selection pointer, or "" when nothing is selected.
func (s *State) CurrentEventID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentEventID
}

// RenameEvent sets the display name of an event.
// The new name must be non-blank.
func (s *State) RenameEvent(id, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.eventByID(id)
	if e == nil || isBlank(name) {
		return false
	}
	e.Name = name
	return true
}

// DuplicateEvent deep-copies an event, regenerating the event id and all
// guest ids and resetting every guest's status to pending. Events without
// guests are not duplicated.
func (s *State) DuplicateEvent(id string) (models.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original := s.eventByID(id)
	if original == nil || len(original.Guests) == 0 {
		return models.Event{}, false
	}

	dup := original.Clone()
	dup.ID = models.NewID()
	dup.Name = original.Name + " (Copy)"
	dup.RemoteID = ""
	dup.SheetName = ""
	dup.CloudBound = false
	dup.SyncDegraded = false
	for i := range dup.Guests {
		dup.Guests[i].ID = models.NewID()
		dup.Guests[i].Status = models.StatusPending
	}

	s.events = append(s.events, dup)
	return dup.Clone(), true
}

// SetMethod records which import mode the event is using.
func (s *State) SetMethod(id string, method models.ImportMethod) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.eventByID(id)
	if e == nil {
		return false
	}
	e.Method = method
	return true
}

// SetColumns replaces the event's column schema and reprojects every
// existing guest onto the new column set, dropping values for removed
// columns and filling added columns with empty strings.
func (s *State) SetColumns(id string, columns []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.eventByID(id)
	if e == nil {
		return false
	}

	e.Columns = append([]string(nil), columns...)
	for i, g := range e.Guests {
		fields := make(map[string]string, len(columns))
		for _, col := range columns {
			fields[col] = g.Fields[col]
		}
		e.Guests[i].Fields = fields
	}
	s.bumpRevision(id)
	return true
}

// SetSheetBinding records the remote handle for a cloud-bound event.
func (s *State) SetSheetBinding(id, remoteID, sheetName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.eventByID(id)
	if e == nil {
		return false
	}
	e.RemoteID = remoteID
	e.SheetName = sheetName
	e.CloudBound = remoteID != "" || sheetName != ""
	return true
}

// SetSyncDegraded flags an event whose remote mirror has fallen behind.
func (s *State) SetSyncDegraded(id string, degraded bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.eventByID(id)
	if e == nil {
		return false
	}
	e.SyncDegraded = degraded
	return true
}

// ReplaceEvents swaps in a whole new collection, e.g. after a cloud fetch.
// All cached statistics are invalidated.
func (s *State) ReplaceEvents(events []models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make([]models.Event, len(events))
	for i, e := range events {
		s.events[i] = e.Clone()
	}
	s.revisions = make(map[string]uint64)
	s.statsCache = make(map[string]cachedStats)
	if s.currentEventID == "" && len(s.events) > 0 {
		s.currentEventID = s.events[0].ID
	}
}

// ClearAll resets the state to empty.
func (s *State) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make([]models.Event, 0)
	s.currentEventID = ""
	s.revisions = make(map[string]uint64)
	s.statsCache = make(map[string]cachedStats)
}

// eventByID returns a pointer into the events slice. Callers must hold the lock.
func (s *State) eventByID(id string) *models.Event {
	for i := range s.events {
		if s.events[i].ID == id {
			return &s.events[i]
		}
	}
	return nil
}

func isBlank(str string) bool {
	for _, r := range str {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
