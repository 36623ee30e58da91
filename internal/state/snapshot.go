package state

import (
	"fmt"
	"time"

	"guestlist/internal/models"
)

// ExportState serializes the full collection and selection pointer.
func (s *State) ExportState() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]models.Event, len(s.events))
	for i, e := range s.events {
		events[i] = e.Clone()
	}
	return models.Snapshot{
		Version:        models.SnapshotVersion,
		Date:           time.Now().UTC(),
		Events:         events,
		CurrentEventID: s.currentEventID,
	}
}

// ImportState replaces the collection with the snapshot contents. A snapshot
// without an event list is rejected and the state is left untouched.
func (s *State) ImportState(snapshot models.Snapshot) bool {
	if snapshot.Events == nil {
		s.log.Error().Msg("import rejected: snapshot has no event list")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make([]models.Event, len(snapshot.Events))
	for i, e := range snapshot.Events {
		s.events[i] = e.Clone()
	}
	s.currentEventID = snapshot.CurrentEventID
	if s.currentEventID == "" && len(s.events) > 0 {
		s.currentEventID = s.events[0].ID
	}
	s.revisions = make(map[string]uint64)
	s.statsCache = make(map[string]cachedStats)
	return true
}

// Validate scans the collection for structural problems: missing ids, blank
// names, nil column or guest lists, duplicate guest ids within an event.
// Read-only; returns a human-readable description per problem found.
func (s *State) Validate() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var problems []string
	for i, e := range s.events {
		if e.ID == "" {
			problems = append(problems, fmt.Sprintf("event %d: missing id", i))
		}
		if isBlank(e.Name) {
			problems = append(problems, fmt.Sprintf("event %d: blank name", i))
		}
		if e.Columns == nil {
			problems = append(problems, fmt.Sprintf("event %d: nil column list", i))
		}
		if e.Guests == nil {
			problems = append(problems, fmt.Sprintf("event %d: nil guest list", i))
			continue
		}

		seen := make(map[string]bool, len(e.Guests))
		for _, g := range e.Guests {
			if seen[g.ID] {
				problems = append(problems, fmt.Sprintf("event %q: duplicate guest id %s", e.Name, g.ID))
				break
			}
			seen[g.ID] = true
		}
	}
	return problems
}
