package state

import (
	"sort"

	"guestlist/internal/models"
)

// AddGuest appends a guest to the event. A missing id is assigned and a
// missing status defaults to pending. Returns the stored guest.
func (s *State) AddGuest(eventID string, guest models.Guest) (models.Guest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.eventByID(eventID)
	if e == nil {
		return models.Guest{}, false
	}

	g := guest.Clone()
	if g.ID == "" {
		g.ID = models.NewID()
	}
	if g.Status == "" {
		g.Status = models.StatusPending
	}
	if g.Fields == nil {
		g.Fields = make(map[string]string)
	}
	e.Guests = append(e.Guests, g)
	s.bumpRevision(eventID)
	return g.Clone(), true
}

// SetGuests replaces the event's whole guest list, assigning ids and
// default statuses where missing.
func (s *State) SetGuests(eventID string, guests []models.Guest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.eventByID(eventID)
	if e == nil {
		return false
	}

	e.Guests = make([]models.Guest, len(guests))
	for i, g := range guests {
		c := g.Clone()
		if c.ID == "" {
			c.ID = models.NewID()
		}
		if c.Status == "" {
			c.Status = models.StatusPending
		}
		if c.Fields == nil {
			c.Fields = make(map[string]string)
		}
		e.Guests[i] = c
	}
	s.bumpRevision(eventID)
	return true
}

// UpdateGuest merges patch fields into the guest at the given position.
// A patch status of "" leaves the current status untouched.
func (s *State) UpdateGuest(eventID string, index int, patch models.Guest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.eventByID(eventID)
	if e == nil || index < 0 || index >= len(e.Guests) {
		return false
	}

	g := &e.Guests[index]
	for k, v := range patch.Fields {
		g.Fields[k] = v
	}
	if patch.Status != "" {
		if !patch.Status.Valid() {
			return false
		}
		g.Status = patch.Status
	}
	s.bumpRevision(eventID)
	return true
}

// UpdateGuestStatus sets the status of the guest at the given position.
// Out-of-enum statuses are rejected.
func (s *State) UpdateGuestStatus(eventID string, index int, status models.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateStatusLocked(eventID, index, status)
}

func (s *State) updateStatusLocked(eventID string, index int, status models.Status) bool {
	if !status.Valid() {
		return false
	}
	e := s.eventByID(eventID)
	if e == nil || index < 0 || index >= len(e.Guests) {
		return false
	}
	e.Guests[index].Status = status
	s.bumpRevision(eventID)
	return true
}

// RemoveGuest removes the guest at the given position.
func (s *State) RemoveGuest(eventID string, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.eventByID(eventID)
	if e == nil || index < 0 || index >= len(e.Guests) {
		return false
	}
	e.Guests = append(e.Guests[:index], e.Guests[index+1:]...)
	s.bumpRevision(eventID)
	return true
}

// GuestIndex returns the position of the guest with the given id, or -1.
func (s *State) GuestIndex(eventID, guestID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.eventByID(eventID)
	if e == nil {
		return -1
	}
	for i, g := range e.Guests {
		if g.ID == guestID {
			return i
		}
	}
	return -1
}

// BulkUpdateStatus applies a status to every listed index.
// Indices that do not resolve to a guest are skipped. Returns the number
// of guests actually updated.
func (s *State) BulkUpdateStatus(eventID string, status models.Status, indices []int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for _, i := range indices {
		if s.updateStatusLocked(eventID, i, status) {
			updated++
		}
	}
	return updated
}

// SetAllStatuses applies one status to every guest of the event.
func (s *State) SetAllStatuses(eventID string, status models.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !status.Valid() {
		return false
	}
	e := s.eventByID(eventID)
	if e == nil {
		return false
	}
	for i := range e.Guests {
		e.Guests[i].Status = status
	}
	s.bumpRevision(eventID)
	return true
}

// SortGuests orders the event's guests by the first column value or by
// status (yes before no before pending).
func (s *State) SortGuests(eventID, field string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.eventByID(eventID)
	if e == nil || len(e.Guests) == 0 {
		return false
	}

	switch field {
	case "name":
		if len(e.Columns) == 0 {
			return false
		}
		first := e.Columns[0]
		sort.SliceStable(e.Guests, func(i, j int) bool {
			return e.Guests[i].Fields[first] < e.Guests[j].Fields[first]
		})
	case "status":
		order := map[models.Status]int{models.StatusYes: 0, models.StatusNo: 1, models.StatusPending: 2}
		sort.SliceStable(e.Guests, func(i, j int) bool {
			return order[e.Guests[i].Status] < order[e.Guests[j].Status]
		})
	default:
		return false
	}
	return true
}
