package state

import "guestlist/internal/models"

type cachedStats struct {
	revision uint64
	stats    models.Stats
}

// CalculateStats returns confirmation counts for the event, memoized per
// event revision. Any guest mutation bumps the revision, so a cached
// snapshot can never outlive a status change even when the guest count is
// unchanged. An unknown event id yields zero stats.
func (s *State) CalculateStats(eventID string, forceRecalc bool) models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.eventByID(eventID)
	if e == nil {
		return models.Stats{}
	}

	rev := s.revisions[eventID]
	if cached, ok := s.statsCache[eventID]; ok && cached.revision == rev && !forceRecalc {
		return cached.stats
	}

	stats := models.Stats{Total: len(e.Guests)}
	for _, g := range e.Guests {
		switch g.Status {
		case models.StatusYes:
			stats.Yes++
		case models.StatusNo:
			stats.No++
		default:
			stats.Pending++
		}
	}
	s.recomputes++

	s.statsCache[eventID] = cachedStats{revision: rev, stats: stats}
	return stats
}

// InvalidateStats drops cached statistics for one event, or for all events
// when id is empty.
func (s *State) InvalidateStats(eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if eventID == "" {
		s.statsCache = make(map[string]cachedStats)
		return
	}
	s.dropStats(eventID)
}

// StatsRecomputes reports how many times stats were actually recomputed.
// Used by tests to verify memoization.
func (s *State) StatsRecomputes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recomputes
}

// bumpRevision invalidates cached stats for the event. Callers must hold the lock.
func (s *State) bumpRevision(eventID string) {
	s.revisions[eventID]++
	delete(s.statsCache, eventID)
}

func (s *State) dropStats(eventID string) {
	delete(s.statsCache, eventID)
	delete(s.revisions, eventID)
}
