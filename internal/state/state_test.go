package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestlist/internal/models"
)

func newTestEvent(t *testing.T, s *State, guests int) models.Event {
	t.Helper()
	event := s.CreateEvent("Party", "2026-10-01")
	require.True(t, s.SetColumns(event.ID, []string{"Name", "Phone"}))
	for i := 0; i < guests; i++ {
		_, ok := s.AddGuest(event.ID, models.Guest{Fields: map[string]string{"Name": "Guest"}})
		require.True(t, ok)
	}
	got, ok := s.GetEvent(event.ID)
	require.True(t, ok)
	return got
}

func TestCreateEvent(t *testing.T) {
	s := New()
	event := s.CreateEvent("Wedding", "2026-05-01")

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "Wedding", event.Name)
	assert.Equal(t, "2026-05-01", event.Date)
	assert.Empty(t, event.Guests)
	assert.Equal(t, 1, s.EventCount())
}

func TestRemoveEvent(t *testing.T) {
	s := New()
	event := s.CreateEvent("Party", "")

	assert.False(t, s.RemoveEvent("no-such-id"))
	assert.True(t, s.RemoveEvent(event.ID))
	assert.Equal(t, 0, s.EventCount())
}

func TestRemoveEvent_ClearsSelection(t *testing.T) {
	s := New()
	event := s.CreateEvent("Party", "")
	require.True(t, s.SetCurrentEvent(event.ID))

	s.RemoveEvent(event.ID)
	assert.Empty(t, s.CurrentEventID())
}

func TestAddGuest_AssignsIDAndStatus(t *testing.T) {
	s := New()
	event := s.CreateEvent("Party", "")

	guest, ok := s.AddGuest(event.ID, models.Guest{Fields: map[string]string{"Name": "Ana"}})
	require.True(t, ok)
	assert.NotEmpty(t, guest.ID)
	assert.Equal(t, models.StatusPending, guest.Status)

	_, ok = s.AddGuest("no-such-id", models.Guest{})
	assert.False(t, ok)
}

func TestGuestIDsUnique(t *testing.T) {
	s := New()
	event := newTestEvent(t, s, 50)

	seen := make(map[string]bool)
	for _, g := range event.Guests {
		assert.False(t, seen[g.ID], "duplicate guest id %s", g.ID)
		seen[g.ID] = true
	}
}

func TestUpdateGuestStatus_RejectsUnknownStatus(t *testing.T) {
	s := New()
	event := newTestEvent(t, s, 1)

	assert.False(t, s.UpdateGuestStatus(event.ID, 0, models.Status("maybe")))
	assert.True(t, s.UpdateGuestStatus(event.ID, 0, models.StatusYes))
	assert.False(t, s.UpdateGuestStatus(event.ID, 5, models.StatusYes))
	assert.False(t, s.UpdateGuestStatus(event.ID, -1, models.StatusYes))
}

func TestUpdateGuest_MergesPatch(t *testing.T) {
	s := New()
	event := newTestEvent(t, s, 1)

	ok := s.UpdateGuest(event.ID, 0, models.Guest{Fields: map[string]string{"Phone": "555"}})
	require.True(t, ok)

	got, _ := s.GetEvent(event.ID)
	assert.Equal(t, "Guest", got.Guests[0].Field("Name"))
	assert.Equal(t, "555", got.Guests[0].Field("Phone"))
}

func TestRemoveGuest(t *testing.T) {
	s := New()
	event := newTestEvent(t, s, 3)
	keep := event.Guests[0].ID

	assert.True(t, s.RemoveGuest(event.ID, 1))
	assert.False(t, s.RemoveGuest(event.ID, 9))

	got, _ := s.GetEvent(event.ID)
	assert.Len(t, got.Guests, 2)
	assert.Equal(t, keep, got.Guests[0].ID)
}

func TestSetColumns_ReprojectsGuests(t *testing.T) {
	s := New()
	event := s.CreateEvent("Party", "")
	require.True(t, s.SetColumns(event.ID, []string{"Name", "Phone"}))
	s.AddGuest(event.ID, models.Guest{Fields: map[string]string{"Name": "Ana", "Phone": "555"}})

	require.True(t, s.SetColumns(event.ID, []string{"Name", "Email"}))

	got, _ := s.GetEvent(event.ID)
	g := got.Guests[0]
	assert.Equal(t, "Ana", g.Field("Name"))
	assert.Equal(t, "", g.Field("Email"))
	_, hasPhone := g.Fields["Phone"]
	assert.False(t, hasPhone, "removed column should be dropped from guest records")
}

func TestDuplicateEvent(t *testing.T) {
	s := New()
	event := newTestEvent(t, s, 2)
	s.UpdateGuestStatus(event.ID, 0, models.StatusYes)

	dup, ok := s.DuplicateEvent(event.ID)
	require.True(t, ok)
	assert.NotEqual(t, event.ID, dup.ID)
	assert.Equal(t, "Party (Copy)", dup.Name)
	require.Len(t, dup.Guests, 2)

	original, _ := s.GetEvent(event.ID)
	for i, g := range dup.Guests {
		assert.Equal(t, models.StatusPending, g.Status)
		assert.NotEqual(t, original.Guests[i].ID, g.ID)
		assert.Equal(t, original.Guests[i].Field("Name"), g.Field("Name"))
	}
}

func TestDuplicateEvent_RequiresGuests(t *testing.T) {
	s := New()
	event := s.CreateEvent("Empty", "")

	_, ok := s.DuplicateEvent(event.ID)
	assert.False(t, ok)
}

func TestRenameEvent(t *testing.T) {
	s := New()
	event := s.CreateEvent("Party", "")

	assert.False(t, s.RenameEvent(event.ID, "   "))
	assert.True(t, s.RenameEvent(event.ID, "Gala"))

	got, _ := s.GetEvent(event.ID)
	assert.Equal(t, "Gala", got.Name)
}

func TestBulkUpdateStatus(t *testing.T) {
	s := New()
	event := newTestEvent(t, s, 5)

	updated := s.BulkUpdateStatus(event.ID, models.StatusYes, []int{0, 2, 4, 99})
	assert.Equal(t, 3, updated)

	stats := s.CalculateStats(event.ID, false)
	assert.Equal(t, models.Stats{Total: 5, Yes: 3, Pending: 2}, stats)
}

func TestSortGuests_ByStatus(t *testing.T) {
	s := New()
	event := newTestEvent(t, s, 3)
	s.UpdateGuestStatus(event.ID, 2, models.StatusYes)
	s.UpdateGuestStatus(event.ID, 1, models.StatusNo)

	require.True(t, s.SortGuests(event.ID, "status"))

	got, _ := s.GetEvent(event.ID)
	assert.Equal(t, models.StatusYes, got.Guests[0].Status)
	assert.Equal(t, models.StatusNo, got.Guests[1].Status)
	assert.Equal(t, models.StatusPending, got.Guests[2].Status)
}

func TestSortGuests_ByName(t *testing.T) {
	s := New()
	event := s.CreateEvent("Party", "")
	s.SetColumns(event.ID, []string{"Name"})
	for _, name := range []string{"Carla", "Ana", "Bruno"} {
		s.AddGuest(event.ID, models.Guest{Fields: map[string]string{"Name": name}})
	}

	require.True(t, s.SortGuests(event.ID, "name"))

	got, _ := s.GetEvent(event.ID)
	assert.Equal(t, "Ana", got.Guests[0].Field("Name"))
	assert.Equal(t, "Bruno", got.Guests[1].Field("Name"))
	assert.Equal(t, "Carla", got.Guests[2].Field("Name"))
}

func TestSetGuests_ReplacesListAndFillsDefaults(t *testing.T) {
	s := New()
	event := newTestEvent(t, s, 3)

	ok := s.SetGuests(event.ID, []models.Guest{
		{Fields: map[string]string{"Name": "Ana"}},
		{ID: "keep-me", Status: models.StatusYes, Fields: map[string]string{"Name": "Bruno"}},
	})
	require.True(t, ok)

	got, _ := s.GetEvent(event.ID)
	require.Len(t, got.Guests, 2)
	assert.NotEmpty(t, got.Guests[0].ID)
	assert.Equal(t, models.StatusPending, got.Guests[0].Status)
	assert.Equal(t, "keep-me", got.Guests[1].ID)
	assert.Equal(t, models.StatusYes, got.Guests[1].Status)
}

func TestGetEvent_ReturnsCopy(t *testing.T) {
	s := New()
	event := newTestEvent(t, s, 1)

	copy1, _ := s.GetEvent(event.ID)
	copy1.Guests[0].Fields["Name"] = "Changed"
	copy1.Name = "Changed"

	copy2, _ := s.GetEvent(event.ID)
	assert.Equal(t, "Party", copy2.Name)
	assert.Equal(t, "Guest", copy2.Guests[0].Field("Name"))
}

func TestValidate(t *testing.T) {
	s := New()

	assert.Empty(t, s.Validate())

	newTestEvent(t, s, 3)
	assert.Empty(t, s.Validate())

	// Inject structural damage the public surface would not allow.
	s.mu.Lock()
	s.events[0].Guests[1].ID = s.events[0].Guests[0].ID
	s.events = append(s.events, models.Event{Name: "broken"})
	s.mu.Unlock()

	problems := s.Validate()
	// duplicate guest id + missing id + nil column list + nil guest list
	assert.Len(t, problems, 4)
}

func TestClearAll(t *testing.T) {
	s := New()
	newTestEvent(t, s, 2)

	s.ClearAll()
	assert.Equal(t, 0, s.EventCount())
	assert.Empty(t, s.CurrentEventID())
}
