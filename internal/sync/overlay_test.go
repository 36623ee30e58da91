package sync

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestlist/internal/api"
	"guestlist/internal/models"
	"guestlist/internal/state"
)

// fakeGateway records every action and answers via a scripted handler.
type fakeGateway struct {
	calls   []api.Action
	handler func(api.Action) api.Result
}

func (f *fakeGateway) Do(_ context.Context, action api.Action) api.Result {
	f.calls = append(f.calls, action)
	if f.handler == nil {
		return api.Result{Success: true}
	}
	return f.handler(action)
}

func (f *fakeGateway) AddGuestsBatch(ctx context.Context, spreadsheetID, eventID string, guests []models.Guest) (api.BatchReport, []string) {
	report := api.BatchReport{Total: len(guests)}
	ids := make([]string, len(guests))
	for i, g := range guests {
		result := f.Do(ctx, api.AddGuest{SpreadsheetID: spreadsheetID, EventID: eventID, Guest: g})
		if !result.Success {
			report.Failed++
			continue
		}
		var data api.GuestData
		if err := result.Decode(&data); err == nil && data.GuestID != "" {
			ids[i] = data.GuestID
		} else {
			ids[i] = models.NewID()
		}
		report.Success++
	}
	return report, ids
}

func okWith(t *testing.T, payload any) api.Result {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return api.Result{Success: true, Data: data}
}

func failed(msg string) api.Result {
	return api.Result{Success: false, Error: msg}
}

func withSheet(id string) func() string {
	return func() string { return id }
}

func newOverlay(t *testing.T, gw *fakeGateway, sheetID string) (*Overlay, *state.State) {
	t.Helper()
	st := state.New()
	return NewOverlay(st, nil, gw, nil, withSheet(sheetID)), st
}

func newColumnedEvent(t *testing.T, st *state.State) models.Event {
	t.Helper()
	event := st.CreateEvent("Party", "2026-10-01")
	require.True(t, st.SetColumns(event.ID, []string{"Name", "Phone"}))
	got, ok := st.GetEvent(event.ID)
	require.True(t, ok)
	return got
}

func bindEvent(t *testing.T, st *state.State, id string) {
	t.Helper()
	require.True(t, st.SetSheetBinding(id, "remote-1", "Party"))
}

func guest(name string) models.Guest {
	return models.Guest{Fields: map[string]string{"Name": name}}
}

func TestAddGuest_OfflineStaysLocal(t *testing.T) {
	gw := &fakeGateway{}
	o, st := newOverlay(t, gw, "")
	event := newColumnedEvent(t, st)

	added, ok := o.AddGuest(context.Background(), event.ID, guest("Ana"))
	require.True(t, ok)
	assert.NotEmpty(t, added.ID)
	assert.Empty(t, gw.calls, "no identity means no remote traffic")

	got, _ := st.GetEvent(event.ID)
	assert.False(t, got.CloudBound)
	assert.Len(t, got.Guests, 1)
	assert.Equal(t, models.MethodManual, got.Method)
}

func TestAddGuest_ProvisionsLazily(t *testing.T) {
	gw := &fakeGateway{}
	gw.handler = func(action api.Action) api.Result {
		switch action.(type) {
		case api.CreateEvent:
			return okWith(t, api.EventData{EventID: "remote-9", SheetName: "Party"})
		case api.AddGuest:
			return okWith(t, api.GuestData{GuestID: "g-remote-1"})
		default:
			return failed("unexpected action")
		}
	}
	o, st := newOverlay(t, gw, "sheet-1")
	event := newColumnedEvent(t, st)

	added, ok := o.AddGuest(context.Background(), event.ID, guest("Ana"))
	require.True(t, ok)

	require.Len(t, gw.calls, 2)
	create, isCreate := gw.calls[0].(api.CreateEvent)
	require.True(t, isCreate, "first guest add provisions the sheet")
	assert.Equal(t, "sheet-1", create.SpreadsheetID)
	assert.Equal(t, []string{"Name", "Phone"}, create.Columns)

	got, _ := st.GetEvent(event.ID)
	assert.True(t, got.CloudBound)
	assert.Equal(t, "remote-9", got.RemoteID)
	assert.Equal(t, "Party", got.SheetName)
	assert.Equal(t, "g-remote-1", added.ID, "backend-assigned guest id wins")
}

func TestAddGuest_SkipsProvisioningWithoutColumns(t *testing.T) {
	gw := &fakeGateway{}
	o, st := newOverlay(t, gw, "sheet-1")
	event := st.CreateEvent("Party", "")

	_, ok := o.AddGuest(context.Background(), event.ID, guest("Ana"))
	require.True(t, ok)
	assert.Empty(t, gw.calls, "no column schema means nothing to provision yet")

	got, _ := st.GetEvent(event.ID)
	assert.False(t, got.CloudBound)
}

func TestAddGuest_ProvisioningFailureStaysLocal(t *testing.T) {
	gw := &fakeGateway{handler: func(api.Action) api.Result { return failed("backend down") }}
	o, st := newOverlay(t, gw, "sheet-1")
	event := newColumnedEvent(t, st)

	_, ok := o.AddGuest(context.Background(), event.ID, guest("Ana"))
	require.True(t, ok, "provisioning failure never loses the guest")

	got, _ := st.GetEvent(event.ID)
	assert.False(t, got.CloudBound, "event stays unbound for a later retry")
	assert.Len(t, got.Guests, 1)
}

func TestAddGuest_RemoteFailureKeepsLocalAndDegrades(t *testing.T) {
	gw := &fakeGateway{handler: func(api.Action) api.Result { return failed("quota exceeded") }}
	o, st := newOverlay(t, gw, "sheet-1")
	event := newColumnedEvent(t, st)
	bindEvent(t, st, event.ID)

	added, ok := o.AddGuest(context.Background(), event.ID, guest("Ana"))
	require.True(t, ok)
	assert.NotEmpty(t, added.ID, "falls back to a locally generated id")

	got, _ := st.GetEvent(event.ID)
	assert.Len(t, got.Guests, 1)
	assert.True(t, got.SyncDegraded)
}

func TestRenameEvent_RollsBackOnRemoteFailure(t *testing.T) {
	gw := &fakeGateway{handler: func(api.Action) api.Result { return failed("rejected") }}
	o, st := newOverlay(t, gw, "sheet-1")
	event := newColumnedEvent(t, st)
	bindEvent(t, st, event.ID)

	ok := o.RenameEvent(context.Background(), event.ID, "Gala")
	assert.False(t, ok)

	got, _ := st.GetEvent(event.ID)
	assert.Equal(t, "Party", got.Name, "local name reverts when the remote edit is refused")
}

func TestRenameEvent_OfflineSucceedsLocally(t *testing.T) {
	gw := &fakeGateway{}
	o, st := newOverlay(t, gw, "")
	event := newColumnedEvent(t, st)

	require.True(t, o.RenameEvent(context.Background(), event.ID, "Gala"))
	assert.Empty(t, gw.calls)

	got, _ := st.GetEvent(event.ID)
	assert.Equal(t, "Gala", got.Name)
}

func TestRemoveEvent_RemoteFailureStillRemovesLocally(t *testing.T) {
	gw := &fakeGateway{handler: func(api.Action) api.Result { return failed("nope") }}
	o, st := newOverlay(t, gw, "sheet-1")
	event := newColumnedEvent(t, st)
	bindEvent(t, st, event.ID)

	require.True(t, o.RemoveEvent(context.Background(), event.ID))
	_, ok := st.GetEvent(event.ID)
	assert.False(t, ok)
}

// declineNotifier refuses every confirmation dialog.
type declineNotifier struct{ NopNotifier }

func (declineNotifier) Confirm(string) bool { return false }

func TestRemoveEvent_DeclinedConfirmation(t *testing.T) {
	gw := &fakeGateway{}
	st := state.New()
	o := NewOverlay(st, nil, gw, declineNotifier{}, nil)
	event := st.CreateEvent("Party", "")

	assert.False(t, o.RemoveEvent(context.Background(), event.ID))
	_, ok := st.GetEvent(event.ID)
	assert.True(t, ok, "declining the dialog keeps the event")
	assert.Empty(t, gw.calls)
}

func TestUpdateGuestStatus_MirrorFailureKeepsLocalChange(t *testing.T) {
	gw := &fakeGateway{handler: func(api.Action) api.Result { return failed("timeout") }}
	o, st := newOverlay(t, gw, "sheet-1")
	event := newColumnedEvent(t, st)
	st.AddGuest(event.ID, guest("Ana"))
	bindEvent(t, st, event.ID)

	require.True(t, o.UpdateGuestStatus(context.Background(), event.ID, 0, models.StatusYes))

	got, _ := st.GetEvent(event.ID)
	assert.Equal(t, models.StatusYes, got.Guests[0].Status, "local change stands despite the failed mirror")
	assert.True(t, got.SyncDegraded)
}

func TestUpdateGuest_MirrorsFieldsAndStatus(t *testing.T) {
	gw := &fakeGateway{}
	o, st := newOverlay(t, gw, "sheet-1")
	event := newColumnedEvent(t, st)
	st.AddGuest(event.ID, guest("Ana"))
	bindEvent(t, st, event.ID)

	patch := models.Guest{Status: models.StatusNo, Fields: map[string]string{"Phone": "555"}}
	require.True(t, o.UpdateGuest(context.Background(), event.ID, 0, patch))

	require.Len(t, gw.calls, 1)
	update, isUpdate := gw.calls[0].(api.UpdateGuest)
	require.True(t, isUpdate)
	assert.Equal(t, "remote-1", update.EventID)
	assert.Equal(t, map[string]string{"Phone": "555", "status": "no"}, update.Updates)
}

func TestImportGuests_PartialFailure(t *testing.T) {
	gw := &fakeGateway{}
	n := 0
	gw.handler = func(action api.Action) api.Result {
		if _, isAdd := action.(api.AddGuest); !isAdd {
			return failed("unexpected action")
		}
		n++
		if n == 3 {
			return failed("row rejected")
		}
		return okWith(t, api.GuestData{GuestID: "g-" + string(rune('a'+n))})
	}
	o, st := newOverlay(t, gw, "sheet-1")
	event := newColumnedEvent(t, st)
	bindEvent(t, st, event.ID)

	batch := []models.Guest{guest("A"), guest("B"), guest("C"), guest("D"), guest("E")}
	report, ok := o.ImportGuests(context.Background(), event.ID, batch)
	require.True(t, ok)

	assert.Equal(t, api.BatchReport{Total: 5, Success: 4, Failed: 1}, report)
	got, _ := st.GetEvent(event.ID)
	assert.Len(t, got.Guests, 4, "rejected rows are not kept locally in a batch import")
	assert.Equal(t, "g-b", got.Guests[0].ID, "backend-assigned ids land locally")
	assert.True(t, got.SyncDegraded)
}

func TestImportGuests_OfflineAllSucceed(t *testing.T) {
	gw := &fakeGateway{}
	o, st := newOverlay(t, gw, "")
	event := newColumnedEvent(t, st)

	batch := []models.Guest{guest("A"), guest("B"), guest("C")}
	report, ok := o.ImportGuests(context.Background(), event.ID, batch)
	require.True(t, ok)

	assert.Equal(t, api.BatchReport{Total: 3, Success: 3}, report)
	assert.Empty(t, gw.calls)
	got, _ := st.GetEvent(event.ID)
	assert.Len(t, got.Guests, 3)
	assert.Equal(t, models.MethodPaste, got.Method)
}

func TestLoadFromCloud(t *testing.T) {
	remote := []models.Event{{
		ID:      "ev-remote",
		Name:    "Conference",
		Columns: []string{"Name"},
		Guests:  []models.Guest{{ID: "g1", Status: models.StatusYes, Fields: map[string]string{"Name": "Ana"}}},
	}}
	gw := &fakeGateway{handler: func(action api.Action) api.Result {
		if _, isFull := action.(api.GetFullData); isFull {
			return okWith(t, api.FullData{Events: remote})
		}
		return failed("unexpected action")
	}}
	o, st := newOverlay(t, gw, "sheet-1")
	st.CreateEvent("Stale", "")

	require.NoError(t, o.LoadFromCloud(context.Background()))
	events := st.Events()
	require.Len(t, events, 1, "cloud copy is authoritative on load")
	assert.Equal(t, "ev-remote", events[0].ID)
}

func TestLoadFromCloud_NotLoggedIn(t *testing.T) {
	gw := &fakeGateway{}
	o, _ := newOverlay(t, gw, "")

	assert.Error(t, o.LoadFromCloud(context.Background()))
	assert.Empty(t, gw.calls)
}

func TestRefresh_FailureLeavesStateUntouched(t *testing.T) {
	gw := &fakeGateway{handler: func(api.Action) api.Result { return failed("down") }}
	o, st := newOverlay(t, gw, "sheet-1")
	newColumnedEvent(t, st)

	o.Refresh(context.Background())
	assert.Len(t, st.Events(), 1)
}
