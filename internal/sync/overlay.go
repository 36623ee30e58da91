// Package sync mirrors local state mutations to the spreadsheet backend
// under a local-first policy: local data is never dropped when a remote
// call fails. The overlay presents the same mutation surface as the state
// store and delegates to it, so it can transparently substitute for the
// plain store when cloud sync is enabled.
package sync

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"guestlist/internal/api"
	"guestlist/internal/models"
	"guestlist/internal/state"
	"guestlist/internal/storage"
)

// Gateway is the remote call surface the overlay depends on.
type Gateway interface {
	Do(ctx context.Context, action api.Action) api.Result
	AddGuestsBatch(ctx context.Context, spreadsheetID, eventID string, guests []models.Guest) (api.BatchReport, []string)
}

type Overlay struct {
	state    *state.State
	store    *storage.Store
	gateway  Gateway
	notifier Notifier

	// spreadsheetID yields the remote resource handle for the current
	// identity, or "" when not logged in. Provisioning is skipped without it.
	spreadsheetID func() string

	log zerolog.Logger
}

// NewOverlay wires the overlay around a base state store.
func NewOverlay(st *state.State, store *storage.Store, gateway Gateway, notifier Notifier, spreadsheetID func() string) *Overlay {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if spreadsheetID == nil {
		spreadsheetID = func() string { return "" }
	}
	return &Overlay{
		state:         st,
		store:         store,
		gateway:       gateway,
		notifier:      notifier,
		spreadsheetID: spreadsheetID,
		log:           zerolog.New(os.Stdout).With().Str("component", "sync").Logger(),
	}
}

// CreateEvent creates the event locally. The remote counterpart is
// provisioned lazily on the first guest add, once columns are known, so the
// sheet headers never need a second call to fix up.
func (o *Overlay) CreateEvent(ctx context.Context, name, date string) models.Event {
	event := o.state.CreateEvent(name, date)
	o.persist()
	return event
}

// RemoveEvent deletes the event remotely best-effort and locally always.
// The authoritative intent is "this is gone"; a remote failure does not keep
// the event alive locally.
func (o *Overlay) RemoveEvent(ctx context.Context, id string) bool {
	event, ok := o.state.GetEvent(id)
	if !ok {
		return false
	}
	if !o.notifier.Confirm(fmt.Sprintf("Delete event %q and its %d guests?", event.Name, len(event.Guests))) {
		return false
	}

	if event.CloudBound {
		o.notifier.ShowLoading("Deleting event...")
		result := o.gateway.Do(ctx, api.DeleteEvent{
			SpreadsheetID: o.spreadsheetID(),
			EventID:       o.remoteID(event),
		})
		o.notifier.HideLoading()
		if !result.Success {
			o.log.Warn().Str("event", id).Str("error", result.Error).Msg("remote delete failed, removing locally anyway")
			o.notifier.Toast("Event removed locally; remote copy may remain")
		}
	}

	removed := o.state.RemoveEvent(id)
	if removed {
		o.persist()
	}
	return removed
}

// RenameEvent renames optimistically and rolls the local name back when the
// remote call fails. A visible name mismatch between local and remote is
// worse than a rejected edit.
func (o *Overlay) RenameEvent(ctx context.Context, id, name string) bool {
	event, ok := o.state.GetEvent(id)
	if !ok {
		return false
	}
	oldName := event.Name

	if !o.state.RenameEvent(id, name) {
		return false
	}

	if event.CloudBound {
		o.notifier.ShowLoading("Renaming event...")
		result := o.gateway.Do(ctx, api.UpdateEvent{
			SpreadsheetID: o.spreadsheetID(),
			EventID:       o.remoteID(event),
			NewName:       name,
		})
		o.notifier.HideLoading()
		if !result.Success {
			o.state.RenameEvent(id, oldName)
			o.notifier.Toast(fmt.Sprintf("Rename failed: %s", result.Error))
			return false
		}
	}

	o.persist()
	return true
}

// AddGuest appends a guest. For an unbound event with a configured column
// schema the remote counterpart is provisioned first; if provisioning fails
// the write is local-only and the event stays unbound, to be retried on the
// next add. For a bound event the remote id is authoritative; on remote
// failure the guest is kept locally with a generated id and the event is
// marked sync-degraded.
func (o *Overlay) AddGuest(ctx context.Context, eventID string, guest models.Guest) (models.Guest, bool) {
	event, ok := o.state.GetEvent(eventID)
	if !ok {
		return models.Guest{}, false
	}

	if !event.CloudBound {
		if provisioned, ok := o.provision(ctx, event); ok {
			event = provisioned
		}
	}

	if event.CloudBound {
		o.notifier.ShowLoading("Adding guest...")
		result := o.gateway.Do(ctx, api.AddGuest{
			SpreadsheetID: o.spreadsheetID(),
			EventID:       o.remoteID(event),
			Guest:         guest,
		})
		o.notifier.HideLoading()

		if result.Success {
			var data api.GuestData
			if err := result.Decode(&data); err == nil && data.GuestID != "" {
				guest.ID = data.GuestID
			}
			o.state.SetSyncDegraded(eventID, false)
		} else {
			o.log.Warn().Str("event", eventID).Str("error", result.Error).Msg("remote add failed, keeping guest locally")
			o.state.SetSyncDegraded(eventID, true)
			o.notifier.Toast("Guest saved locally; sync is behind")
		}
	}

	added, ok := o.state.AddGuest(eventID, guest)
	if ok {
		if event.Method == models.MethodNone {
			o.state.SetMethod(eventID, models.MethodManual)
		}
		o.persist()
	}
	return added, ok
}

// UpdateGuest applies the patch locally first, then mirrors it best-effort.
// Remote failure is surfaced but never rolled back.
func (o *Overlay) UpdateGuest(ctx context.Context, eventID string, index int, patch models.Guest) bool {
	event, ok := o.state.GetEvent(eventID)
	if !ok || index < 0 || index >= len(event.Guests) {
		return false
	}
	guestID := event.Guests[index].ID

	if !o.state.UpdateGuest(eventID, index, patch) {
		return false
	}
	o.persist()

	if event.CloudBound {
		updates := make(map[string]string, len(patch.Fields)+1)
		for k, v := range patch.Fields {
			updates[k] = v
		}
		if patch.Status != "" {
			updates["status"] = string(patch.Status)
		}
		o.mirrorGuestUpdate(ctx, event, guestID, updates)
	}
	return true
}

// UpdateGuestStatus sets the status locally first, then mirrors it.
func (o *Overlay) UpdateGuestStatus(ctx context.Context, eventID string, index int, status models.Status) bool {
	event, ok := o.state.GetEvent(eventID)
	if !ok || index < 0 || index >= len(event.Guests) {
		return false
	}
	guestID := event.Guests[index].ID

	if !o.state.UpdateGuestStatus(eventID, index, status) {
		return false
	}
	o.persist()

	if event.CloudBound {
		o.mirrorGuestUpdate(ctx, event, guestID, map[string]string{"status": string(status)})
	}
	return true
}

// RemoveGuest deletes remotely best-effort, locally always.
func (o *Overlay) RemoveGuest(ctx context.Context, eventID string, index int) bool {
	event, ok := o.state.GetEvent(eventID)
	if !ok || index < 0 || index >= len(event.Guests) {
		return false
	}
	guestID := event.Guests[index].ID

	if event.CloudBound {
		o.notifier.ShowLoading("Removing guest...")
		result := o.gateway.Do(ctx, api.DeleteGuest{
			SpreadsheetID: o.spreadsheetID(),
			EventID:       o.remoteID(event),
			GuestID:       guestID,
		})
		o.notifier.HideLoading()
		if !result.Success {
			o.log.Warn().Str("guest", guestID).Str("error", result.Error).Msg("remote delete failed, removing locally anyway")
		}
	}

	removed := o.state.RemoveGuest(eventID, index)
	if removed {
		o.persist()
	}
	return removed
}

// ImportGuests bulk-adds guests with fail-soft semantics: the loop continues
// item by item and reports a tally instead of aborting on the first error.
// Successful entries land locally with the backend-assigned ids.
func (o *Overlay) ImportGuests(ctx context.Context, eventID string, guests []models.Guest) (api.BatchReport, bool) {
	event, ok := o.state.GetEvent(eventID)
	if !ok {
		return api.BatchReport{}, false
	}

	if !event.CloudBound {
		if provisioned, ok := o.provision(ctx, event); ok {
			event = provisioned
		}
	}

	o.state.SetMethod(eventID, models.MethodPaste)

	if !event.CloudBound {
		// Offline import: everything succeeds locally.
		for _, g := range guests {
			o.state.AddGuest(eventID, g)
		}
		o.persist()
		return api.BatchReport{Total: len(guests), Success: len(guests)}, true
	}

	o.notifier.ShowLoading(fmt.Sprintf("Importing %d guests...", len(guests)))
	report, ids := o.gateway.AddGuestsBatch(ctx, o.spreadsheetID(), o.remoteID(event), guests)
	o.notifier.HideLoading()

	for i, guest := range guests {
		if ids[i] == "" {
			continue
		}
		guest.ID = ids[i]
		o.state.AddGuest(eventID, guest)
	}

	if report.Failed > 0 {
		o.state.SetSyncDegraded(eventID, true)
		o.notifier.Toast(fmt.Sprintf("Imported %d of %d guests", report.Success, report.Total))
	}
	o.persist()
	return report, true
}

// LoadFromCloud replaces the whole collection with the backend's view.
// The remote copy is authoritative on initial load only.
func (o *Overlay) LoadFromCloud(ctx context.Context) error {
	sheetID := o.spreadsheetID()
	if sheetID == "" {
		return fmt.Errorf("not logged in")
	}

	o.notifier.ShowLoading("Downloading data...")
	result := o.gateway.Do(ctx, api.GetFullData{SpreadsheetID: sheetID})
	o.notifier.HideLoading()

	if !result.Success {
		return fmt.Errorf("cloud fetch failed: %s", result.Error)
	}
	var data api.FullData
	if err := result.Decode(&data); err != nil {
		return fmt.Errorf("cloud fetch returned malformed data: %w", err)
	}

	o.state.ReplaceEvents(data.Events)
	o.persist()
	o.log.Info().Int("events", len(data.Events)).Msg("loaded from cloud")
	return nil
}

// Refresh is the silent polling variant of LoadFromCloud: failures are
// logged, never surfaced.
func (o *Overlay) Refresh(ctx context.Context) {
	sheetID := o.spreadsheetID()
	if sheetID == "" {
		return
	}
	result := o.gateway.Do(ctx, api.GetFullData{SpreadsheetID: sheetID})
	if !result.Success {
		o.log.Warn().Str("error", result.Error).Msg("cloud refresh failed")
		return
	}
	var data api.FullData
	if err := result.Decode(&data); err != nil {
		o.log.Warn().Err(err).Msg("cloud refresh returned malformed data")
		return
	}
	o.state.ReplaceEvents(data.Events)
	o.persist()
}

// provision creates the remote counterpart for an unbound event whose
// column schema is configured. Returns the refreshed event and whether it
// is now bound.
func (o *Overlay) provision(ctx context.Context, event models.Event) (models.Event, bool) {
	sheetID := o.spreadsheetID()
	if sheetID == "" || len(event.Columns) == 0 {
		return event, false
	}

	o.notifier.ShowLoading("Provisioning sheet...")
	result := o.gateway.Do(ctx, api.CreateEvent{
		SpreadsheetID: sheetID,
		Name:          event.Name,
		Date:          event.Date,
		Columns:       event.Columns,
	})
	o.notifier.HideLoading()

	if !result.Success {
		o.log.Warn().Str("event", event.ID).Str("error", result.Error).Msg("provisioning failed, staying local")
		return event, false
	}

	var data api.EventData
	if err := result.Decode(&data); err != nil {
		o.log.Warn().Err(err).Msg("provisioning response malformed, staying local")
		return event, false
	}

	o.state.SetSheetBinding(event.ID, data.EventID, data.SheetName)
	o.persist()
	refreshed, _ := o.state.GetEvent(event.ID)
	return refreshed, true
}

// mirrorGuestUpdate fires a best-effort remote update; failure marks the
// event sync-degraded, the local change stands.
func (o *Overlay) mirrorGuestUpdate(ctx context.Context, event models.Event, guestID string, updates map[string]string) {
	o.notifier.ShowLoading("Syncing...")
	result := o.gateway.Do(ctx, api.UpdateGuest{
		SpreadsheetID: o.spreadsheetID(),
		EventID:       o.remoteID(event),
		GuestID:       guestID,
		Updates:       updates,
	})
	o.notifier.HideLoading()

	if !result.Success {
		o.log.Warn().Str("guest", guestID).Str("error", result.Error).Msg("remote update failed, keeping local change")
		o.state.SetSyncDegraded(event.ID, true)
	} else {
		o.state.SetSyncDegraded(event.ID, false)
	}
}

// remoteID returns the id the backend knows the event by.
func (o *Overlay) remoteID(event models.Event) string {
	if event.RemoteID != "" {
		return event.RemoteID
	}
	return event.ID
}

func (o *Overlay) persist() {
	if o.store == nil {
		return
	}
	if err := o.store.Save(); err != nil {
		o.log.Error().Err(err).Msg("local save failed")
		o.notifier.Toast(err.Error())
	}
}
