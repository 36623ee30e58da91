package models

import (
	"time"

	"github.com/google/uuid"
)

// Status represents a guest's attendance confirmation
type Status string

const (
	StatusPending Status = "pending"
	StatusYes     Status = "yes"
	StatusNo      Status = "no"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusYes, StatusNo:
		return true
	}
	return false
}

// ImportMethod selects which import flow an event uses
type ImportMethod string

const (
	MethodNone   ImportMethod = ""
	MethodPaste  ImportMethod = "paste"
	MethodManual ImportMethod = "manual"
)

// Guest is one invitee row under an Event. Fields holds one value per
// event column; missing columns read as empty string.
type Guest struct {
	ID     string            `json:"id"`
	Status Status            `json:"status"`
	Fields map[string]string `json:"fields"`
}

// Field returns the value for a column, or "" when unset.
func (g Guest) Field(column string) string {
	return g.Fields[column]
}

// Clone returns a deep copy of the guest.
func (g Guest) Clone() Guest {
	c := g
	c.Fields = make(map[string]string, len(g.Fields))
	for k, v := range g.Fields {
		c.Fields[k] = v
	}
	return c
}

// Event is a single tracked occasion with its own guest list and column schema
type Event struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Date    string       `json:"date,omitempty"`
	Columns []string     `json:"columns"`
	Guests  []Guest      `json:"guests"`
	Method  ImportMethod `json:"method,omitempty"`

	// Remote mirror bookkeeping. RemoteID and SheetName are assigned by the
	// spreadsheet backend once the event is cloud-bound.
	RemoteID     string `json:"remote_id,omitempty"`
	SheetName    string `json:"sheet_name,omitempty"`
	CloudBound   bool   `json:"cloud_bound,omitempty"`
	SyncDegraded bool   `json:"sync_degraded,omitempty"`
}

// Clone returns a deep copy of the event including all guests.
// An empty column schema stays an empty slice, never nil, so clones survive
// serialization and validation unchanged.
func (e Event) Clone() Event {
	c := e
	c.Columns = make([]string, len(e.Columns))
	copy(c.Columns, e.Columns)
	c.Guests = make([]Guest, len(e.Guests))
	for i, g := range e.Guests {
		c.Guests[i] = g.Clone()
	}
	return c
}

// Stats summarizes confirmation counts for one event
type Stats struct {
	Total   int `json:"total"`
	Yes     int `json:"yes"`
	No      int `json:"no"`
	Pending int `json:"pending"`
}

// Snapshot is a full serialization of the application state
type Snapshot struct {
	Version        string    `json:"version"`
	Date           time.Time `json:"date"`
	Events         []Event   `json:"events"`
	CurrentEventID string    `json:"current_event_id,omitempty"`
}

// BackupMetadata summarizes a backup's contents
type BackupMetadata struct {
	TotalEvents int       `json:"total_events"`
	TotalGuests int       `json:"total_guests"`
	CreatedAt   time.Time `json:"created_at"`
}

// Backup is a downloadable snapshot of all events
type Backup struct {
	Version  string         `json:"version"`
	Date     time.Time      `json:"date"`
	Events   []Event        `json:"events"`
	Metadata BackupMetadata `json:"metadata"`
}

// SnapshotVersion tags exported snapshots and backups
const SnapshotVersion = "2.1"

// NewID generates an opaque unique identifier for events and guests
func NewID() string {
	return uuid.NewString()
}
