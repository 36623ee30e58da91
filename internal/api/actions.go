package api

import (
	"encoding/json"
	"fmt"

	"guestlist/internal/models"
)

// Action is one operation of the spreadsheet backend. Each action carries a
// statically typed payload; the wire shape stays the flat JSON object the
// backend expects, with the action name injected as the "action" field.
type Action interface {
	ActionName() string
}

type GetOrCreateSpreadsheet struct {
	Email string `json:"email"`
}

func (GetOrCreateSpreadsheet) ActionName() string { return "getOrCreateSpreadsheet" }

type CreateEvent struct {
	SpreadsheetID string   `json:"spreadsheetId"`
	Name          string   `json:"name"`
	Date          string   `json:"date"`
	Description   string   `json:"description"`
	Columns       []string `json:"columns"`
}

func (CreateEvent) ActionName() string { return "createEvent" }

type DeleteEvent struct {
	SpreadsheetID string `json:"spreadsheetId"`
	EventID       string `json:"eventId"`
}

func (DeleteEvent) ActionName() string { return "deleteEvent" }

type UpdateEvent struct {
	SpreadsheetID string `json:"spreadsheetId"`
	EventID       string `json:"eventId"`
	NewName       string `json:"newName"`
}

func (UpdateEvent) ActionName() string { return "updateEvent" }

type AddGuest struct {
	SpreadsheetID string       `json:"spreadsheetId"`
	EventID       string       `json:"eventId"`
	Guest         models.Guest `json:"guest"`
}

func (AddGuest) ActionName() string { return "addGuest" }

type UpdateGuest struct {
	SpreadsheetID string            `json:"spreadsheetId"`
	EventID       string            `json:"eventId"`
	GuestID       string            `json:"guestId"`
	Updates       map[string]string `json:"updates"`
}

func (UpdateGuest) ActionName() string { return "updateGuest" }

type DeleteGuest struct {
	SpreadsheetID string `json:"spreadsheetId"`
	EventID       string `json:"eventId"`
	GuestID       string `json:"guestId"`
}

func (DeleteGuest) ActionName() string { return "deleteGuest" }

type GetFullData struct {
	SpreadsheetID string `json:"spreadsheetId"`
}

func (GetFullData) ActionName() string { return "getFullData" }

type Ping struct{}

func (Ping) ActionName() string { return "ping" }

// Result is the uniform outcome of every gateway call. Transport failures,
// timeouts and malformed responses all surface here, never as panics or
// errors the caller must unwind.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Decode unmarshals the result payload into v.
func (r Result) Decode(v any) error {
	if !r.Success {
		return fmt.Errorf("cannot decode failed result: %s", r.Error)
	}
	if len(r.Data) == 0 {
		return fmt.Errorf("result has no data")
	}
	return json.Unmarshal(r.Data, v)
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Typed payloads of the responses the core consumes.

type SpreadsheetData struct {
	SpreadsheetID  string `json:"spreadsheetId"`
	SpreadsheetURL string `json:"spreadsheetUrl,omitempty"`
	IsNew          bool   `json:"isNew,omitempty"`
}

type EventData struct {
	EventID   string `json:"eventId"`
	SheetName string `json:"sheetName"`
}

type GuestData struct {
	GuestID string `json:"guestId"`
}

type FullData struct {
	Events []models.Event `json:"events"`
}

type PingData struct {
	Message string `json:"message"`
}

// encodeRequest flattens an action into the wire body with the action name injected.
func encodeRequest(action Action) ([]byte, error) {
	raw, err := json.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action %s: %w", action.ActionName(), err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten action %s: %w", action.ActionName(), err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields["action"] = action.ActionName()
	return json.Marshal(fields)
}
