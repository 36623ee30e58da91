// Package export renders one event's guest list as CSV, TXT, Markdown,
// JSON, PDF or XLSX. All functions are read-only over the event data.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"guestlist/internal/models"
)

// ErrEmptyEvent is wrapped when an event has no guests to export.
var errEmpty = fmt.Errorf("event has no guests to export")

func statusLabel(s models.Status) string {
	switch s {
	case models.StatusYes:
		return "Confirmed"
	case models.StatusNo:
		return "Declined"
	default:
		return "Pending"
	}
}

func statusMark(s models.Status) string {
	switch s {
	case models.StatusYes:
		return "[x]"
	case models.StatusNo:
		return "[-]"
	default:
		return "[ ]"
	}
}

// CSV renders the event as comma-separated values: one column per schema
// column plus a trailing Status column.
func CSV(event models.Event) (string, error) {
	if len(event.Guests) == 0 {
		return "", errEmpty
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append(append([]string{}, event.Columns...), "Status")
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, g := range event.Guests {
		row := make([]string, 0, len(event.Columns)+1)
		for _, col := range event.Columns {
			row = append(row, g.Field(col))
		}
		row = append(row, statusLabel(g.Status))
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TXT renders a printable checklist with a stats footer.
func TXT(event models.Event, stats models.Stats) (string, error) {
	if len(event.Guests) == 0 {
		return "", errEmpty
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", strings.ToUpper(event.Name), strings.Repeat("=", 50))
	if event.Date != "" {
		fmt.Fprintf(&b, "DATE: %s\n\n", formatDate(event.Date))
	}

	var first string
	if len(event.Columns) > 0 {
		first = event.Columns[0]
	}
	for _, g := range event.Guests {
		name := g.Field(first)
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(&b, "%s %s\n", statusMark(g.Status), name)
		for _, col := range event.Columns[min(1, len(event.Columns)):] {
			if v := g.Field(col); v != "" {
				fmt.Fprintf(&b, "   %s: %s\n", col, v)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 50))
	fmt.Fprintf(&b, "Total: %d | Yes: %d | No: %d | Pending: %d\n",
		stats.Total, stats.Yes, stats.No, stats.Pending)
	return b.String(), nil
}

// Markdown renders the event as a Markdown table with a stats line.
func Markdown(event models.Event, stats models.Stats) (string, error) {
	if len(event.Guests) == 0 {
		return "", errEmpty
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", event.Name)
	if event.Date != "" {
		fmt.Fprintf(&b, "**Date:** %s\n\n", formatDate(event.Date))
	}
	fmt.Fprintf(&b, "**Stats:** Total: %d | Confirmed: %d | Declined: %d | Pending: %d\n\n",
		stats.Total, stats.Yes, stats.No, stats.Pending)

	fmt.Fprintf(&b, "| # | Status | %s |\n", strings.Join(event.Columns, " | "))
	fmt.Fprintf(&b, "|---|--------|%s|\n", strings.Repeat("---|", len(event.Columns)))
	for i, g := range event.Guests {
		cells := make([]string, 0, len(event.Columns))
		for _, col := range event.Columns {
			v := g.Field(col)
			if v == "" {
				v = "-"
			}
			cells = append(cells, v)
		}
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, statusLabel(g.Status), strings.Join(cells, " | "))
	}
	return b.String(), nil
}

// JSON renders the event with its stats as an indented JSON document.
func JSON(event models.Event, stats models.Stats) (string, error) {
	if len(event.Guests) == 0 {
		return "", errEmpty
	}
	doc := struct {
		Event models.Event `json:"event"`
		Stats models.Stats `json:"stats"`
	}{event, stats}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}
	return string(data), nil
}

// formatDate converts an ISO date to DD/MM/YYYY, passing through anything
// that does not parse.
func formatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}
