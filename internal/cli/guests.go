package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"guestlist/internal/models"
)

// NewGuestsCommand groups guest-level operations.
func NewGuestsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guests",
		Short: "Manage guests of an event",
	}

	cmd.AddCommand(newGuestsListCommand(opts))
	cmd.AddCommand(newGuestsAddCommand(opts))
	cmd.AddCommand(newGuestsStatusCommand(opts))
	cmd.AddCommand(newGuestsRemoveCommand(opts))
	cmd.AddCommand(newGuestsBulkCommand(opts))
	cmd.AddCommand(newGuestsSortCommand(opts))
	cmd.AddCommand(newGuestsImportCommand(opts))
	return cmd
}

// resolveGuestIndex accepts either a positional index or a guest id.
func resolveGuestIndex(app *App, eventID, ref string) (int, error) {
	if i, err := strconv.Atoi(ref); err == nil {
		return i, nil
	}
	if i := app.State.GuestIndex(eventID, ref); i >= 0 {
		return i, nil
	}
	return 0, fmt.Errorf("no guest %q in event %s", ref, eventID)
}

func newGuestsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <event-id>",
		Short: "List guests with their statuses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			event, ok := app.State.GetEvent(args[0])
			if !ok {
				return fmt.Errorf("event %s not found", args[0])
			}
			if len(event.Guests) == 0 {
				fmt.Println("No guests.")
				return nil
			}
			for i, g := range event.Guests {
				fields := make([]string, 0, len(event.Columns))
				for _, col := range event.Columns {
					fields = append(fields, fmt.Sprintf("%s=%s", col, g.Field(col)))
				}
				fmt.Printf("%3d  [%s]  %s\n", i, g.Status, strings.Join(fields, "  "))
			}
			return nil
		},
	}
}

func newGuestsAddCommand(opts *RootOptions) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "add <event-id>",
		Short: "Add a guest (field values via --field Col=Value)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			guest := models.Guest{Fields: make(map[string]string)}
			for _, f := range fields {
				key, value, found := strings.Cut(f, "=")
				if !found {
					return fmt.Errorf("invalid field %q, want Col=Value", f)
				}
				guest.Fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}

			added, ok := app.Overlay.AddGuest(cmd.Context(), args[0], guest)
			if !ok {
				return fmt.Errorf("event %s not found", args[0])
			}
			fmt.Printf("Added guest %s\n", added.ID)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&fields, "field", nil, "guest field as Col=Value (repeatable)")
	return cmd
}

func newGuestsStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <event-id> <index|guest-id> <pending|yes|no>",
		Short: "Set a guest's confirmation status",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			index, err := resolveGuestIndex(app, args[0], args[1])
			if err != nil {
				return err
			}
			status := models.Status(args[2])
			if !status.Valid() {
				return fmt.Errorf("invalid status %q, want pending, yes or no", args[2])
			}

			if !app.Overlay.UpdateGuestStatus(cmd.Context(), args[0], index, status) {
				return fmt.Errorf("no guest at index %d", index)
			}
			fmt.Println("Status updated.")
			return nil
		},
	}
}

func newGuestsRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <event-id> <index|guest-id>",
		Short: "Remove a guest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			index, err := resolveGuestIndex(app, args[0], args[1])
			if err != nil {
				return err
			}
			if !app.Overlay.RemoveGuest(cmd.Context(), args[0], index) {
				return fmt.Errorf("no guest at index %d", index)
			}
			fmt.Println("Guest removed.")
			return nil
		},
	}
}

func newGuestsBulkCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk <event-id> <pending|yes|no> <index,index,...|all>",
		Short: "Apply a status to several guests at once",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			status := models.Status(args[1])
			if !status.Valid() {
				return fmt.Errorf("invalid status %q", args[1])
			}

			if args[2] == "all" {
				if !app.State.SetAllStatuses(args[0], status) {
					return fmt.Errorf("event %s not found", args[0])
				}
				if err := app.Store.Save(); err != nil {
					return err
				}
				fmt.Println("All guests updated.")
				return nil
			}

			var indices []int
			for _, part := range strings.Split(args[2], ",") {
				i, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					return fmt.Errorf("invalid index %q", part)
				}
				indices = append(indices, i)
			}
			updated := app.State.BulkUpdateStatus(args[0], status, indices)
			if err := app.Store.Save(); err != nil {
				return err
			}
			fmt.Printf("%d guests updated.\n", updated)
			return nil
		},
	}
}

func newGuestsImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <event-id> [file]",
		Short: "Bulk-add guests from comma-separated rows (file or stdin)",
		Long:  "Each row is one guest; values map onto the event's columns in order. Blank lines are skipped.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			event, ok := app.State.GetEvent(args[0])
			if !ok {
				return fmt.Errorf("event %s not found", args[0])
			}
			if len(event.Columns) == 0 {
				return fmt.Errorf("event has no column schema; run events columns first")
			}

			var in io.Reader = os.Stdin
			if len(args) == 2 && args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[1], err)
				}
				defer f.Close()
				in = f
			}

			var guests []models.Guest
			scanner := bufio.NewScanner(in)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				values := strings.Split(line, ",")
				fields := make(map[string]string, len(event.Columns))
				for i, col := range event.Columns {
					if i < len(values) {
						fields[col] = strings.TrimSpace(values[i])
					}
				}
				guests = append(guests, models.Guest{Fields: fields})
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read rows: %w", err)
			}
			if len(guests) == 0 {
				return fmt.Errorf("no rows to import")
			}

			report, ok := app.Overlay.ImportGuests(cmd.Context(), args[0], guests)
			if !ok {
				return fmt.Errorf("event %s not found", args[0])
			}
			fmt.Printf("Imported %d of %d guests (%d failed).\n", report.Success, report.Total, report.Failed)
			return nil
		},
	}
}

func newGuestsSortCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sort <event-id> <name|status>",
		Short: "Sort guests by first column value or by status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			if !app.State.SortGuests(args[0], args[1]) {
				return fmt.Errorf("cannot sort by %q", args[1])
			}
			if err := app.Store.Save(); err != nil {
				return err
			}
			fmt.Println("Guests sorted.")
			return nil
		},
	}
}
