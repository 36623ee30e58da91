package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewEventsCommand groups event-level operations.
func NewEventsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage events",
	}

	cmd.AddCommand(newEventsListCommand(opts))
	cmd.AddCommand(newEventsCreateCommand(opts))
	cmd.AddCommand(newEventsDeleteCommand(opts))
	cmd.AddCommand(newEventsRenameCommand(opts))
	cmd.AddCommand(newEventsDuplicateCommand(opts))
	cmd.AddCommand(newEventsColumnsCommand(opts))
	cmd.AddCommand(newEventsClearCommand(opts))
	return cmd
}

func newEventsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all events",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			events := app.State.Events()
			if len(events) == 0 {
				fmt.Println("No events.")
				return nil
			}
			for _, e := range events {
				marker := " "
				if e.ID == app.State.CurrentEventID() {
					marker = "*"
				}
				cloud := ""
				if e.CloudBound {
					cloud = " [cloud]"
					if e.SyncDegraded {
						cloud = " [cloud, sync behind]"
					}
				}
				fmt.Printf("%s %s  %s (%d guests)%s\n", marker, e.ID, e.Name, len(e.Guests), cloud)
			}
			return nil
		},
	}
}

func newEventsCreateCommand(opts *RootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			event := app.Overlay.CreateEvent(cmd.Context(), args[0], date)
			app.State.SetCurrentEvent(event.ID)
			fmt.Printf("Created event %s (%s)\n", event.Name, event.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "event date (YYYY-MM-DD)")
	return cmd
}

func newEventsDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			if !app.Overlay.RemoveEvent(cmd.Context(), args[0]) {
				return fmt.Errorf("event %s not found", args[0])
			}
			fmt.Println("Event deleted.")
			return nil
		},
	}
}

func newEventsRenameCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <event-id> <new-name>",
		Short: "Rename an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			if !app.Overlay.RenameEvent(cmd.Context(), args[0], args[1]) {
				return fmt.Errorf("rename failed")
			}
			fmt.Printf("Renamed to %s\n", args[1])
			return nil
		},
	}
}

func newEventsDuplicateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <event-id>",
		Short: "Duplicate an event with all guests reset to pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			dup, ok := app.State.DuplicateEvent(args[0])
			if !ok {
				return fmt.Errorf("event %s not found or has no guests", args[0])
			}
			if err := app.Store.Save(); err != nil {
				return err
			}
			fmt.Printf("Created %s (%s)\n", dup.Name, dup.ID)
			return nil
		},
	}
}

func newEventsClearCommand(opts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all events and persisted data",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			if !yes {
				return fmt.Errorf("refusing to delete everything without --yes")
			}
			app.State.ClearAll()
			app.Store.Clear()
			fmt.Println("All data cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion of all local data")
	return cmd
}

func newEventsColumnsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "columns <event-id> <col1,col2,...>",
		Short: "Set the column schema for an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			var columns []string
			for _, c := range strings.Split(args[1], ",") {
				if c = strings.TrimSpace(c); c != "" {
					columns = append(columns, c)
				}
			}
			if len(columns) == 0 {
				return fmt.Errorf("no columns given")
			}
			if !app.State.SetColumns(args[0], columns) {
				return fmt.Errorf("event %s not found", args[0])
			}
			if err := app.Store.Save(); err != nil {
				return err
			}
			fmt.Printf("Columns set: %s\n", strings.Join(columns, ", "))
			return nil
		},
	}
}
