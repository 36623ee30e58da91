package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCommand prints confirmation counts for one event or all events.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [event-id]",
		Short: "Show confirmation statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				event, ok := app.State.GetEvent(args[0])
				if !ok {
					return fmt.Errorf("event %s not found", args[0])
				}
				stats := app.State.CalculateStats(event.ID, false)
				fmt.Printf("%s: total=%d yes=%d no=%d pending=%d\n",
					event.Name, stats.Total, stats.Yes, stats.No, stats.Pending)
				return nil
			}

			events := app.State.Events()
			if len(events) == 0 {
				fmt.Println("No events.")
				return nil
			}
			for _, e := range events {
				stats := app.State.CalculateStats(e.ID, false)
				fmt.Printf("%-30s total=%d yes=%d no=%d pending=%d\n",
					e.Name, stats.Total, stats.Yes, stats.No, stats.Pending)
			}
			return nil
		},
	}
}
