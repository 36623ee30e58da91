package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"guestlist/internal/export"
	"guestlist/internal/models"
)

// NewExportCommand renders one event in the requested format.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export [event-id]",
		Short: "Export an event's guest list (defaults to the selected event)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			var event models.Event
			var ok bool
			if len(args) == 1 {
				event, ok = app.State.GetEvent(args[0])
				if !ok {
					return fmt.Errorf("event %s not found", args[0])
				}
			} else {
				event, ok = app.State.CurrentEvent()
				if !ok {
					return fmt.Errorf("no event selected, pass an event id")
				}
			}
			stats := app.State.CalculateStats(event.ID, false)

			var data []byte
			switch format {
			case "csv":
				s, err := export.CSV(event)
				if err != nil {
					return err
				}
				data = []byte(s)
			case "txt":
				s, err := export.TXT(event, stats)
				if err != nil {
					return err
				}
				data = []byte(s)
			case "md":
				s, err := export.Markdown(event, stats)
				if err != nil {
					return err
				}
				data = []byte(s)
			case "json":
				s, err := export.JSON(event, stats)
				if err != nil {
					return err
				}
				data = []byte(s)
			case "pdf":
				data, err = export.PDF(event, stats)
				if err != nil {
					return err
				}
			case "xlsx":
				data, err = export.XLSX(event, stats)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported format %q (csv, txt, md, json, pdf, xlsx)", format)
			}

			if out == "" {
				out = export.Filename(event.Name, format)
			}
			if out == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Printf("Exported to %s\n", filepath.Clean(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "export format (csv|txt|md|json|pdf|xlsx)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, or - for stdout")
	return cmd
}
