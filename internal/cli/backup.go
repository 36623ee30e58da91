package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// NewBackupCommand groups backup and restore.
func NewBackupCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create and restore full data backups",
	}

	cmd.AddCommand(newBackupCreateCommand(opts))
	cmd.AddCommand(newBackupRestoreCommand(opts))
	cmd.AddCommand(newBackupInfoCommand(opts))
	return cmd
}

func newBackupCreateCommand(opts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a backup file with all events",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			data, err := app.Store.MarshalBackup()
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("backup_guestlist_%s.json", time.Now().Format("2006-01-02"))
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("failed to write backup: %w", err)
			}
			fmt.Printf("Backup written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "backup file path")
	return cmd
}

func newBackupRestoreCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace all events with a backup's contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			contents, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read backup: %w", err)
			}
			if err := app.Store.RestoreBackup(contents); err != nil {
				return err
			}
			fmt.Printf("Restored %d events.\n", app.State.EventCount())
			return nil
		},
	}
}

func newBackupInfoCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show storage usage and last save time",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			info := app.Store.GetInfo()
			fmt.Printf("Storage: %.1fKB / %dKB (%.1f%%)\n", info.SizeKB, info.MaxSizeKB, info.PercentUsed)
			fmt.Printf("Events: %d, guests: %d\n", info.TotalEvents, info.TotalGuests)
			if !info.LastSave.IsZero() {
				fmt.Printf("Last save: %s\n", info.LastSave.Format(time.RFC1123))
			}
			return nil
		},
	}
}
