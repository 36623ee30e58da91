package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"guestlist/internal/qrsync"
)

// NewSyncCommand groups cloud and device-to-device sync operations.
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Cloud login, data sync and QR handoff",
	}

	cmd.AddCommand(newSyncLoginCommand(opts))
	cmd.AddCommand(newSyncLogoutCommand(opts))
	cmd.AddCommand(newSyncPullCommand(opts))
	cmd.AddCommand(newSyncRefreshCommand(opts))
	cmd.AddCommand(newSyncPingCommand(opts))
	cmd.AddCommand(newSyncURLCommand(opts))
	cmd.AddCommand(newSyncQRCommand(opts))
	return cmd
}

func newSyncLoginCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Resolve or create the spreadsheet for an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			if err := app.Session.Login(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (spreadsheet %s)\n", app.Session.Email(), app.Session.SpreadsheetID())
			return nil
		},
	}
}

func newSyncLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}
			app.Session.Logout()
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newSyncPullCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Replace local data with the cloud copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			if err := app.Session.AutoLogin(cmd.Context()); err != nil {
				return fmt.Errorf("login first: %w", err)
			}
			if err := app.Overlay.LoadFromCloud(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Pulled %d events from the cloud.\n", app.State.EventCount())
			return nil
		},
	}
}

func newSyncRefreshCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-pull the cloud copy, ignoring transient failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			if err := app.Session.AutoLogin(cmd.Context()); err != nil {
				return fmt.Errorf("login first: %w", err)
			}
			app.Overlay.Refresh(cmd.Context())
			fmt.Printf("Refreshed. %d events local.\n", app.State.EventCount())
			return nil
		},
	}
}

func newSyncPingCommand(opts *RootOptions) *cobra.Command {
	var url string
	var timeoutSec int
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check the backend connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			if url != "" {
				app.Client.SetURL(url)
				settings := app.Store.LoadSettings()
				settings.APIURL = url
				if err := app.Store.SaveSettings(settings); err != nil {
					return err
				}
			}
			if timeoutSec > 0 {
				app.Client.SetTimeout(time.Duration(timeoutSec) * time.Second)
				settings := app.Store.LoadSettings()
				settings.TimeoutSec = timeoutSec
				if err := app.Store.SaveSettings(settings); err != nil {
					return err
				}
			}

			if app.Client.TestConnection(cmd.Context()) {
				fmt.Println("Backend reachable.")
				return nil
			}
			return fmt.Errorf("backend unreachable at %s", app.Client.URL())
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "set and persist the backend endpoint")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "set and persist the request timeout in seconds")
	return cmd
}

func newSyncURLCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <sync-url>",
		Short: "Import state from a QR sync URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			snapshot, err := qrsync.ParseSyncURL(args[0])
			if err != nil {
				return err
			}
			if !app.State.ImportState(snapshot) {
				return fmt.Errorf("snapshot rejected")
			}
			if err := app.Store.Save(); err != nil {
				return err
			}
			fmt.Printf("Imported %d events.\n", app.State.EventCount())
			return nil
		},
	}
}

func newSyncQRCommand(opts *RootOptions) *cobra.Command {
	var pngOut string
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Show a QR code carrying all local data",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			snapshot := app.State.ExportState()
			if pngOut != "" {
				png, err := qrsync.QRPNG(app.Config.BaseURL, snapshot, 512)
				if err != nil {
					return err
				}
				if err := os.WriteFile(pngOut, png, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", pngOut, err)
				}
				fmt.Printf("QR code written to %s\n", pngOut)
				return nil
			}

			block, err := qrsync.QRTerminal(app.Config.BaseURL, snapshot)
			if err != nil {
				return err
			}
			fmt.Println(block)
			fmt.Println("Scan with the other device. The code contains ALL your data; do not share it.")
			return nil
		},
	}
	cmd.Flags().StringVar(&pngOut, "png", "", "write the QR code as a PNG file instead of terminal output")
	return cmd
}
