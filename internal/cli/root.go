// Package cli wires the guest-list core into a cobra command tree.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"guestlist/internal/api"
	"guestlist/internal/auth"
	"guestlist/internal/config"
	"guestlist/internal/state"
	"guestlist/internal/storage"
	"guestlist/internal/sync"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DataDir string
	Verbose bool
}

// App bundles the constructed core components. Nothing here is a global:
// every command receives the app through its constructor.
type App struct {
	Config  *config.Config
	State   *state.State
	Store   *storage.Store
	Client  *api.Client
	Session *auth.Session
	Overlay *sync.Overlay
}

// newApp constructs and wires the core for one command invocation.
func newApp(opts *RootOptions) (*App, error) {
	cfg := config.LoadConfig()
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	st := state.New()
	store, err := storage.NewStore(cfg.DataDir, st)
	if err != nil {
		return nil, err
	}
	store.Load()

	settings := store.LoadSettings()
	url := cfg.APIURL
	if settings.APIURL != "" {
		url = settings.APIURL
	}
	timeout := cfg.APITimeout
	if settings.TimeoutSec > 0 {
		timeout = time.Duration(settings.TimeoutSec) * time.Second
	}

	client := api.NewClient(url, timeout)
	session := auth.NewSession(client, store)
	overlay := sync.NewOverlay(st, store, client, sync.NewLogNotifier(), session.SpreadsheetID)

	return &App{
		Config:  cfg,
		State:   st,
		Store:   store,
		Client:  client,
		Session: session,
		Overlay: overlay,
	}, nil
}

// NewRootCommand creates the root command for the guestlist CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "guestlist",
		Short: "Guest-list and RSVP manager",
		Long:  "Manage events and guest lists locally, with optional mirroring to a spreadsheet backend.",
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (default from GUESTLIST_DATA_DIR)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewGuestsCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))

	return cmd
}
