package sync

import (
	"os"

	"github.com/rs/zerolog"
)

// Notifier is the surface the presentation layer exposes to the sync
// overlay: a scoped loading indicator, a toast, and a confirmation dialog.
// Every remote-touching operation shows the indicator before the call and
// hides it on all exit paths.
type Notifier interface {
	ShowLoading(message string)
	HideLoading()
	Toast(message string)
	Confirm(message string) bool
}

// NopNotifier discards all signals and confirms everything.
type NopNotifier struct{}

func (NopNotifier) ShowLoading(string) {}
func (NopNotifier) HideLoading()       {}
func (NopNotifier) Toast(string)       {}
func (NopNotifier) Confirm(string) bool {
	return true
}

// LogNotifier reports signals through a logger, for headless use.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{
		log: zerolog.New(os.Stdout).With().Str("component", "ui").Logger(),
	}
}

func (n *LogNotifier) ShowLoading(message string) {
	n.log.Info().Msg(message)
}

func (n *LogNotifier) HideLoading() {}

func (n *LogNotifier) Toast(message string) {
	n.log.Info().Msg(message)
}

func (n *LogNotifier) Confirm(message string) bool {
	n.log.Info().Str("confirm", message).Msg("auto-confirming")
	return true
}
