package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/searchcore/internal/watcher"
	"github.com/grovetools/searchcore/logging"
	"github.com/grovetools/searchcore/pkg/store"
)

// NewWatchCmd prints the results every time they change, reloading the
// configuration when it is edited.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print results as the configuration changes",
		Long: `Mounts the configured widgets and prints the results. Editing the
configuration file or its overrides remounts the widgets with the current
search state and prints the new results. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reload, err := watcher.Reloader(s.app, s.path, logging.NewLogger("config-reload"))
			if err != nil {
				return err
			}
			w, err := watcher.New(s.path, s.cfg.Settings.ConfigDebounce(), reload)
			if err != nil {
				return err
			}
			defer w.Close()
			go w.Start(ctx)

			updates := s.app.Store().Watch(64)
			defer s.app.Store().Unwatch(updates)

			out := cmd.OutOrStdout()
			pretty := logging.NewPrettyLogger().WithWriter(out)
			var last store.Snapshot
			show := func(snap store.Snapshot) {
				if snap.Searching || !hasResults(snap) || sameResults(snap, last) {
					return
				}
				last = snap
				if err := s.print(out, snap); err != nil {
					pretty.Error("Search failed", err)
				}
			}

			show(s.app.Snapshot())
			for {
				select {
				case <-ctx.Done():
					return nil
				case u, ok := <-updates:
					if !ok {
						return nil
					}
					if u.Type == store.UpdateConfigReload {
						pretty.Success(fmt.Sprintf("%v reloaded at %s", u.Payload, time.Now().Format(time.Kitchen)))
						continue
					}
					show(u.Snapshot)
				}
			}
		},
	}
	return cmd
}
