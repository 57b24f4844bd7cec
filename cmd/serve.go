package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/searchcore/internal/pidfile"
	"github.com/grovetools/searchcore/internal/server"
	"github.com/grovetools/searchcore/internal/watcher"
	"github.com/grovetools/searchcore/logging"
	"github.com/grovetools/searchcore/pkg/store"
	"github.com/grovetools/searchcore/state"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd runs the HTTP server.
func NewServeCmd() *cobra.Command {
	var (
		addr    string
		live    bool
		noWatch bool
		noSave  bool
		pidPath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search over HTTP",
		Long: `Starts the HTTP server with the widgets of the configuration mounted.
The configuration is reloaded when it changes on disk and the search state
is saved to the state file as it changes.

Examples:
  # Listen on the configured address
  searchcore serve

  # Listen on all interfaces
  searchcore serve --addr 0.0.0.0:7700`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, live)
			if err != nil {
				return err
			}
			defer s.close()

			if pidPath != "" {
				if err := pidfile.Acquire(pidPath); err != nil {
					return err
				}
				defer pidfile.Release(pidPath)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !noWatch {
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
			}

			if !noSave {
				go s.persist(ctx)
			}

			if addr == "" {
				addr = s.cfg.Settings.Server.Addr
			}
			srv := server.New(logging.NewLogger("server"), s.app, s.cfg.Settings.Server)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe(addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: settings.server.addr)")
	cmd.Flags().BoolVar(&live, "live", false, "Answer requests before searches complete and push results over the streams")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload the configuration on change")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not write the state file")
	cmd.Flags().StringVar(&pidPath, "pid-file", "", "Write the server PID to this file and refuse to start if it names a live server")
	return cmd
}

// persist saves the search state whenever it changes until ctx is done.
func (s *session) persist(ctx context.Context) {
	st := s.app.Store()
	ch := st.Watch(16)
	defer st.Unwatch(ch)

	saved := s.app.Snapshot().Widgets
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-ch:
			if !ok {
				return
			}
			if u.Type != store.UpdateState || state.Equal(saved, u.Snapshot.Widgets) {
				continue
			}
			if err := state.Save(s.cfg.StatePath(), u.Snapshot.Widgets); err != nil {
				s.logger.WithError(err).Warn("Failed to save state")
				continue
			}
			saved = u.Snapshot.Widgets
		}
	}
}
