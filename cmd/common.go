// Package cmd holds the searchcore subcommands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/searchcore/cli"
	"github.com/grovetools/searchcore/config"
	"github.com/grovetools/searchcore/errors"
	"github.com/grovetools/searchcore/internal/app"
	"github.com/grovetools/searchcore/logging"
	"github.com/grovetools/searchcore/pkg/profiling"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/pkg/store"
	"github.com/grovetools/searchcore/schema"
	"github.com/grovetools/searchcore/state"
)

// session is a configured App plus what commands need around it.
type session struct {
	app    *app.App
	cfg    *config.Config
	path   string
	logger *logrus.Entry
	opts   cli.CommandOptions
}

// loadConfig resolves, validates and loads the configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	defer profiling.Start("load config").Stop()

	opts := cli.GetOptions(cmd)
	logger := cli.GetLogger(cmd)

	path, err := cli.InitConfig(opts.ConfigFile)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return nil, "", errors.ConfigNotFound("searchcore.yml")
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return nil, "", err
	}
	if err := validator.ValidateFile(path); err != nil {
		return nil, "", err
	}

	cfg, err := config.LoadFileWithLogger(path, logger.Logger)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// openSession loads the configuration and the persisted state and mounts
// the widgets.
func openSession(cmd *cobra.Command, live bool) (*session, error) {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	loadState := profiling.Start("load state")
	st, err := state.Load(cfg.StatePath())
	loadState.Stop()
	if err != nil {
		return nil, err
	}

	logger := cli.GetLogger(cmd)
	defer profiling.Start("mount widgets").Stop()
	a, err := app.New(app.Options{
		Config: cfg,
		State:  st,
		Live:   live,
		Logger: logging.NewLogger("app"),
	})
	if err != nil {
		return nil, err
	}
	return &session{app: a, cfg: cfg, path: path, logger: logger, opts: cli.GetOptions(cmd)}, nil
}

func (s *session) close() { s.app.Close() }

// save persists the search state and reports failures through the snapshot
// error when the search itself failed.
func (s *session) save() error {
	if err := s.app.Save(); err != nil {
		return err
	}
	s.logger.WithField("path", s.cfg.StatePath()).Debug("State saved")
	return nil
}

// report prints the current results, as JSON with --json.
func (s *session) report(w io.Writer) error {
	return s.print(w, s.app.Snapshot())
}

func (s *session) print(w io.Writer, snap store.Snapshot) error {
	defer profiling.Start("render").Stop()
	if snap.Error != nil {
		return errors.Wrap(snap.Error, errors.ErrCodeSearchFailed, "search failed")
	}
	if s.opts.JSONOutput {
		return writeJSON(w, snapshotJSON(snap))
	}
	printResults(w, snap)
	return nil
}

func snapshotJSON(snap store.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"state":          snap.Widgets,
		"results":        snap.Results,
		"resultsByIndex": snap.ResultsByIndex,
		"refinements":    snap.Metadata,
	}
}

// sameResults reports whether two snapshots hold the same result objects.
func sameResults(a, b store.Snapshot) bool {
	if a.Results != b.Results || len(a.ResultsByIndex) != len(b.ResultsByIndex) {
		return false
	}
	for id, r := range a.ResultsByIndex {
		if b.ResultsByIndex[id] != r {
			return false
		}
	}
	return true
}

func hasResults(snap store.Snapshot) bool {
	return snap.Results != nil || len(snap.ResultsByIndex) > 0
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#c2410c", Dark: "#fb923c"})
	countStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"})
	hitStyle    = lipgloss.NewStyle().PaddingLeft(2)
)

// printResults renders the results of every index.
func printResults(w io.Writer, snap store.Snapshot) {
	if snap.Results != nil {
		printIndex(w, snap.Results)
	}
	ids := make([]string, 0, len(snap.ResultsByIndex))
	for id := range snap.ResultsByIndex {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		printIndex(w, snap.ResultsByIndex[id])
	}
}

func printIndex(w io.Writer, r *search.Results) {
	width := cli.TerminalWidth()
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render(r.Index),
		countStyle.Render(fmt.Sprintf("%d hits, page %d/%d, %dms", r.NbHits, r.Page+1, max(r.NbPages, 1), r.ProcessingTimeMS)))
	for _, hit := range r.Hits {
		fmt.Fprintln(w, hitStyle.Width(width).Render(describeHit(hit)))
	}

	attrs := make([]string, 0, len(r.Facets))
	for attr := range r.Facets {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	for _, attr := range attrs {
		values := r.FacetValues(attr, search.ByCountDesc, search.ByNameAsc)
		parts := make([]string, 0, len(values))
		for _, v := range values {
			parts = append(parts, fmt.Sprintf("%s (%d)", v.Name, v.Count))
		}
		fmt.Fprintf(w, "  %s %s\n", countStyle.Render(attr+":"), strings.Join(parts, ", "))
	}
	fmt.Fprintln(w)
}

// describeHit renders a hit as its title-like field followed by the rest.
func describeHit(hit search.Hit) string {
	keys := make([]string, 0, len(hit))
	for k := range hit {
		if k != "objectID" && !strings.HasPrefix(k, "_") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	title := fmt.Sprint(hit["objectID"])
	for _, k := range []string{"name", "title"} {
		if v, ok := hit[k]; ok {
			title = fmt.Sprint(v)
			break
		}
	}
	var rest []string
	for _, k := range keys {
		if k == "name" || k == "title" {
			continue
		}
		rest = append(rest, fmt.Sprintf("%s=%v", k, hit[k]))
	}
	if len(rest) == 0 {
		return title
	}
	return title + "  " + countStyle.Render(strings.Join(rest, " "))
}

func jsonOutput(cmd *cobra.Command) bool {
	return cli.GetOptions(cmd).JSONOutput
}
