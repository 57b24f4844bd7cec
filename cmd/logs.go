package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/grovetools/searchcore/errors"
	"github.com/grovetools/searchcore/logging"
)

var (
	logErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"})
	logWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"})
	logInfoStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#4ade80"})
)

// NewLogsCmd prints the log file configured under logging.file.
func NewLogsCmd() *cobra.Command {
	var (
		follow bool
		last   int
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the searchcore log file",
		Long: `Prints the log file configured in the logging section of searchcore.yml:

  logging:
    file:
      enabled: true
      path: .searchcore/searchcore.log

JSON lines are rendered as time, level, message, component and fields.

Examples:
  searchcore logs --tail 50
  searchcore logs -f`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			var logCfg logging.Config
			if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
				return err
			}
			path := logging.FilePath(logCfg)
			if path == "" {
				return errors.ConfigInvalid("file logging is not enabled (set logging.file.enabled and logging.file.path)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			raw := jsonOutput(cmd)
			return logging.FollowFile(ctx, path, last, follow, func(line string) {
				if strings.TrimSpace(line) == "" {
					return
				}
				if raw {
					printLogJSON(out, line)
					return
				}
				printLogText(out, line)
			})
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVar(&last, "tail", 0, "Number of lines to show from the end of the log (default: all)")
	return cmd
}

// printLogJSON writes one JSON object per line, wrapping non-JSON lines.
func printLogJSON(w io.Writer, line string) {
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		entry = map[string]interface{}{"raw_line": line}
	}
	data, _ := json.Marshal(entry)
	fmt.Fprintln(w, string(data))
}

// printLogText renders a JSON log line for reading. Other lines are printed
// as they are.
func printLogText(w io.Writer, line string) {
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		fmt.Fprintln(w, line)
		return
	}

	ts, _ := entry["time"].(string)
	level, _ := entry["level"].(string)
	msg, _ := entry["msg"].(string)
	component, _ := entry["component"].(string)

	stamp := ts
	if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		stamp = parsed.Format("15:04:05")
	}

	var style lipgloss.Style
	switch strings.ToLower(level) {
	case "error", "fatal", "panic":
		style = logErrorStyle
	case "warning", "warn":
		style = logWarnStyle
	case "info":
		style = logInfoStyle
	default:
		style = countStyle
	}

	keys := make([]string, 0, len(entry))
	for k := range entry {
		switch k {
		case "time", "level", "msg", "component":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", countStyle.Render(k), entry[k]))
	}

	parts := []string{stamp, style.Render(strings.ToUpper(level)), msg}
	if component != "" {
		parts = append(parts, countStyle.Render("["+component+"]"))
	}
	if len(fields) > 0 {
		parts = append(parts, strings.Join(fields, " "))
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}
