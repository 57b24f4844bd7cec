package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/searchcore/logging"
	"github.com/grovetools/searchcore/state"
)

// NewStateCmd groups the state file commands.
func NewStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset the saved search state",
	}
	cmd.AddCommand(newStateShowCmd(), newStateResetCmd())
	return cmd
}

func newStateShowCmd() *cobra.Command {
	var (
		only  []string
		paths bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved search state",
		Long: `Prints the state file. --only keeps the entries whose slash-separated
path matches a pattern. A leading "!" excludes.

Examples:
  # Everything under menu
  searchcore state show --only 'menu'

  # Every query, including index scoped ones
  searchcore state show --only '**/query'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := state.Load(cfg.StatePath())
			if err != nil {
				return err
			}
			st, err = state.Filter(st, only)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case paths:
				for _, p := range state.Paths(st) {
					fmt.Fprintln(out, p)
				}
				return nil
			case jsonOutput(cmd):
				return writeJSON(out, st)
			}
			data, err := yaml.Marshal(map[string]interface{}(st))
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&only, "only", nil, "Keep entries matching these path patterns")
	cmd.Flags().BoolVar(&paths, "paths", false, "List leaf paths only")
	return cmd
}

func newStateResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Empty the saved search state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := state.Save(cfg.StatePath(), state.New()); err != nil {
				return err
			}
			if !jsonOutput(cmd) {
				logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout()).Success("State reset: " + cfg.StatePath())
			}
			return nil
		},
	}
}
