package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewQueryCmd sets the full text query and prints the results.
func NewQueryCmd() *cobra.Command {
	var noSave bool
	cmd := &cobra.Command{
		Use:   "query [text...]",
		Short: "Set the search query and print the results",
		Long: `Sets the full text query through the search box and prints the hits
of every index. The resulting state is saved to the state file so later
commands continue from it.

Examples:
  # Search for espresso
  searchcore query espresso

  # Clear the query
  searchcore query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.app.Query(strings.Join(args, " ")); err != nil {
				return err
			}
			if !noSave {
				if err := s.save(); err != nil {
					return err
				}
			}
			return s.report(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not write the state file")
	return cmd
}

// NewSearchCmd runs the persisted state without changing it.
func NewSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Print the results of the saved search state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.close()
			return s.report(cmd.OutOrStdout())
		},
	}
}
