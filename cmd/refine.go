package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/searchcore/logging"
	"github.com/grovetools/searchcore/pkg/refinements"
)

// NewRefineCmd refines one widget.
func NewRefineCmd() *cobra.Command {
	var (
		raw    bool
		noSave bool
	)
	cmd := &cobra.Command{
		Use:   "refine <widget> <value...>",
		Short: "Refine a widget",
		Long: `Refines a widget by key, id or type. A single value selects the item
with that label, so list widgets toggle it. With --raw or several values the
value is passed to the widget as is.

Examples:
  # Toggle a brand in a refinement list
  searchcore refine brand Apple

  # Go to the third page
  searchcore refine pagination 3

  # Replace the whole selection
  searchcore refine brand Apple Sony`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.close()

			name, values := args[0], args[1:]
			switch {
			case len(values) > 1:
				err = s.app.Refine(name, values)
			case raw:
				err = s.app.Refine(name, values[0])
			default:
				err = s.app.Select(name, values[0])
			}
			if err != nil {
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
	cmd.Flags().BoolVar(&raw, "raw", false, "Pass the value to the widget without item lookup")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not write the state file")
	return cmd
}

// NewRefinementsCmd lists or clears the active refinements.
func NewRefinementsCmd() *cobra.Command {
	var (
		clearAll    bool
		clearsQuery bool
	)
	cmd := &cobra.Command{
		Use:   "refinements",
		Short: "List or clear the active refinements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.close()

			if clearAll {
				s.app.ClearRefinements(clearsQuery)
				if err := s.save(); err != nil {
					return err
				}
			}

			items := s.app.Refinements(clearsQuery)
			if s.opts.JSONOutput {
				return writeJSON(cmd.OutOrStdout(), items)
			}

			pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
			if clearAll {
				pretty.Success("Refinements cleared")
			}
			if len(items) == 0 {
				pretty.Muted("No active refinements")
				return nil
			}
			printItems(pretty, items, 0)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Clear every refinement")
	cmd.Flags().BoolVar(&clearsQuery, "query", false, "Include the search query")
	return cmd
}

func printItems(pretty *logging.PrettyLogger, items []refinements.Item, depth int) {
	for _, it := range items {
		text := it.Label
		if it.Attribute != "" && depth == 0 {
			text = fmt.Sprintf("%s  (%s)", it.Label, it.Attribute)
		}
		pretty.Item(depth, text)
		printItems(pretty, it.Items, depth+1)
	}
}
