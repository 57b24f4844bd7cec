package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSchemaCommand creates a command printing a generated JSON document,
// such as the configuration schema.
func NewSchemaCommand(short string, generate func() ([]byte, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: short,
		Long: short + `

The output is a JSON Schema (draft 2020-12) that editors can use to validate
and complete searchcore.yml files.

Examples:
  # Write the schema next to the config
  searchcore schema > searchcore.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := generate()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
