package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grovetools/searchcore/cli"
	"github.com/grovetools/searchcore/pkg/profiling"
	"github.com/grovetools/searchcore/schema"
	"github.com/grovetools/searchcore/version"
)

// NewRootCmd assembles the searchcore command tree.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand(
		"searchcore",
		"Declarative search widgets over a shared search state",
	)
	cli.SetVersionTemplate(root, version.GetInfo())
	profiling.NewCobraProfiler().Attach(root)

	root.AddCommand(
		NewQueryCmd(),
		NewSearchCmd(),
		NewRefineCmd(),
		NewRefinementsCmd(),
		NewStateCmd(),
		NewConfigCmd(),
		NewServeCmd(),
		NewWatchCmd(),
		NewLogsCmd(),
		cli.NewSchemaCommand("Print the JSON Schema of searchcore.yml", schema.Generate),
		cli.NewVersionCommand("searchcore"),
	)
	cli.ApplyStyledHelpRecursive(root)
	return root
}
