package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/searchcore/config"
)

// NewConfigCmd prints how the configuration is assembled.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Display the layered configuration",
		Long: `Shows how the final configuration is built by merging layers:
1. Project config (searchcore.yml)
2. Override files (searchcore.override.yml)
The merged result is validated and printed last.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				// yaml tags name the keys, so go through a generic document.
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				var doc map[string]interface{}
				if err := yaml.Unmarshal(data, &doc); err != nil {
					return err
				}
				return writeJSON(out, doc)
			}

			printLayer := func(title, source string) {
				doc, err := config.ReadDocument(source)
				if err != nil {
					fmt.Fprintf(out, "--- # %s\n# %v\n", title, err)
					return
				}
				fmt.Fprintf(out, "--- # %s\n# Source: %s\n", title, source)
				data, _ := yaml.Marshal(doc)
				fmt.Fprintln(out, string(data))
			}

			printLayer("PROJECT CONFIG", path)
			for _, name := range config.OverrideNames {
				override := filepath.Join(filepath.Dir(path), name)
				if _, err := os.Stat(override); err == nil {
					printLayer("OVERRIDE CONFIG", override)
				}
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "--- # FINAL MERGED CONFIG\n%s", string(data))
			return nil
		},
	}
	return cmd
}
