// Package cli implements the command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plumenote/plume/internal/config"
)

var (
	// Global flags
	configPath string

	// Resolved values
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "plume",
	Short: "Plume - keep note filenames in sync with their metadata",
	Long: `Plume keeps a note file's name synchronized with the metadata stored
in its front matter, and creates new notes from templates filled with
clipboard or piped text.

A note's filename is [<sort_tag>-]<title>[--<subtitle>][(<n>)].<ext>;
the front matter is a YAML header delimited by '---' lines.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}

		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}
