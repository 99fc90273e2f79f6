package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/plumenote/plume/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show plume version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		version := buildinfo.Version
		commit := buildinfo.Commit

		if info, ok := debug.ReadBuildInfo(); ok {
			if version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
				version = info.Main.Version
			}
			if commit == "" {
				for _, setting := range info.Settings {
					if setting.Key == "vcs.revision" {
						commit = setting.Value
					}
				}
			}
		}
		if version == "" {
			version = "devel"
		}

		fmt.Printf("plume %s\n", version)
		if commit != "" {
			fmt.Printf("commit: %s\n", commit)
		}
		fmt.Printf("go: %s\n", runtime.Version())
		fmt.Printf("platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
