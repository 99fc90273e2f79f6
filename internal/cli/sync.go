package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plumenote/plume/internal/syncer"
	"github.com/plumenote/plume/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync <path>...",
	Short: "Synchronize note filenames with their front matter",
	Long: `Reconciles each note's on-disk filename with the metadata in its
front matter. A note whose name already matches is left untouched; a
mismatch triggers a rename, disambiguated with a copy counter when the
target name is taken.

Files with a foreign text extension (txt, rst, ...) are renamed from a
header synthesized out of the filename's sort tag and the file date.

Examples:
  plume sync note.md               # Rename note.md if its title changed
  plume sync ~/notes/*.md          # Synchronize a whole directory`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := syncer.New(getConfig())
		if err != nil {
			return err
		}

		failures := 0
		for _, path := range args {
			result, err := s.Sync(path, "")
			if err != nil {
				failures++
				fmt.Println(ui.Errorf("%s: %v", path, err))
				continue
			}

			switch result.State {
			case syncer.StateRenamed:
				fmt.Println(ui.Successf("renamed %s -> %s", path, ui.FilePath(result.Path)))
			default:
				fmt.Println(ui.Successf("synced %s", ui.FilePath(result.Path)))
			}
		}

		if failures > 0 {
			return fmt.Errorf("%d of %d paths failed", failures, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
