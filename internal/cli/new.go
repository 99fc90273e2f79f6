package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plumenote/plume/internal/syncer"
	"github.com/plumenote/plume/internal/ui"
)

var newNoClipboard bool

var newCmd = &cobra.Command{
	Use:   "new [directory]",
	Short: "Create a new note from templates",
	Long: `Creates a new note in the given directory (default: the current one).

The note's front matter is filled from piped text or the clipboard when
available: an embedded header is taken over as-is, a single hyperlink
contributes its link text as the title, and otherwise the first heading
line of the text becomes the title.

Examples:
  plume new                        # Fresh note in the current directory
  plume new ~/notes                # Fresh note in ~/notes
  echo "# Standup" | plume new     # Title synthesized from piped text`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		input, err := readInput(!newNoClipboard)
		if err != nil {
			return err
		}

		s, err := syncer.New(getConfig())
		if err != nil {
			return err
		}

		result, err := s.Sync(dir, input)
		if err != nil {
			return err
		}

		fmt.Println(ui.Successf("created %s", ui.FilePath(result.Path)))
		return nil
	},
}

func init() {
	newCmd.Flags().BoolVar(&newNoClipboard, "no-clipboard", false, "Ignore the system clipboard")
	rootCmd.AddCommand(newCmd)
}
