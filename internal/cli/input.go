package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
)

// stdinIsPiped reports whether stdin carries piped data rather than a
// terminal.
func stdinIsPiped() bool {
	fd := os.Stdin.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

// readInput gathers the optional text a new note is synthesized from:
// piped stdin wins, then the system clipboard unless disabled. A missing
// or unreadable clipboard is not an error, just an empty input.
func readInput(useClipboard bool) (string, error) {
	if stdinIsPiped() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	if useClipboard {
		if text, err := clipboard.ReadAll(); err == nil {
			return text, nil
		}
	}
	return "", nil
}
