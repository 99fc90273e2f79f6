// Package atomicfile provides the crash-safe file creation primitive for
// the synchronization engine: an exclusive create the copy-counter search
// relies on to stay collision-free.
package atomicfile

import (
	"fmt"
	"os"
)

// WriteFileNew creates path with data, failing with os.ErrExist when the
// file is already present. The O_EXCL create is the single non-interruptible
// step that keeps two concurrent syncs from claiming the same filename.
func WriteFileNew(path string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write new file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close new file: %w", err)
	}
	return nil
}
