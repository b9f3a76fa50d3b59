package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writes go through a sibling temp file and a rename, so the watcher and
// concurrent readers only ever see complete note files. The prefix lets the
// watcher filter out in-flight writes.
const tempFilePrefix = "strata-tmp-"

// Mirrored notes are plain workspace documents; a fixed mode keeps exports
// identical regardless of the process umask.
const noteFileMode os.FileMode = 0o644

// writeNoteFile replaces filename with data in a single rename.
func writeNoteFile(filename string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err == nil {
		// The rename is only atomic if the data already hit the disk.
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Chmod(tmp.Name(), noteFileMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("replace %s: %w", filename, err)
	}
	return nil
}
