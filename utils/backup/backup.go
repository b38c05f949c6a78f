// Package backup provides a scoped on-disk copy of a file that a destructive
// operation can restore if any of its steps fail. Each operation owns its own
// Handle; there is no shared backup location.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ugparu/mediatime/utils/logger"
)

const suffix = ".mediatime-backup"

// Handle owns one backup copy of one file. Exactly one of Restore or Release
// should be called once the guarded operation finishes.
type Handle struct {
	path       string
	backupPath string
}

// Acquire copies the file at path to a side path next to it and returns the
// handle owning that copy.
func Acquire(path string) (*Handle, error) {
	h := &Handle{path: path, backupPath: path + suffix}
	if err := copyFile(path, h.backupPath); err != nil {
		return nil, fmt.Errorf("backup: acquire %s: %w", path, err)
	}
	logger.Debugf(h, "backup created at %s", h.backupPath)
	return h, nil
}

func (h *Handle) String() string {
	return filepath.Base(h.path)
}

// BackupPath returns the side path holding the original bytes.
func (h *Handle) BackupPath() string {
	return h.backupPath
}

// Restore copies the original bytes back over the target file and removes the
// backup copy, leaving the target byte-identical to its state at Acquire.
func (h *Handle) Restore() error {
	if err := copyFile(h.backupPath, h.path); err != nil {
		return fmt.Errorf("backup: restore %s: %w", h.path, err)
	}
	if err := os.Remove(h.backupPath); err != nil {
		return fmt.Errorf("backup: remove %s: %w", h.backupPath, err)
	}
	logger.Debugf(h, "restored from backup")
	return nil
}

// Release discards the backup copy after a successful operation.
func (h *Handle) Release() error {
	if err := os.Remove(h.backupPath); err != nil {
		return fmt.Errorf("backup: remove %s: %w", h.backupPath, err)
	}
	logger.Debugf(h, "backup released")
	return nil
}

func copyFile(src, dst string) error {
	st, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, st.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
