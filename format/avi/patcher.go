package avi

import (
	"fmt"
	"os"

	"github.com/ugparu/mediatime/utils/logger"
)

// PendingPatch is a located date field paired with its replacement bytes.
// Data must be exactly Field.Width bytes; the invariant is checked before the
// file is opened for writing.
type PendingPatch struct {
	Field DateField
	Data  []byte
}

// PatchWidthError reports a replacement value whose byte length differs from
// the target field width. Patching never changes chunk length fields, so a
// mismatched patch is rejected before any I/O.
type PatchWidthError struct {
	Kind  FieldKind
	Width int
	Got   int
}

func (e *PatchWidthError) Error() string {
	return fmt.Sprintf("avi: %s patch is %d bytes, field width is %d", e.Kind, e.Got, e.Width)
}

// Patch rewrites the given date fields of the file at path in place. All
// patches are validated first; if any is invalid the operation aborts with
// zero bytes written. On the happy path exactly Field.Width bytes are written
// at each field offset and no other byte of the file is touched.
func Patch(path string, patches []PendingPatch) error {
	for _, p := range patches {
		if len(p.Data) != p.Field.Width {
			return &PatchWidthError{Kind: p.Field.Kind, Width: p.Field.Width, Got: len(p.Data)}
		}
	}
	if len(patches) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("avi: open %s for writing: %w", path, err)
	}
	for _, p := range patches {
		if _, err = f.WriteAt(p.Data, p.Field.Offset); err != nil {
			f.Close()
			return fmt.Errorf("avi: write %s field at %d in %s: %w", p.Field.Kind, p.Field.Offset, path, err)
		}
		logger.Debugf(path, "wrote %s field at %d (%d bytes)", p.Field.Kind, p.Field.Offset, p.Field.Width)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("avi: close %s: %w", path, err)
	}
	return nil
}
