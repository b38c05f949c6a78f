// Package avi edits the creation-date fields embedded in AVI RIFF containers
// in place, preserving every byte outside the patched date payloads. It never
// re-muxes: chunk layout and chunk length fields are left untouched, which
// keeps the container acceptable to consumers that depend on the exact
// position of the date chunks, such as the Windows Explorer "Media created"
// column.
package avi

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ugparu/mediatime/format/avi/riff"
	"github.com/ugparu/mediatime/timedelta"
	"github.com/ugparu/mediatime/utils/backup"
	"github.com/ugparu/mediatime/utils/logger"
)

// FieldKind names one of the known date-bearing chunks of the AVI profile.
type FieldKind uint8

const (
	// Creation is the IDIT digitization-time chunk placed directly inside
	// the LIST hdrl header list by camera firmware.
	Creation FieldKind = iota + 1
	// StreamCreated is the ICRD creation-date chunk nested inside a LIST
	// strl stream header list. This is the field the Windows file manager
	// reads for its "Media created" display.
	StreamCreated
)

func (k FieldKind) String() string {
	switch k {
	case Creation:
		return "creation"
	case StreamCreated:
		return "stream-created"
	default:
		return fmt.Sprintf("FieldKind(%d)", uint8(k))
	}
}

// Tag returns the chunk identifier carrying this field.
func (k FieldKind) Tag() riff.Tag {
	switch k {
	case Creation:
		return riff.IDIT
	case StreamCreated:
		return riff.ICRD
	default:
		return 0
	}
}

// DateField is one located date payload: its byte range in the file, its raw
// bytes and, when the text is readable, the decoded timestamp together with
// the encoding convention needed to write it back at the same width.
type DateField struct {
	Kind   FieldKind
	Offset int64 // absolute offset of the text payload
	Width  int   // fixed payload width in bytes
	Raw    []byte
	Time   time.Time
	Parsed bool // false when the payload text is unreadable
	enc    encoding
}

// Inspect locates and decodes every known date field of the AVI file at path
// without modifying it.
func Inspect(path string) ([]DateField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("avi: open %s: %w", path, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("avi: stat %s: %w", path, err)
	}
	return Locate(f, st.Size())
}

// AdjustDates shifts every readable date field of the AVI file at path by
// delta and rewrites the fields in place. The whole patch set is validated
// before any byte is written; a backup of the original file guards the write
// phase, so on any failure the file is restored byte-identical to its
// pre-call state. Files without readable date fields are a no-op success.
// Returns the number of fields patched.
func AdjustDates(path string, delta timedelta.Delta) (patched int, err error) {
	bak, err := backup.Acquire(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := bak.Restore(); rerr != nil {
				logger.Errorf(bak, "restore failed: %v", rerr)
				err = errors.Join(err, rerr)
			}
			return
		}
		err = bak.Release()
	}()

	fields, err := Inspect(path)
	if err != nil {
		return 0, err
	}
	patches := make([]PendingPatch, 0, len(fields))
	for _, fld := range fields {
		if !fld.Parsed {
			logger.Debugf(path, "%s field at %d is unreadable, leaving as is", fld.Kind, fld.Offset)
			continue
		}
		var data []byte
		if data, err = encodeDate(delta.Shift(fld.Time), fld.enc, fld.Width); err != nil {
			var tooLong *FormatTooLongError
			if errors.As(err, &tooLong) {
				tooLong.Kind = fld.Kind
				tooLong.Offset = fld.Offset
			}
			return 0, err
		}
		patches = append(patches, PendingPatch{Field: fld, Data: data})
	}
	if len(patches) == 0 {
		logger.Infof(path, "no readable date fields, nothing to patch")
		return 0, nil
	}
	if err = Patch(path, patches); err != nil {
		return 0, err
	}
	logger.Infof(path, "patched %d date field(s)", len(patches))
	return len(patches), nil
}

// Report writes a human-readable listing of every located date field of the
// AVI file at path to w: kind, chunk tag, offset, width, raw bytes and the
// decoded value or "unparseable". Read-only.
func Report(w io.Writer, path string) error {
	fields, err := Inspect(path)
	if err != nil {
		return err
	}
	if _, err = fmt.Fprintf(w, "%s\n", path); err != nil {
		return err
	}
	if len(fields) == 0 {
		_, err = fmt.Fprintln(w, "  no date fields found")
		return err
	}
	for _, fld := range fields {
		decoded := "unparseable"
		if fld.Parsed {
			decoded = fld.Time.Format("2006-01-02 15:04:05")
		}
		_, err = fmt.Fprintf(w, "  %-15s tag=%s offset=%d width=%d raw=%q value=%s\n",
			fld.Kind, fld.Kind.Tag(), fld.Offset, fld.Width, fld.Raw, decoded)
		if err != nil {
			return err
		}
	}
	return nil
}
