package avi

import (
	"fmt"
	"io"

	"github.com/ugparu/mediatime/format/avi/riff"
	"github.com/ugparu/mediatime/utils/logger"
)

// Date payloads are short text fields; anything larger is not one of ours.
const maxFieldWidth = 256

// Locate walks the RIFF tree of r and returns the known date fields in file
// order: the IDIT chunk sitting directly inside LIST hdrl and the ICRD chunk
// nested anywhere under a LIST strl. Absent fields are simply not returned.
// When a kind occurs more than once the first occurrence in file order wins
// and later duplicates are ignored. The movi data list is not descended into.
func Locate(r io.ReaderAt, size int64) ([]DateField, error) {
	var fields []DateField
	seen := make(map[FieldKind]bool, 2)
	err := riff.Walk(r, size, func(c riff.Chunk) error {
		if c.IsList() {
			if c.ListType == riff.MOVI {
				return riff.SkipList
			}
			return nil
		}
		var kind FieldKind
		switch {
		case c.ID == riff.IDIT && lastList(c.Path) == riff.HDRL:
			kind = Creation
		case c.ID == riff.ICRD && underList(c.Path, riff.STRL):
			kind = StreamCreated
		default:
			return nil
		}
		if seen[kind] {
			logger.Debugf(kind, "duplicate %s chunk at %d ignored", c.ID, c.HeaderOffset)
			return nil
		}
		seen[kind] = true
		if c.Size == 0 || c.Size > maxFieldWidth {
			logger.Debugf(kind, "%s chunk at %d has implausible size %d, skipping", c.ID, c.HeaderOffset, c.Size)
			return nil
		}
		raw := make([]byte, c.Size)
		if _, err := r.ReadAt(raw, c.PayloadOffset); err != nil {
			return fmt.Errorf("avi: read %s payload at %d: %w", c.ID, c.PayloadOffset, err)
		}
		fld := DateField{
			Kind:   kind,
			Offset: c.PayloadOffset,
			Width:  int(c.Size),
			Raw:    raw,
		}
		fld.Time, fld.enc, fld.Parsed = decodeDate(raw)
		fields = append(fields, fld)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func lastList(path []riff.Tag) riff.Tag {
	if len(path) == 0 {
		return 0
	}
	return path[len(path)-1]
}

func underList(path []riff.Tag, want riff.Tag) bool {
	for _, t := range path {
		if t == want {
			return true
		}
	}
	return false
}
