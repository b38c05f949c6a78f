package avi

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Textual layouts observed in camera-written AVI date chunks. Canon firmware
// writes the ctime-style form in upper case ("MON AUG 28 14:14:28 2006");
// other muxers write ISO dates or date-times.
const (
	canonLayout       = "Mon Jan 02 15:04:05 2006"
	canonParseLayout  = "Mon Jan 2 15:04:05 2006"
	isoDateTimeLayout = "2006-01-02 15:04:05"
	isoDateTimeTSep   = "2006-01-02T15:04:05"
	isoDateLayout     = "2006-01-02"
)

// encoding captures everything needed to write a decoded value back into its
// field byte-for-byte compatibly: text layout, padding byte and letter case.
type encoding struct {
	layout string
	pad    byte
	upper  bool
}

// FormatTooLongError reports a shifted date whose encoded text does not fit
// the original field width. It is raised before any byte of the file is
// written.
type FormatTooLongError struct {
	Kind   FieldKind
	Offset int64
	Width  int
	Value  string
}

func (e *FormatTooLongError) Error() string {
	return fmt.Sprintf("avi: %s value %q does not fit field of width %d at offset %d",
		e.Kind, e.Value, e.Width, e.Offset)
}

// decodeDate parses a fixed-width date payload. Unreadable text is not an
// error: ok is false and the raw bytes stay reportable.
func decodeDate(raw []byte) (t time.Time, enc encoding, ok bool) {
	enc.pad = 0
	trimmed := bytes.TrimRight(raw, "\x00")
	if len(trimmed) == len(raw) {
		if sp := bytes.TrimRight(raw, " "); len(sp) < len(raw) {
			enc.pad = ' '
			trimmed = sp
		}
	}
	s := strings.TrimSpace(string(trimmed))
	if s == "" {
		return time.Time{}, enc, false
	}
	if t, upper, ok := parseCanon(s); ok {
		enc.layout = canonLayout
		enc.upper = upper
		return t, enc, true
	}
	for _, layout := range []string{isoDateTimeLayout, isoDateTimeTSep, isoDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			enc.layout = layout
			return t, enc, true
		}
	}
	return time.Time{}, enc, false
}

// encodeDate formats t with the field's recorded convention and re-pads to
// exactly width bytes, so no stale trailing bytes survive a shorter value.
func encodeDate(t time.Time, enc encoding, width int) ([]byte, error) {
	s := t.Format(enc.layout)
	if enc.upper {
		s = strings.ToUpper(s)
	}
	if len(s) > width {
		return nil, &FormatTooLongError{Width: width, Value: s}
	}
	b := make([]byte, width)
	for i := range b {
		b[i] = enc.pad
	}
	copy(b, s)
	return b, nil
}

func parseCanon(s string) (t time.Time, upper, ok bool) {
	fields := strings.Fields(s)
	if len(fields) != 5 {
		return time.Time{}, false, false
	}
	upper = s == strings.ToUpper(s)
	// ctime-style month and weekday names are stored upper-case by Canon;
	// normalize for time.Parse, which wants title case.
	for i := 0; i < 2; i++ {
		fields[i] = strings.ToUpper(fields[i][:1]) + strings.ToLower(fields[i][1:])
	}
	t, err := time.Parse(canonParseLayout, strings.Join(fields, " "))
	if err != nil {
		return time.Time{}, false, false
	}
	return t, upper, true
}
