package riff

import (
	"errors"
	"fmt"
	"strings"
)

var errParse = new(ParseError)

// ParseError reports a structurally unreadable container: a bad signature, a
// declared chunk length overrunning its enclosing region, or nesting beyond
// the supported depth. Errors chain outward so the full chunk path to the
// failure is visible.
type ParseError struct {
	Debug  string
	Offset int64
	prev   *ParseError
}

func (p *ParseError) Error() string {
	s := []string{}
	for err := p; err != nil; err = err.prev {
		s = append(s, fmt.Sprintf("%s:%d", err.Debug, err.Offset))
	}
	return "riff: parse error: " + strings.Join(s, ",")
}

func parseErr(debug string, offset int64, prev error) (err error) {
	if prev != nil && !errors.As(prev, &errParse) {
		return prev
	}
	ppe, _ := prev.(*ParseError) //nolint:errorlint

	return &ParseError{Debug: debug, Offset: offset, prev: ppe}
}
