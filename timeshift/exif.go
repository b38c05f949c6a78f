package timeshift

import (
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// readExifTime returns the EXIF DateTimeOriginal (or DateTime fallback) of an
// image. Missing or unreadable EXIF is not an error; the file simply has no
// reference timestamp.
func readExifTime(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}
	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
