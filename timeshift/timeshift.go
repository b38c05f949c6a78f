// Package timeshift applies a calendar delta to the timestamps of a media
// tree: embedded AVI container dates are patched in place, and every file's
// filesystem times are moved by the same amount. Embedded metadata of other
// container formats is left to external tooling and reported as skipped.
package timeshift

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ugparu/mediatime/format/avi"
	"github.com/ugparu/mediatime/timedelta"
	"github.com/ugparu/mediatime/utils/logger"
)

var (
	imageExts = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".tiff": true,
		".tif": true, ".bmp": true, ".gif": true, ".webp": true,
	}
	videoExts = map[string]bool{
		".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
		".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
	}
)

// Shifter walks a source tree and shifts media timestamps by a fixed delta.
type Shifter struct {
	Source string
	Delta  timedelta.Delta
	DryRun bool
}

// Result records what happened to one file.
type Result struct {
	Path              string
	Taken             time.Time // reference timestamp read from metadata
	TakenOK           bool
	Shifted           time.Time // filesystem time after the shift
	ContainerFields   int       // embedded date fields rewritten (AVI only)
	FilesystemUpdated bool
	Err               error
}

// Summary aggregates a full run.
type Summary struct {
	Processed         int
	ContainerUpdated  int
	FilesystemUpdated int
	Failed            int
	Results           []Result
}

// New returns a Shifter over the tree rooted at source.
func New(source string, delta timedelta.Delta, dryRun bool) *Shifter {
	return &Shifter{Source: source, Delta: delta, DryRun: dryRun}
}

func (s *Shifter) String() string {
	return "timeshift:" + filepath.Base(s.Source)
}

// Run discovers every supported media file under Source and processes each
// one start-to-finish before the next. In dry-run mode all reads and
// computations happen but nothing is written.
func (s *Shifter) Run() (Summary, error) {
	files, err := s.findMediaFiles()
	if err != nil {
		return Summary{}, err
	}
	logger.Infof(s, "found %d media file(s), delta %s, dry-run=%v", len(files), s.Delta, s.DryRun)

	sum := Summary{Results: make([]Result, 0, len(files))}
	for _, path := range files {
		res := s.processFile(path)
		sum.Results = append(sum.Results, res)
		switch {
		case res.Err != nil:
			sum.Failed++
			logger.Errorf(s, "%s: %v", path, res.Err)
			continue
		default:
			sum.Processed++
		}
		if res.ContainerFields > 0 {
			sum.ContainerUpdated++
		}
		if res.FilesystemUpdated {
			sum.FilesystemUpdated++
		}
	}
	return sum, nil
}

func (s *Shifter) findMediaFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if imageExts[ext] || videoExts[ext] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("timeshift: scan %s: %w", s.Source, err)
	}
	sort.Strings(files)
	return files, nil
}

func (s *Shifter) processFile(path string) Result {
	res := Result{Path: path}
	ext := strings.ToLower(filepath.Ext(path))

	res.Taken, res.TakenOK = s.readTaken(path, ext)

	st, err := os.Stat(path)
	if err != nil {
		res.Err = fmt.Errorf("timeshift: stat %s: %w", path, err)
		return res
	}
	res.Shifted = s.Delta.Shift(st.ModTime())

	if s.DryRun {
		logger.Infof(s, "[dry-run] %s: mtime %s -> %s", path,
			st.ModTime().Format(time.DateTime), res.Shifted.Format(time.DateTime))
		return res
	}

	if ext == ".avi" {
		n, err := avi.AdjustDates(path, s.Delta)
		if err != nil {
			res.Err = err
			return res
		}
		res.ContainerFields = n
	} else if videoExts[ext] {
		logger.Debugf(s, "%s: container metadata left to external tooling", path)
	}

	if err := os.Chtimes(path, res.Shifted, res.Shifted); err != nil {
		res.Err = fmt.Errorf("timeshift: set times on %s: %w", path, err)
		return res
	}
	res.FilesystemUpdated = true
	return res
}

// readTaken extracts a reference capture timestamp for reporting: EXIF
// DateTimeOriginal for images, the first readable RIFF date field for AVI.
func (s *Shifter) readTaken(path, ext string) (time.Time, bool) {
	switch {
	case imageExts[ext]:
		return readExifTime(path)
	case ext == ".avi":
		fields, err := avi.Inspect(path)
		if err != nil {
			logger.Debugf(s, "%s: %v", path, err)
			return time.Time{}, false
		}
		for _, fld := range fields {
			if fld.Parsed {
				return fld.Time, true
			}
		}
	}
	return time.Time{}, false
}
