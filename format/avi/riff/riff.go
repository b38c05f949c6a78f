// Package riff walks the chunk tree of RIFF containers. It reads only chunk
// headers and never buffers payload data, so walking cost is proportional to
// the number of chunks, not to file size.
package riff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// HeaderSize is the size of a chunk header: 4-byte identifier plus
	// 4-byte little-endian payload length.
	HeaderSize = 8

	// ListHeaderSize additionally covers the 4-byte list type that follows
	// the header of RIFF and LIST chunks.
	ListHeaderSize = 12

	maxDepth = 16
)

// SkipList may be returned by a walk callback for a list chunk to prevent
// descending into its children. The walk continues with the next sibling.
var SkipList = errors.New("riff: skip list") //nolint:errname

// Tag is a four-character chunk identifier packed big-endian, so that
// StringToTag("RIFF") compares equal to the bytes 'R','I','F','F'.
type Tag uint32

func (t Tag) String() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(t))
	for i := range b {
		if b[i] == 0 {
			b[i] = ' '
		}
	}
	return string(b[:])
}

// StringToTag packs up to four characters into a Tag.
func StringToTag(tag string) Tag {
	var b [4]byte
	copy(b[:], tag)
	return Tag(binary.BigEndian.Uint32(b[:]))
}

// Chunk identifiers relevant to the AVI profile.
var (
	RIFF = StringToTag("RIFF")
	LIST = StringToTag("LIST")
	AVI  = StringToTag("AVI ")
	HDRL = StringToTag("hdrl")
	STRL = StringToTag("strl")
	MOVI = StringToTag("movi")
	INFO = StringToTag("INFO")
	JUNK = StringToTag("JUNK")
	IDIT = StringToTag("IDIT")
	ICRD = StringToTag("ICRD")
)

// Chunk describes one node of the RIFF tree. Chunks are addressed by offset
// and by walk-order index; the tree shape is carried by Parent and Path
// rather than by child pointers.
type Chunk struct {
	ID            Tag
	ListType      Tag    // inner type of RIFF/LIST chunks, zero otherwise
	Size          uint32 // declared payload length from the header
	HeaderOffset  int64
	PayloadOffset int64
	Parent        int   // walk-order index of the enclosing chunk, -1 for the root
	Path          []Tag // list types of enclosing lists, outermost first
}

// IsList reports whether the chunk contains child chunks.
func (c Chunk) IsList() bool {
	return c.ID == RIFF || c.ID == LIST
}

// PayloadEnd returns the offset one past the chunk payload, excluding the
// word-alignment pad byte.
func (c Chunk) PayloadEnd() int64 {
	return c.HeaderOffset + HeaderSize + int64(c.Size)
}

// Walk reads the RIFF tree of r in file order and calls fn for the top-level
// RIFF chunk and, recursively, for every child of every list chunk. Non-list
// payloads are skipped without being read. fn may return SkipList for a list
// chunk to skip its children; any other error aborts the walk and is returned
// unchanged.
func Walk(r io.ReaderAt, size int64, fn func(Chunk) error) error {
	var hdr [ListHeaderSize]byte
	if size < ListHeaderSize {
		return parseErr("signature", 0, nil)
	}
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return fmt.Errorf("riff: read header: %w", err)
	}
	root := Chunk{
		ID:            Tag(binary.BigEndian.Uint32(hdr[0:4])),
		Size:          binary.LittleEndian.Uint32(hdr[4:8]),
		ListType:      Tag(binary.BigEndian.Uint32(hdr[8:12])),
		HeaderOffset:  0,
		PayloadOffset: ListHeaderSize,
		Parent:        -1,
	}
	if root.ID != RIFF || root.ListType != AVI {
		return parseErr("signature", 0, nil)
	}
	if root.PayloadEnd() > size {
		return parseErr("RIFF", 0, nil)
	}
	switch err := fn(root); {
	case err == nil:
	case errors.Is(err, SkipList):
		return nil
	default:
		return err
	}
	idx := 1
	err := walkRegion(r, ListHeaderSize, root.PayloadEnd(), 0, []Tag{AVI}, 1, &idx, fn)
	if err != nil {
		return parseErr("RIFF", 0, err)
	}
	return nil
}

// Chunks collects the full walk into a slice, in file order.
func Chunks(r io.ReaderAt, size int64) ([]Chunk, error) {
	var chunks []Chunk
	err := Walk(r, size, func(c Chunk) error {
		chunks = append(chunks, c)
		return nil
	})
	return chunks, err
}

func walkRegion(r io.ReaderAt, start, end int64, parent int, path []Tag, depth int, idx *int, fn func(Chunk) error) error {
	if depth > maxDepth {
		return parseErr("depth", start, nil)
	}
	var hdr [ListHeaderSize]byte
	for off := start; off < end; {
		if off+HeaderSize > end {
			return parseErr("header", off, nil)
		}
		if _, err := r.ReadAt(hdr[:HeaderSize], off); err != nil {
			return fmt.Errorf("riff: read header at %d: %w", off, err)
		}
		c := Chunk{
			ID:            Tag(binary.BigEndian.Uint32(hdr[0:4])),
			Size:          binary.LittleEndian.Uint32(hdr[4:8]),
			HeaderOffset:  off,
			PayloadOffset: off + HeaderSize,
			Parent:        parent,
			Path:          path,
		}
		if c.PayloadEnd() > end {
			return parseErr(c.ID.String(), off, nil)
		}
		if c.IsList() {
			if c.Size < 4 {
				return parseErr(c.ID.String(), off, nil)
			}
			if _, err := r.ReadAt(hdr[8:12], off+HeaderSize); err != nil {
				return fmt.Errorf("riff: read list type at %d: %w", off, err)
			}
			c.ListType = Tag(binary.BigEndian.Uint32(hdr[8:12]))
			c.PayloadOffset = off + ListHeaderSize
		}
		self := *idx
		*idx++
		err := fn(c)
		switch {
		case err == nil && c.IsList():
			childPath := make([]Tag, len(path)+1)
			copy(childPath, path)
			childPath[len(path)] = c.ListType
			if err = walkRegion(r, c.PayloadOffset, c.PayloadEnd(), self, childPath, depth+1, idx, fn); err != nil {
				return parseErr(c.ListType.String(), off, err)
			}
		case errors.Is(err, SkipList):
		case err != nil:
			return err
		}
		off = c.PayloadEnd()
		if c.Size%2 == 1 {
			off++ // word-alignment pad byte, not part of any chunk
		}
	}
	return nil
}
