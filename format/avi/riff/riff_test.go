package riff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// ck assembles a plain chunk with word-alignment padding.
func ck(id string, payload []byte) []byte {
	b := append([]byte{}, id...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(payload)))
	b = append(b, payload...)
	if len(payload)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

// lst assembles a LIST chunk around its children.
func lst(listType string, children ...[]byte) []byte {
	payload := []byte(listType)
	for _, c := range children {
		payload = append(payload, c...)
	}
	b := []byte("LIST")
	b = binary.LittleEndian.AppendUint32(b, uint32(len(payload)))
	return append(b, payload...)
}

// aviFile assembles a top-level RIFF/AVI container.
func aviFile(children ...[]byte) []byte {
	payload := []byte("AVI ")
	for _, c := range children {
		payload = append(payload, c...)
	}
	b := []byte("RIFF")
	b = binary.LittleEndian.AppendUint32(b, uint32(len(payload)))
	return append(b, payload...)
}

func testFile() []byte {
	return aviFile(
		lst("hdrl",
			ck("avih", make([]byte, 56)),
			lst("strl",
				ck("strh", make([]byte, 56)),
				ck("strf", make([]byte, 40)),
			),
			ck("IDIT", []byte("2024-01-15")),
		),
		lst("movi", ck("00dc", []byte{1, 2, 3, 4, 5})), // odd payload, padded
		ck("idx1", make([]byte, 16)),
	)
}

func walkAll(t *testing.T, data []byte) []Chunk {
	t.Helper()
	chunks, err := Chunks(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return chunks
}

func TestWalk_FileOrder(t *testing.T) {
	t.Parallel()

	data := testFile()
	chunks := walkAll(t, data)

	var ids []string
	for _, c := range chunks {
		ids = append(ids, c.ID.String())
	}
	require.Equal(t, []string{
		"RIFF", "LIST", "avih", "LIST", "strh", "strf", "IDIT", "LIST", "00dc", "idx1",
	}, ids)

	root := chunks[0]
	require.Equal(t, AVI, root.ListType)
	require.Equal(t, -1, root.Parent)
	require.Equal(t, int64(len(data))-HeaderSize, int64(root.Size))

	hdrl, strl, movi := chunks[1], chunks[3], chunks[7]
	require.Equal(t, HDRL, hdrl.ListType)
	require.Equal(t, 0, hdrl.Parent)
	require.Equal(t, STRL, strl.ListType)
	require.Equal(t, 1, strl.Parent)
	require.Equal(t, MOVI, movi.ListType)
	require.Equal(t, 0, movi.Parent)

	strh := chunks[4]
	require.Equal(t, []Tag{AVI, HDRL, STRL}, strh.Path)
	require.Equal(t, 3, strh.Parent)
	require.Equal(t, strh.HeaderOffset+HeaderSize, strh.PayloadOffset)

	idit := chunks[6]
	require.Equal(t, []Tag{AVI, HDRL}, idit.Path)
	require.Equal(t, uint32(10), idit.Size)
	require.Equal(t, []byte("2024-01-15"), data[idit.PayloadOffset:idit.PayloadEnd()])

	// The odd-sized 00dc chunk is followed by a pad byte that must not be
	// interpreted as chunk data.
	dc, idx1 := chunks[8], chunks[9]
	require.Equal(t, uint32(5), dc.Size)
	require.Equal(t, dc.PayloadEnd()+1, idx1.HeaderOffset)
}

func TestWalk_BadSignature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"not_riff", append([]byte("JUNK"), make([]byte, 20)...)},
		{"riff_but_wave", func() []byte {
			d := aviFile(ck("fmt ", make([]byte, 16)))
			copy(d[8:12], "WAVE")
			return d
		}()},
		{"too_short", []byte("RIFF")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Chunks(bytes.NewReader(tt.data), int64(len(tt.data)))
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
		})
	}
}

func TestWalk_TruncatedChunk(t *testing.T) {
	t.Parallel()

	data := testFile()
	// Inflate the declared size of the avih chunk far past its region.
	off := bytes.Index(data, []byte("avih"))
	require.Positive(t, off)
	binary.LittleEndian.PutUint32(data[off+4:off+8], 1<<20)

	_, err := Chunks(bytes.NewReader(data), int64(len(data)))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestWalk_DeclaredSizePastFileEnd(t *testing.T) {
	t.Parallel()

	data := testFile()
	binary.LittleEndian.PutUint32(data[4:8], uint32(len(data))) // 8 bytes too many

	_, err := Chunks(bytes.NewReader(data), int64(len(data)))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestWalk_DepthLimit(t *testing.T) {
	t.Parallel()

	inner := ck("IDIT", []byte("2024-01-15"))
	for i := 0; i < 20; i++ {
		inner = lst("nest", inner)
	}
	data := aviFile(inner)

	_, err := Chunks(bytes.NewReader(data), int64(len(data)))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Contains(t, err.Error(), "depth")
}

func TestWalk_SkipList(t *testing.T) {
	t.Parallel()

	data := testFile()
	var ids []string
	err := Walk(bytes.NewReader(data), int64(len(data)), func(c Chunk) error {
		ids = append(ids, c.ID.String())
		if c.IsList() && c.ListType == MOVI {
			return SkipList
		}
		return nil
	})
	require.NoError(t, err)
	require.NotContains(t, ids, "00dc")
	require.Contains(t, ids, "idx1")
}

func TestWalk_CallbackErrorPropagates(t *testing.T) {
	t.Parallel()

	data := testFile()
	sentinel := errors.New("stop here")
	err := Walk(bytes.NewReader(data), int64(len(data)), func(c Chunk) error {
		if c.ID == StringToTag("strf") {
			return sentinel
		}
		return nil
	})
	require.ErrorIs(t, err, sentinel)
}

func TestTag_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "IDIT", IDIT.String())
	require.Equal(t, "AVI ", AVI.String())
	require.Equal(t, IDIT, StringToTag(IDIT.String()))
}
