package winres

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupImage struct {
	id   uint16
	data []byte
}

// buildGroup assembles an icon group descriptor declaring the given images.
func buildGroup(images []groupImage) []byte {
	var buf bytes.Buffer
	le16 := func(v uint16) { _ = binary.Write(&buf, binary.LittleEndian, v) }
	le32 := func(v uint32) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	le16(0) // reserved
	le16(1) // type: icon
	le16(uint16(len(images)))
	for _, img := range images {
		buf.WriteByte(32)  // width
		buf.WriteByte(32)  // height
		buf.WriteByte(0)   // color count
		buf.WriteByte(0)   // reserved
		le16(1)            // planes
		le16(32)           // bit count
		le32(uint32(len(img.data))) // byte size
		le16(img.id)
	}
	return buf.Bytes()
}

func buildTable(images []groupImage) *Table {
	t := NewTable()
	t.Add(TypeGroupIcon, 1, buildGroup(images))
	for _, img := range images {
		t.Add(TypeIcon, img.id, img.data)
	}
	return t
}

func TestReconstructIcon(t *testing.T) {
	images := []groupImage{
		{id: 1, data: bytes.Repeat([]byte{0xAA}, 40)},
		{id: 2, data: bytes.Repeat([]byte{0xBB}, 25)},
		{id: 7, data: bytes.Repeat([]byte{0xCC}, 10)},
	}

	ico, err := ReconstructIcon(buildTable(images))
	require.NoError(t, err)

	n := len(images)
	headerAndDir := groupHeaderSize + n*fileEntrySize

	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(ico[2:]), "image type")
	assert.Equal(t, uint16(n), binary.LittleEndian.Uint16(ico[4:]), "image count")

	// Each offset equals header + directory + sum of preceding image sizes,
	// so the sequence is strictly increasing.
	wantOffset := uint32(headerAndDir)
	var prev uint32
	for i := 0; i < n; i++ {
		entry := ico[groupHeaderSize+i*fileEntrySize:]
		size := binary.LittleEndian.Uint32(entry[8:])
		offset := binary.LittleEndian.Uint32(entry[12:])

		assert.Equal(t, uint32(len(images[i].data)), size, "entry %d size", i)
		assert.Equal(t, wantOffset, offset, "entry %d offset", i)
		if i > 0 {
			assert.Greater(t, offset, prev, "offsets must increase")
		}
		assert.Equal(t, images[i].data, ico[offset:offset+size], "entry %d payload", i)

		wantOffset += size
		prev = offset
	}
	assert.Len(t, ico, int(wantOffset), "container ends after the last payload")
}

func TestReconstructIconMissingImage(t *testing.T) {
	tbl := buildTable([]groupImage{{id: 1, data: []byte{1, 2, 3}}})
	// Declare a second image the image table does not hold.
	tbl.Add(TypeGroupIcon, 1, buildGroup([]groupImage{
		{id: 1, data: []byte{1, 2, 3}},
		{id: 99, data: []byte{4, 5}},
	}))

	_, err := ReconstructIcon(tbl)
	assert.ErrorIs(t, err, ErrBadIconGroup)
}

func TestReconstructIconAbsentTables(t *testing.T) {
	t.Run("no group", func(t *testing.T) {
		tbl := NewTable()
		tbl.Add(TypeIcon, 1, []byte{1})
		_, err := ReconstructIcon(tbl)
		assert.ErrorIs(t, err, ErrNoIcon)
	})
	t.Run("no images", func(t *testing.T) {
		tbl := NewTable()
		tbl.Add(TypeGroupIcon, 1, buildGroup([]groupImage{{id: 1, data: []byte{1}}}))
		_, err := ReconstructIcon(tbl)
		assert.ErrorIs(t, err, ErrNoIcon)
	})
}

func TestReconstructIconTruncatedGroup(t *testing.T) {
	tbl := NewTable()
	tbl.Add(TypeIcon, 1, []byte{1})

	t.Run("short header", func(t *testing.T) {
		tbl.Add(TypeGroupIcon, 1, []byte{0, 0, 1})
		_, err := ReconstructIcon(tbl)
		assert.ErrorIs(t, err, ErrBadIconGroup)
	})
	t.Run("directory shorter than declared count", func(t *testing.T) {
		group := buildGroup([]groupImage{{id: 1, data: []byte{1}}})
		tbl.Add(TypeGroupIcon, 1, group[:len(group)-4])
		_, err := ReconstructIcon(tbl)
		assert.ErrorIs(t, err, ErrBadIconGroup)
	})
}
