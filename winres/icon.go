package winres

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Icon container layout sizes, all fixed by the format.
const (
	// groupHeaderSize is the ICONDIR header: reserved, type, count.
	groupHeaderSize = 6

	// groupEntrySize is one GRPICONDIRENTRY as stored in the group
	// resource: the final field is a 2-byte image resource ID.
	groupEntrySize = 14

	// fileEntrySize is one ICONDIRENTRY as stored in a .ico file: the
	// final field is a 4-byte offset to the image payload instead.
	fileEntrySize = 16
)

// Icon reconstruction errors.
var (
	// ErrNoIcon indicates the module carries no icon group or no icon
	// images, so there is nothing to reconstruct.
	ErrNoIcon = errors.New("winres: no icon resources")

	// ErrBadIconGroup indicates the icon group descriptor is structurally
	// invalid or references an image that is not present.
	ErrBadIconGroup = errors.New("winres: bad icon group")
)

// ReconstructIcon reassembles a valid multi-image .ico container from the
// module's icon group descriptor and the individual image payloads it
// references. The group's directory entries are rewritten so that the image
// ID field becomes a running byte offset into the concatenated payloads,
// which start right after the header and directory.
//
// It fails when either resource table is absent or when a referenced image
// ID has no matching payload.
func ReconstructIcon(t *Table) ([]byte, error) {
	group, ok := t.First(TypeGroupIcon)
	if !ok || t.Len(TypeIcon) == 0 {
		return nil, ErrNoIcon
	}
	if len(group) < groupHeaderSize {
		return nil, fmt.Errorf("%w: descriptor truncated at %d bytes", ErrBadIconGroup, len(group))
	}

	reserved := binary.LittleEndian.Uint16(group[0:])
	imageType := binary.LittleEndian.Uint16(group[2:])
	count := int(binary.LittleEndian.Uint16(group[4:]))

	if len(group) < groupHeaderSize+count*groupEntrySize {
		return nil, fmt.Errorf("%w: descriptor declares %d images but holds %d bytes",
			ErrBadIconGroup, count, len(group))
	}

	images := make([][]byte, count)
	declaredSizes := make([]uint32, count)
	for i := 0; i < count; i++ {
		entry := group[groupHeaderSize+i*groupEntrySize:]
		declaredSizes[i] = binary.LittleEndian.Uint32(entry[8:])
		id := binary.LittleEndian.Uint16(entry[12:])
		img, ok := t.Lookup(TypeIcon, id)
		if !ok {
			return nil, fmt.Errorf("%w: image ID %d has no payload", ErrBadIconGroup, id)
		}
		images[i] = img
	}

	out := make([]byte, 0, groupHeaderSize+count*fileEntrySize)
	out = binary.LittleEndian.AppendUint16(out, reserved)
	out = binary.LittleEndian.AppendUint16(out, imageType)
	out = binary.LittleEndian.AppendUint16(out, uint16(count))

	// Offsets accumulate each image's declared byte size, starting right
	// after the header and the directory entries.
	offset := uint32(groupHeaderSize + count*fileEntrySize)
	for i := 0; i < count; i++ {
		entry := group[groupHeaderSize+i*groupEntrySize:]
		out = append(out, entry[:12]...) // width..byte size, unchanged
		out = binary.LittleEndian.AppendUint32(out, offset)
		offset += declaredSizes[i]
	}
	for _, img := range images {
		out = append(out, img...)
	}
	return out, nil
}
