// Package resfmt decodes the binary ".resources" container format embedded
// in managed modules and re-encodes its entries into the editable ".resx"
// XML form. The reader is a plain offset-checked byte walker: every field is
// bounds-checked before access, and malformed input is reported rather than
// trusted.
package resfmt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
)

// magicNumber opens every ".resources" container.
const magicNumber = 0xBEEFCACE

// Value type codes used by runtime resource set version 2.
const (
	typeCodeString    = 0x01
	typeCodeByteArray = 0x20
	typeCodeStream    = 0x21
)

// maxCount caps the declared resource and type counts so a corrupt header
// cannot drive huge allocations. No legitimate container comes close.
const maxCount = 1 << 20

// Sentinel decode errors. Both trigger the caller's raw-copy fallback and
// are never fatal to an emission run.
var (
	// ErrMalformed indicates the container's structure could not be parsed.
	ErrMalformed = errors.New("resfmt: malformed resources container")

	// ErrNotByteStreams indicates the container parsed but holds at least
	// one value that is not a plain byte stream, so its entries cannot be
	// exploded into individual files.
	ErrNotByteStreams = errors.New("resfmt: container entries are not uniformly byte streams")
)

// Entry is one (name, value) pair from a resources container, in container
// order.
type Entry struct {
	Name string
	Data []byte
}

// Read parses data as a ".resources" container whose every value is a byte
// stream and returns its entries in container order. It returns ErrMalformed
// when the structure cannot be parsed and ErrNotByteStreams when any value
// has a different type.
func Read(data []byte) ([]Entry, error) {
	r := &reader{data: data}

	magic, err := r.u32()
	if err != nil {
		return nil, err
	}
	if magic != magicNumber {
		return nil, fmt.Errorf("%w: bad magic 0x%08X", ErrMalformed, magic)
	}

	headerVersion, err := r.u32()
	if err != nil {
		return nil, err
	}
	headerSize, err := r.u32()
	if err != nil {
		return nil, err
	}
	if headerVersion > 1 {
		// Unknown header layout: the size field tells us how much to skip.
		if err := r.skip(int(headerSize)); err != nil {
			return nil, err
		}
	} else {
		// Reader class name and resource set class name.
		if _, err := r.prefixedString(); err != nil {
			return nil, err
		}
		if _, err := r.prefixedString(); err != nil {
			return nil, err
		}
	}

	version, err := r.u32()
	if err != nil {
		return nil, err
	}
	if version != 1 && version != 2 {
		return nil, fmt.Errorf("%w: unsupported resource set version %d", ErrMalformed, version)
	}

	numResources, err := r.count()
	if err != nil {
		return nil, err
	}
	numTypes, err := r.count()
	if err != nil {
		return nil, err
	}
	typeNames := make([]string, numTypes)
	for i := range typeNames {
		typeNames[i], err = r.prefixedString()
		if err != nil {
			return nil, err
		}
	}

	// The name-hash section is aligned to an 8-byte boundary with PAD bytes.
	r.pos = (r.pos + 7) &^ 7
	if err := r.skip(4 * numResources); err != nil { // name hashes, unused
		return nil, err
	}
	namePositions := make([]int, numResources)
	for i := range namePositions {
		p, err := r.u32()
		if err != nil {
			return nil, err
		}
		namePositions[i] = int(p)
	}
	dataSection, err := r.u32()
	if err != nil {
		return nil, err
	}
	nameSection := r.pos

	entries := make([]Entry, 0, numResources)
	for _, namePos := range namePositions {
		if err := r.seek(nameSection + namePos); err != nil {
			return nil, err
		}
		name, err := r.utf16String()
		if err != nil {
			return nil, err
		}
		valueOffset, err := r.u32()
		if err != nil {
			return nil, err
		}
		if err := r.seek(int(dataSection) + int(valueOffset)); err != nil {
			return nil, err
		}
		value, err := r.value(version, typeNames)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Data: value})
	}
	return entries, nil
}

// value decodes one resource value positioned at the reader's cursor.
func (r *reader) value(version uint32, typeNames []string) ([]byte, error) {
	code, err := r.sevenBitInt()
	if err != nil {
		return nil, err
	}
	if version == 1 {
		// Version 1 stores an index into the type table instead of a code.
		if code < 0 || code >= len(typeNames) {
			return nil, fmt.Errorf("%w: type index %d out of range", ErrMalformed, code)
		}
		if !strings.HasPrefix(typeNames[code], "System.Byte[]") {
			return nil, fmt.Errorf("%w: value of type %s", ErrNotByteStreams, typeNames[code])
		}
		return r.lengthPrefixedBytes()
	}
	switch code {
	case typeCodeByteArray, typeCodeStream:
		return r.lengthPrefixedBytes()
	case typeCodeString:
		return nil, fmt.Errorf("%w: string value", ErrNotByteStreams)
	default:
		return nil, fmt.Errorf("%w: value type code 0x%X", ErrNotByteStreams, code)
	}
}

// reader walks a byte buffer with bounds checking.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

func (r *reader) seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return fmt.Errorf("%w: offset %d out of range", ErrMalformed, pos)
	}
	r.pos = pos
	return nil
}

func (r *reader) skip(n int) error {
	if n < 0 || n > r.remaining() {
		return fmt.Errorf("%w: truncated at offset %d", ErrMalformed, r.pos)
	}
	r.pos += n
	return nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, fmt.Errorf("%w: truncated at offset %d", ErrMalformed, r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// count reads a u32 that is used as an element count, capping it against
// corrupt headers.
func (r *reader) count() (int, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	if v > maxCount {
		return 0, fmt.Errorf("%w: implausible count %d", ErrMalformed, v)
	}
	return int(v), nil
}

// sevenBitInt reads a 7-bit chunked little-endian integer.
func (r *reader) sevenBitInt() (int, error) {
	var value, shift int
	for {
		b, err := r.bytes(1)
		if err != nil {
			return 0, err
		}
		value |= int(b[0]&0x7F) << shift
		if b[0]&0x80 == 0 {
			return value, nil
		}
		shift += 7
		if shift > 28 {
			return 0, fmt.Errorf("%w: 7-bit integer too long", ErrMalformed)
		}
	}
}

// lengthPrefixedBytes reads a u32 length followed by that many bytes.
func (r *reader) lengthPrefixedBytes() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if int(n) > r.remaining() {
		return nil, fmt.Errorf("%w: declared value length %d exceeds data", ErrMalformed, n)
	}
	return r.bytes(int(n))
}

// prefixedString reads a 7-bit length prefix followed by UTF-8 bytes.
func (r *reader) prefixedString() (string, error) {
	n, err := r.sevenBitInt()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// utf16String reads a 7-bit byte-length prefix followed by UTF-16LE bytes.
func (r *reader) utf16String() (string, error) {
	n, err := r.sevenBitInt()
	if err != nil {
		return "", err
	}
	if n%2 != 0 {
		return "", fmt.Errorf("%w: odd UTF-16 byte length %d", ErrMalformed, n)
	}
	b, err := r.bytes(n)
	if err != nil {
		return "", err
	}
	units := make([]uint16, n/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(units)), nil
}
