// Package winres models the native (Win32-style) resource section of a
// binary module: a typed, hierarchical key-value store holding icons,
// manifests, and version information independent of the managed resource
// model. Only the slices of it that project emission needs are modeled.
package winres

// Well-known native resource type identifiers.
const (
	// TypeIcon holds individual icon image payloads, keyed by ordinal ID.
	TypeIcon = 3

	// TypeGroupIcon holds icon group descriptors referencing TypeIcon
	// entries by ID.
	TypeGroupIcon = 14

	// TypeManifest holds the application manifest.
	TypeManifest = 24
)

// Table is a flattened view of a native resource directory: entry data keyed
// by numeric resource type and ordinal identifier. The insertion order per
// type is preserved. A Table is built once by the module reader and read
// concurrently afterwards.
type Table struct {
	byType map[uint32]map[uint16][]byte
	order  map[uint32][]uint16
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{
		byType: make(map[uint32]map[uint16][]byte),
		order:  make(map[uint32][]uint16),
	}
}

// Add stores data under the given resource type and ID, replacing any
// previous entry with the same key.
func (t *Table) Add(typ uint32, id uint16, data []byte) {
	m, ok := t.byType[typ]
	if !ok {
		m = make(map[uint16][]byte)
		t.byType[typ] = m
	}
	if _, exists := m[id]; !exists {
		t.order[typ] = append(t.order[typ], id)
	}
	m[id] = data
}

// Lookup returns the entry stored under the given type and ID.
func (t *Table) Lookup(typ uint32, id uint16) ([]byte, bool) {
	data, ok := t.byType[typ][id]
	return data, ok
}

// First returns the first entry added under the given type.
func (t *Table) First(typ uint32) ([]byte, bool) {
	ids := t.order[typ]
	if len(ids) == 0 {
		return nil, false
	}
	return t.byType[typ][ids[0]], true
}

// Len returns the number of entries stored under the given type.
func (t *Table) Len(typ uint32) int {
	return len(t.order[typ])
}
