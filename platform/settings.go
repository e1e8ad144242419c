// Package platform probes the host operating system for filesystem path
// limits. The probe runs at most once per process; callers are expected to
// capture the result in a Settings value and pass it explicitly to every
// component that needs it rather than re-detecting.
package platform

import "sync"

// Path limit constants observed on supported platforms. The Windows values
// are empirically derived rather than documented guarantees, which is why
// Settings keeps them as plain overridable data instead of hard invariants.
const (
	// LegacyWindowsMaxPath is the total path budget on Windows when the
	// OS-level long-path support flag is disabled.
	LegacyWindowsMaxPath = 258

	// WindowsLongMaxPath is the total path budget on Windows when long-path
	// support is enabled.
	WindowsLongMaxPath = 32760

	// MaxSegment is the maximum length of a single path segment on every
	// supported filesystem.
	MaxSegment = 255

	// ShortNameHeadroom is the extra budget a directory must leave free on
	// filesystems that still allocate legacy 8.3 short aliases: a worst-case
	// short filename inside the directory must fit within the total limit.
	ShortNameHeadroom = 12
)

// Settings describes the path limits of the target filesystem. The zero
// value is not meaningful; construct one with Detect or Conservative, or
// fill the fields explicitly to override the probed values.
type Settings struct {
	// LongPathsEnabled reports whether paths longer than the legacy limit
	// are usable by ordinary tools on this host.
	LongPathsEnabled bool

	// MaxPathLength is the maximum total path length in characters.
	MaxPathLength int

	// MaxSegmentLength is the maximum length of one path segment.
	MaxSegmentLength int
}

// Conservative returns limits that are safe on any supported OS
// configuration, including Windows without long-path support.
func Conservative() Settings {
	return Settings{
		LongPathsEnabled: false,
		MaxPathLength:    LegacyWindowsMaxPath,
		MaxSegmentLength: MaxSegment,
	}
}

var detectOnce = sync.OnceValue(probe)

// Detect returns the path limits of the host. The underlying OS probe runs
// once per process; a probe failure never propagates and instead degrades to
// Conservative limits.
func Detect() Settings {
	return detectOnce()
}

// DirectoryBudget returns the effective maximum length for a directory path.
// On filesystems without long-path support the budget is ShortNameHeadroom
// characters tighter than the file budget, so that a worst-case 8.3 short
// alias created inside the directory still fits.
func (s Settings) DirectoryBudget() int {
	if s.LongPathsEnabled {
		return s.MaxPathLength
	}
	return s.MaxPathLength - ShortNameHeadroom
}
