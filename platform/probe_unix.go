//go:build unix

package platform

import "math"

// On Unix-like systems PATH_MAX is advisory at best: deep trees can always be
// reached with relative openat-style traversal, so the total length is
// effectively unlimited. Individual segment names stay capped by NAME_MAX.
func probe() Settings {
	return Settings{
		LongPathsEnabled: true,
		MaxPathLength:    math.MaxInt32,
		MaxSegmentLength: MaxSegment,
	}
}
