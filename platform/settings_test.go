package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	s := Detect()

	assert.Equal(t, MaxSegment, s.MaxSegmentLength)
	assert.Positive(t, s.MaxPathLength)
	assert.GreaterOrEqual(t, s.MaxPathLength, LegacyWindowsMaxPath)

	// Detect is memoized for the process lifetime.
	assert.Equal(t, s, Detect())
}

func TestConservative(t *testing.T) {
	s := Conservative()

	assert.False(t, s.LongPathsEnabled)
	assert.Equal(t, LegacyWindowsMaxPath, s.MaxPathLength)
	assert.Equal(t, MaxSegment, s.MaxSegmentLength)
}

func TestDirectoryBudget(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		want     int
	}{
		{
			name:     "legacy windows reserves 8.3 headroom",
			settings: Conservative(),
			want:     LegacyWindowsMaxPath - ShortNameHeadroom,
		},
		{
			name: "long paths use the full budget",
			settings: Settings{
				LongPathsEnabled: true,
				MaxPathLength:    WindowsLongMaxPath,
				MaxSegmentLength: MaxSegment,
			},
			want: WindowsLongMaxPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.settings.DirectoryBudget())
		})
	}
}
