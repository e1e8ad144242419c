//go:build windows

package platform

import "golang.org/x/sys/windows/registry"

// probe reads the OS-level long-path flag. Any registry failure degrades to
// the conservative legacy limits instead of propagating.
func probe() Settings {
	key, err := registry.OpenKey(
		registry.LOCAL_MACHINE,
		`SYSTEM\CurrentControlSet\Control\FileSystem`,
		registry.QUERY_VALUE,
	)
	if err != nil {
		return Conservative()
	}
	defer key.Close()

	enabled, _, err := key.GetIntegerValue("LongPathsEnabled")
	if err != nil || enabled == 0 {
		return Conservative()
	}
	return Settings{
		LongPathsEnabled: true,
		MaxPathLength:    WindowsLongMaxPath,
		MaxSegmentLength: MaxSegment,
	}
}
