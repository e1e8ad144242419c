//go:build !unix && !windows

package platform

// Unknown platforms get the conservative limits.
func probe() Settings {
	return Conservative()
}
