package pathsafe

import (
	"runtime"
	"strings"
)

// Placeholder is the character substituted for every illegal character and
// appended to names that would otherwise collide with reserved device names.
const Placeholder = '-'

// reservedNames are the device names Windows refuses as file names in any
// directory, in any case combination.
var reservedNames = func() map[string]struct{} {
	names := []string{"AUX", "CON", "NUL", "PRN"}
	for i := '1'; i <= '9'; i++ {
		names = append(names, "COM"+string(i), "LPT"+string(i))
	}
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}()

// Naming captures the separator and illegal-character rules of a target
// operating system. The zero value applies Unix rules.
type Naming struct {
	windows bool
}

// UnixNaming returns naming rules for Unix-like filesystems: '/' separates
// segments and only NUL is illegal inside one.
func UnixNaming() Naming { return Naming{} }

// WindowsNaming returns naming rules for Windows filesystems: both slashes
// separate segments, the usual <>:"|?* set plus control characters is
// illegal, and device names are reserved.
func WindowsNaming() Naming { return Naming{windows: true} }

// HostNaming returns the naming rules of the host operating system.
func HostNaming() Naming {
	return Naming{windows: runtime.GOOS == "windows"}
}

// CleanName converts an arbitrary identifier or resource name into a
// filesystem-legal relative name. The input is split at its last directory
// separator; illegal characters in the directory part and the leaf are
// replaced with Placeholder independently. Under Windows rules colons are
// neutralized everywhere except a single leading drive-letter pattern in the
// directory part.
//
// When separateAtDots is set, dots in the leaf become directory separators;
// with treatAsFileName additionally set, the trailing file extension is
// preserved as part of the final segment. Segments matching a reserved
// device name get Placeholder appended so they are never reserved again.
//
// The result always uses '/' as separator. CleanName is idempotent:
// applying it to its own output changes nothing.
func (n Naming) CleanName(name string, separateAtDots, treatAsFileName bool) string {
	dir, leaf := n.splitLast(name)

	var segments []string
	if dir != "" {
		for _, seg := range strings.Split(n.cleanPart(dir, true), "/") {
			segments = append(segments, guardSegment(seg))
		}
	}

	leaf = n.cleanPart(leaf, false)

	ext := ""
	if treatAsFileName {
		if i := strings.LastIndexByte(leaf, '.'); i > 0 && i < len(leaf)-1 {
			ext = leaf[i:]
			leaf = leaf[:i]
		}
	}

	if separateAtDots {
		parts := strings.Split(leaf, ".")
		for i, seg := range parts {
			if i == len(parts)-1 {
				// The extension rides along on the final segment and takes
				// part in the reserved-name comparison.
				seg += ext
			}
			segments = append(segments, guardSegment(seg))
		}
	} else {
		segments = append(segments, guardSegment(dotsToPlaceholders(leaf)+ext))
	}

	out := strings.Join(segments, "/")
	if out == "" {
		return string(Placeholder)
	}
	return out
}

// CleanFileName cleans a name intended to become a single file name,
// preserving dots except where the whole name is made of dots.
func (n Naming) CleanFileName(name string) string {
	return n.CleanName(name, false, true)
}

// CleanDirectoryName cleans a name intended to become a single directory
// segment.
func (n Naming) CleanDirectoryName(name string) string {
	return n.CleanName(name, false, false)
}

// splitLast splits the name at its last directory separator into a directory
// part and a leaf part. Either part may be empty.
func (n Naming) splitLast(name string) (dir, leaf string) {
	idx := strings.LastIndexByte(name, '/')
	if n.windows {
		if b := strings.LastIndexByte(name, '\\'); b > idx {
			idx = b
		}
	}
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}

// cleanPart replaces illegal characters with Placeholder. When
// allowSeparators is set, separator characters are kept (normalized to '/');
// otherwise they are replaced like any other illegal character.
func (n Naming) cleanPart(s string, allowSeparators bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		sep := r == '/' || (n.windows && r == '\\')
		switch {
		case sep && allowSeparators:
			b.WriteByte('/')
		case sep:
			b.WriteByte(Placeholder)
		case n.windows && r == ':':
			if allowSeparators && i == 1 && isDriveColon(s) {
				b.WriteByte(':')
			} else {
				b.WriteByte(Placeholder)
			}
		case n.illegal(r):
			b.WriteByte(Placeholder)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (n Naming) illegal(r rune) bool {
	if r == 0 {
		return true
	}
	if !n.windows {
		return false
	}
	return r < 0x20 || strings.ContainsRune(`<>"|?*`, r)
}

// isDriveColon reports whether s starts with a drive-letter pattern such as
// "C:" or "C:\dir", making the colon at index 1 legal.
func isDriveColon(s string) bool {
	if len(s) < 2 {
		return false
	}
	c := s[0]
	if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
		return false
	}
	return len(s) == 2 || s[2] == '/' || s[2] == '\\'
}

// guardSegment keeps a single path segment out of the reserved and
// dot-only namespaces. Empty segments become a lone Placeholder so that
// joining never produces "//" or resurrects "." traversal.
func guardSegment(seg string) string {
	if seg == "" {
		return string(Placeholder)
	}
	seg = dotsToPlaceholders(seg)
	if _, ok := reservedNames[strings.ToUpper(seg)]; ok {
		return seg + string(Placeholder)
	}
	return seg
}

// dotsToPlaceholders rewrites segments consisting entirely of dots ("." and
// "..") so they can never act as directory traversal.
func dotsToPlaceholders(seg string) string {
	if seg == "" || strings.Trim(seg, ".") != "" {
		return seg
	}
	return strings.Repeat(string(Placeholder), len(seg))
}
