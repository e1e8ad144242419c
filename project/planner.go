package project

import (
	"path"
	"sort"
	"strings"

	"github.com/avengerx/ilspy/pathsafe"
)

// resourceDirThreshold is the number of resources that must share a dotted
// prefix before the prefix is worth pre-creating as a directory. Below it,
// a resource stays a single flat file instead of spawning a directory of its
// own.
const resourceDirThreshold = 2

// DirectorySet tracks the relative directory paths created during one
// emission run. Membership is case-insensitive so that namespaces differing
// only by case cannot produce two directories that collide on
// case-preserving filesystems.
type DirectorySet struct {
	byFold map[string]string
}

// NewDirectorySet creates an empty DirectorySet.
func NewDirectorySet() *DirectorySet {
	return &DirectorySet{byFold: make(map[string]string)}
}

// Add records rel and every parent of it. It reports whether rel itself was
// newly added.
func (s *DirectorySet) Add(rel string) bool {
	if rel == "" || rel == "." {
		return false
	}
	added := false
	for p := rel; p != "" && p != "."; p = parentDir(p) {
		key := strings.ToLower(p)
		if _, ok := s.byFold[key]; ok {
			break
		}
		s.byFold[key] = p
		if p == rel {
			added = true
		}
	}
	return added
}

// Contains reports whether rel (or a casing variant of it) was recorded.
func (s *DirectorySet) Contains(rel string) bool {
	if rel == "" {
		return false
	}
	_, ok := s.byFold[strings.ToLower(rel)]
	return ok
}

// Paths returns the recorded directories in sorted order, parents before
// children.
func (s *DirectorySet) Paths() []string {
	out := make([]string, 0, len(s.byFold))
	for _, p := range s.byFold {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func parentDir(rel string) string {
	d := path.Dir(rel)
	if d == "." {
		return ""
	}
	return d
}

// TypeGroup is the set of types that share one output source file.
type TypeGroup struct {
	// Path is the file's root-relative, slash-separated path.
	Path string

	// Types are the group's members in module order.
	Types []TypeDef
}

// planner maps namespaces to directories and type names to files, and keeps
// the DirectorySet the resource placement heuristic consults.
type planner struct {
	naming pathsafe.Naming
	flat   bool
	rootNS string
	dirs   *DirectorySet
}

func newPlanner(o Options) *planner {
	return &planner{
		naming: o.Naming,
		flat:   o.FlatNamespaces,
		rootNS: o.RootNamespace,
		dirs:   NewDirectorySet(),
	}
}

// groups partitions types into one group per output file, in first-seen
// order. Types mapping to the same file (case-insensitively) share a group,
// so partial classes and case-colliding names land in one file instead of
// overwriting each other. Every group's directory is recorded in the
// DirectorySet.
func (p *planner) groups(types []TypeDef) []TypeGroup {
	index := make(map[string]int)
	var out []TypeGroup
	for _, t := range types {
		if t.Name == "" {
			continue
		}
		rel := p.typePath(t)
		key := strings.ToLower(rel)
		if i, ok := index[key]; ok {
			out[i].Types = append(out[i].Types, t)
			continue
		}
		p.dirs.Add(parentDir(rel))
		index[key] = len(out)
		out = append(out, TypeGroup{Path: rel, Types: []TypeDef{t}})
	}
	return out
}

// typePath maps one type to its root-relative source file path. A generic
// arity marker ("List`1") is stripped before sanitization.
func (p *planner) typePath(t TypeDef) string {
	name := t.Name
	if i := strings.IndexByte(name, '`'); i >= 0 {
		name = name[:i]
	}
	file := p.naming.CleanFileName(name) + sourceExt
	dir := p.namespaceDir(t.Namespace)
	if dir == "" {
		return file
	}
	return dir + "/" + file
}

// namespaceDir maps a dotted namespace to its relative directory, or "" for
// the target root. Nested mode first strips the module's root namespace so
// it does not wrap the whole tree, then turns each remaining part into one
// directory level; flat mode keeps the full dotted name as a single level.
func (p *planner) namespaceDir(ns string) string {
	if ns == "" {
		return ""
	}
	if p.flat {
		return p.naming.CleanDirectoryName(ns)
	}
	switch {
	case ns == p.rootNS:
		return ""
	case p.rootNS != "" && strings.HasPrefix(ns, p.rootNS+"."):
		ns = ns[len(p.rootNS)+1:]
	}
	return p.naming.CleanName(ns, true, false)
}

// preplanResourceDirs decides which directories the run's resources should
// share, records them, and returns the newly added ones so the caller can
// create them. For each resource name, its deepest dotted prefix shared with
// at least resourceDirThreshold-1 other resources becomes a directory;
// resources sharing no prefix stay flat files.
func (p *planner) preplanResourceDirs(names []string) []string {
	counts := make(map[string]int)
	for _, name := range names {
		for _, prefix := range dottedPrefixes(name) {
			dir := p.namespaceDir(prefix)
			if dir != "" {
				counts[strings.ToLower(dir)]++
			}
		}
	}

	var created []string
	for _, name := range names {
		prefixes := dottedPrefixes(name)
		for i := len(prefixes) - 1; i >= 0; i-- {
			dir := p.namespaceDir(prefixes[i])
			if dir == "" || counts[strings.ToLower(dir)] < resourceDirThreshold {
				continue
			}
			if p.dirs.Add(dir) {
				created = append(created, dir)
			}
			break
		}
	}
	sort.Strings(created)
	return created
}

// resourcePath maps a resource's dotted name to its root-relative file path.
// The deepest already-created directory matching a dotted prefix of the name
// wins; the remaining segments stay one dotted file name. Names matching no
// directory become a single sanitized file at the target root.
func (p *planner) resourcePath(name string) string {
	segs := strings.Split(name, ".")
	for i := len(segs) - 1; i > 0; i-- {
		dir := p.namespaceDir(strings.Join(segs[:i], "."))
		if dir != "" && p.dirs.Contains(dir) {
			return dir + "/" + p.naming.CleanFileName(strings.Join(segs[i:], "."))
		}
	}
	return p.naming.CleanFileName(name)
}

// dottedPrefixes returns every proper dotted prefix of name, shortest first.
// "A.B.Strings.resources" yields "A", "A.B", "A.B.Strings".
func dottedPrefixes(name string) []string {
	var out []string
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			out = append(out, name[:i])
		}
	}
	return out
}
