package pathsafe

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/avengerx/ilspy/platform"
)

// dirCacheSize bounds the canonical-directory cache. Namespace trees repeat
// the same parent directories for every file, so a small cache absorbs
// nearly all resolver traffic.
const dirCacheSize = 256

// ResolveFunc canonicalizes the path rel relative to root through the target
// filesystem's own resolution and returns the canonical absolute path. It is
// the seam tests use to validate length arithmetic without touching the OS.
type ResolveFunc func(root, rel string) (string, error)

// LexicalResolver resolves candidate paths purely lexically, without
// consulting any filesystem. Intended for validators that guard writes to
// in-memory filesystems and for deterministic tests.
func LexicalResolver(root, rel string) (string, error) {
	return filepath.Join(root, rel), nil
}

// secureResolver resolves rel against root through the OS, following
// symlinks below root without ever letting the result leave it.
func secureResolver(root, rel string) (string, error) {
	resolved, err := securejoin.SecureJoin(root, rel)
	if err != nil {
		return "", fmt.Errorf("resolve %q under %q: %w", rel, root, err)
	}
	return resolved, nil
}

// Validator confines candidate paths to a sandbox root and enforces the
// platform's path-length limits. A Validator is immutable after construction
// and safe for concurrent use.
type Validator struct {
	root     string
	settings platform.Settings
	resolve  ResolveFunc
	logger   *slog.Logger
	dirCache *lru.Cache[string, string]
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithResolver replaces the OS-backed canonicalization with a custom
// ResolveFunc.
func WithResolver(fn ResolveFunc) ValidatorOption {
	return func(v *Validator) { v.resolve = fn }
}

// WithLogger sets the structured logger used for validation diagnostics.
func WithLogger(logger *slog.Logger) ValidatorOption {
	return func(v *Validator) { v.logger = logger }
}

// NewValidator creates a Validator rooted at the absolute directory root.
// A relative root is a programmer error and is rejected outright.
func NewValidator(root string, settings platform.Settings, opts ...ValidatorOption) (*Validator, error) {
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("pathsafe: target root must be absolute, got %q", root)
	}
	v := &Validator{
		root:     filepath.Clean(root),
		settings: settings,
		resolve:  secureResolver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	cache, err := lru.New[string, string](dirCacheSize)
	if err != nil {
		return nil, fmt.Errorf("pathsafe: create directory cache: %w", err)
	}
	v.dirCache = cache
	return v, nil
}

// Root returns the canonical sandbox root.
func (v *Validator) Root() string {
	return v.root
}

// Settings returns the path limits this validator enforces.
func (v *Validator) Settings() platform.Settings {
	return v.settings
}

// ValidateFile validates an absolute candidate file path and returns its
// canonical form.
func (v *Validator) ValidateFile(path string) (string, error) {
	return v.validate(path, false)
}

// ValidateDir validates an absolute candidate directory path and returns its
// canonical form. On filesystems without long-path support the directory
// budget reserves headroom for a worst-case 8.3 short filename created
// inside it.
func (v *Validator) ValidateDir(path string) (string, error) {
	return v.validate(path, true)
}

// FilePath joins the slash-separated relative path rel onto the root and
// validates it as a file.
func (v *Validator) FilePath(rel string) (string, error) {
	return v.validate(filepath.Join(v.root, filepath.FromSlash(rel)), false)
}

// DirPath joins the slash-separated relative path rel onto the root and
// validates it as a directory.
func (v *Validator) DirPath(rel string) (string, error) {
	return v.validate(filepath.Join(v.root, filepath.FromSlash(rel)), true)
}

func (v *Validator) validate(path string, isDir bool) (string, error) {
	const op = "validate"

	if !filepath.IsAbs(path) {
		return "", NewError(op, path, fmt.Errorf("%w: path must be absolute", ErrInvalidPath))
	}
	cleaned := filepath.Clean(path)

	rel, err := filepath.Rel(v.root, cleaned)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		v.logger.Warn("path escapes sandbox root", "path", path, "root", v.root)
		return "", NewError(op, path, ErrPathEscapesRoot)
	}

	limit := v.settings.MaxPathLength
	if isDir {
		limit = v.settings.DirectoryBudget()
	}

	canonical, err := v.canonicalize(rel, isDir)
	if err != nil {
		// The resolver may reject syntactically invalid input, but a raw
		// length already past the limit is the more precise diagnosis.
		if len(cleaned) > limit {
			return "", v.tooLong(op, path)
		}
		return "", NewError(op, path, fmt.Errorf("%w: %v", ErrInvalidPath, err))
	}

	if canonical != v.root && !strings.HasPrefix(canonical, v.root+string(filepath.Separator)) {
		v.logger.Warn("canonical path left sandbox root", "path", path, "canonical", canonical, "root", v.root)
		return "", NewError(op, path, ErrPathEscapesRoot)
	}

	if len(canonical) > limit {
		return "", v.tooLong(op, path)
	}
	if err := v.checkSegments(rel); err != nil {
		return "", NewError(op, path, err)
	}
	return canonical, nil
}

// canonicalize resolves rel through the resolver, reusing cached directory
// resolutions. File leaves are appended lexically onto their resolved parent
// since they do not exist yet.
func (v *Validator) canonicalize(rel string, isDir bool) (string, error) {
	dir := rel
	if !isDir {
		dir = filepath.Dir(rel)
	}
	canonical, ok := v.dirCache.Get(dir)
	if !ok {
		resolved, err := v.resolve(v.root, dir)
		if err != nil {
			return "", err
		}
		v.dirCache.Add(dir, resolved)
		canonical = resolved
	}
	if isDir {
		return canonical, nil
	}
	return filepath.Join(canonical, filepath.Base(rel)), nil
}

func (v *Validator) checkSegments(rel string) error {
	if rel == "." {
		return nil
	}
	for _, seg := range strings.Split(rel, string(filepath.Separator)) {
		if len(seg) > v.settings.MaxSegmentLength {
			return fmt.Errorf("%w: segment %q exceeds %d characters",
				ErrPathTooLong, seg, v.settings.MaxSegmentLength)
		}
	}
	return nil
}

func (v *Validator) tooLong(op, path string) error {
	if !v.settings.LongPathsEnabled {
		return NewError(op, path, fmt.Errorf(
			"%w: the path could be created but would be unreadable by most tools without long-path support (limit %d)",
			ErrPathTooLong, v.settings.MaxPathLength))
	}
	return NewError(op, path, fmt.Errorf(
		"%w: exceeds the configured hard limit of %d characters",
		ErrPathTooLong, v.settings.MaxPathLength))
}
