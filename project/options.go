package project

import (
	"log/slog"
	"runtime"

	"github.com/avengerx/ilspy/pathsafe"
	"github.com/avengerx/ilspy/platform"
)

// Progress reports forward motion of an emission run. Reports are advisory:
// a slow consumer causes reports to be dropped, never the run to stall.
type Progress struct {
	// Total is the number of file groups the run will emit.
	Total int

	// Done is the number of groups finished so far.
	Done int

	// Label names the group that just finished, as a root-relative path.
	Label string
}

// ProgressFunc consumes progress reports. It runs on a dedicated goroutine
// and must not block indefinitely.
type ProgressFunc func(Progress)

// Options configures an emission run.
type Options struct {
	// MaxParallelism bounds the number of concurrent decompilation workers.
	// Zero means one worker per available CPU.
	MaxParallelism int

	// FlatNamespaces keeps each namespace as a single directory named after
	// the full dotted namespace instead of one nested directory per
	// namespace part.
	FlatNamespaces bool

	// RootNamespace is stripped from the front of namespaces before they
	// become nested directories, so the module's own namespace does not
	// wrap the whole tree.
	RootNamespace string

	// Settings are the path limits to enforce. The zero value means
	// auto-detect from the host.
	Settings platform.Settings

	// Naming selects the target filesystem's name-sanitization rules.
	Naming pathsafe.Naming

	// Logger receives structured diagnostics.
	Logger *slog.Logger

	// Progress, when set, receives per-group completion reports.
	Progress ProgressFunc

	// Writer produces the project descriptor file.
	Writer ProjectWriter
}

// Option mutates an Options value.
type Option func(*Options)

// WithMaxParallelism bounds concurrent decompilation workers. Values below
// one restore the default.
func WithMaxParallelism(n int) Option {
	return func(o *Options) { o.MaxParallelism = n }
}

// WithFlatNamespaces emits one directory per full dotted namespace instead
// of a nested tree.
func WithFlatNamespaces() Option {
	return func(o *Options) { o.FlatNamespaces = true }
}

// WithRootNamespace sets the namespace prefix stripped before namespaces are
// mapped to nested directories.
func WithRootNamespace(ns string) Option {
	return func(o *Options) { o.RootNamespace = ns }
}

// WithPlatformSettings overrides the auto-detected path limits.
func WithPlatformSettings(s platform.Settings) Option {
	return func(o *Options) { o.Settings = s }
}

// WithNaming overrides the host-derived name-sanitization rules.
func WithNaming(n pathsafe.Naming) Option {
	return func(o *Options) { o.Naming = n }
}

// WithLogger sets the structured logger for the run.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithProgress registers a progress consumer.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Options) { o.Progress = fn }
}

// WithProjectWriter replaces the default C# project-file writer.
func WithProjectWriter(w ProjectWriter) Option {
	return func(o *Options) { o.Writer = w }
}

func newOptions(opts ...Option) Options {
	o := Options{
		Naming: pathsafe.HostNaming(),
		Logger: slog.Default(),
		Writer: NewCSharpProjectWriter(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxParallelism < 1 {
		o.MaxParallelism = runtime.GOMAXPROCS(0)
	}
	if o.Settings == (platform.Settings{}) {
		o.Settings = platform.Detect()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Writer == nil {
		o.Writer = NewCSharpProjectWriter()
	}
	return o
}
