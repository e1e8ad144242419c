// Package config loads emission settings for a decompilation run from a
// YAML file, layered with environment variable overrides. It converts the
// validated settings into the option values the project package consumes,
// so a command-line front end never assembles options by hand.
//
// # Basic Usage
//
//	cfg, err := config.Load("ilspy.yaml", config.LoadOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts := cfg.ProjectOptions()
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/avengerx/ilspy/pathsafe"
	"github.com/avengerx/ilspy/platform"
	"github.com/avengerx/ilspy/project"
)

// Recognized enumeration values.
const (
	NamingHost    = "host"
	NamingWindows = "windows"
	NamingUnix    = "unix"

	LongPathsAuto = "auto"
	LongPathsOn   = "on"
	LongPathsOff  = "off"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is the root of the emission settings file.
type Config struct {
	Output OutputConfig `yaml:"output"`
	Paths  PathsConfig  `yaml:"paths"`
	Log    LogConfig    `yaml:"log"`
}

// OutputConfig shapes the emitted project tree.
type OutputConfig struct {
	// Dir is the target directory the project is emitted into.
	Dir string `yaml:"dir"`

	// MaxParallelism bounds concurrent decompilation workers; zero means
	// one worker per CPU.
	MaxParallelism int `yaml:"max_parallelism"`

	// FlatNamespaces emits one directory per full dotted namespace.
	FlatNamespaces bool `yaml:"flat_namespaces"`

	// RootNamespace is stripped from namespaces before they become nested
	// directories. Empty means use each module's own root namespace.
	RootNamespace string `yaml:"root_namespace"`

	// Naming selects the name-sanitization rules: "host", "windows", or
	// "unix".
	Naming string `yaml:"naming"`
}

// PathsConfig overrides the auto-detected path limits.
type PathsConfig struct {
	// LongPaths is "auto" to probe the host, or "on"/"off" to force the
	// long-path assumption.
	LongPaths string `yaml:"long_paths"`

	// MaxPathLength caps total emitted path length; zero keeps the value
	// implied by LongPaths.
	MaxPathLength int `yaml:"max_path_length"`

	// MaxSegmentLength caps a single path segment; zero keeps the default.
	MaxSegmentLength int `yaml:"max_segment_length"`
}

// LogConfig shapes diagnostic output.
type LogConfig struct {
	// Level is a slog level name: "debug", "info", "warn", or "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Default returns the settings used when no file and no overrides are
// present.
func Default() Config {
	return Config{
		Output: OutputConfig{Naming: NamingHost},
		Paths:  PathsConfig{LongPaths: LongPathsAuto},
		Log:    LogConfig{Level: "info", Format: LogFormatText},
	}
}

// PlatformSettings resolves the configured path limits into concrete
// platform settings.
func (c Config) PlatformSettings() platform.Settings {
	var s platform.Settings
	switch c.Paths.LongPaths {
	case LongPathsOn:
		s = platform.Settings{
			LongPathsEnabled: true,
			MaxPathLength:    platform.WindowsLongMaxPath,
			MaxSegmentLength: platform.MaxSegment,
		}
	case LongPathsOff:
		s = platform.Conservative()
	default:
		s = platform.Detect()
	}
	if c.Paths.MaxPathLength > 0 {
		s.MaxPathLength = c.Paths.MaxPathLength
	}
	if c.Paths.MaxSegmentLength > 0 {
		s.MaxSegmentLength = c.Paths.MaxSegmentLength
	}
	return s
}

// NamingRules resolves the configured naming mode.
func (c Config) NamingRules() pathsafe.Naming {
	switch c.Output.Naming {
	case NamingWindows:
		return pathsafe.WindowsNaming()
	case NamingUnix:
		return pathsafe.UnixNaming()
	default:
		return pathsafe.HostNaming()
	}
}

// Logger builds the structured logger the configuration describes, writing
// to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.logLevel()}
	if c.Log.Format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c Config) logLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ProjectOptions converts the configuration into emission options. The
// logger writes to stderr; callers needing a different sink can append
// project.WithLogger afterwards, later options win.
func (c Config) ProjectOptions() []project.Option {
	opts := []project.Option{
		project.WithPlatformSettings(c.PlatformSettings()),
		project.WithNaming(c.NamingRules()),
		project.WithLogger(c.Logger(os.Stderr)),
	}
	if c.Output.MaxParallelism > 0 {
		opts = append(opts, project.WithMaxParallelism(c.Output.MaxParallelism))
	}
	if c.Output.FlatNamespaces {
		opts = append(opts, project.WithFlatNamespaces())
	}
	if c.Output.RootNamespace != "" {
		opts = append(opts, project.WithRootNamespace(c.Output.RootNamespace))
	}
	return opts
}

// Validate checks enumeration fields and numeric ranges, reporting every
// problem at once.
func (c Config) Validate() error {
	var problems []string

	switch c.Output.Naming {
	case "", NamingHost, NamingWindows, NamingUnix:
	default:
		problems = append(problems, fmt.Sprintf(
			"output.naming: unknown value %q (want %s, %s, or %s)",
			c.Output.Naming, NamingHost, NamingWindows, NamingUnix))
	}
	if c.Output.MaxParallelism < 0 {
		problems = append(problems, "output.max_parallelism: must not be negative")
	}

	switch c.Paths.LongPaths {
	case "", LongPathsAuto, LongPathsOn, LongPathsOff:
	default:
		problems = append(problems, fmt.Sprintf(
			"paths.long_paths: unknown value %q (want %s, %s, or %s)",
			c.Paths.LongPaths, LongPathsAuto, LongPathsOn, LongPathsOff))
	}
	if c.Paths.MaxPathLength < 0 {
		problems = append(problems, "paths.max_path_length: must not be negative")
	}
	if c.Paths.MaxSegmentLength < 0 {
		problems = append(problems, "paths.max_segment_length: must not be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level: unknown value %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "", LogFormatText, LogFormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("log.format: unknown value %q", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: invalid settings:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}
