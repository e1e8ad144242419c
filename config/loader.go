package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envPrefix is the prefix of every recognized environment override.
const envPrefix = "ILSPY_"

// LoadOptions configures configuration loading.
type LoadOptions struct {
	// SkipValidation disables validation after loading, for callers that
	// assemble a partial configuration and validate later.
	SkipValidation bool

	// EnvFile, when set, is a dotenv file loaded into the process
	// environment before overrides are read. A missing file is an error;
	// leave EnvFile empty to skip the step.
	EnvFile string

	// NoEnv disables environment overrides entirely.
	NoEnv bool
}

// Load reads the YAML settings file at path, applies environment overrides,
// and validates the result. A missing file is not an error: the defaults
// plus overrides are returned instead, so a settings file stays optional.
func Load(path string, opts LoadOptions) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	default:
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	if !opts.NoEnv {
		if opts.EnvFile != "" {
			if err := godotenv.Load(opts.EnvFile); err != nil {
				return Config{}, fmt.Errorf("config: load env file %q: %w", opts.EnvFile, err)
			}
		}
		if err := applyEnv(&cfg); err != nil {
			return Config{}, err
		}
	}

	if !opts.SkipValidation {
		if err := cfg.Validate(); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// applyEnv overlays ILSPY_* environment variables onto cfg. Unset variables
// leave the file's values untouched.
func applyEnv(cfg *Config) error {
	var err error

	setString(&cfg.Output.Dir, "OUTPUT_DIR")
	setString(&cfg.Output.RootNamespace, "ROOT_NAMESPACE")
	setString(&cfg.Output.Naming, "NAMING")
	setString(&cfg.Paths.LongPaths, "LONG_PATHS")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	err = errors.Join(err,
		setInt(&cfg.Output.MaxParallelism, "MAX_PARALLELISM"),
		setInt(&cfg.Paths.MaxPathLength, "MAX_PATH_LENGTH"),
		setInt(&cfg.Paths.MaxSegmentLength, "MAX_SEGMENT_LENGTH"),
		setBool(&cfg.Output.FlatNamespaces, "FLAT_NAMESPACES"),
	)
	return err
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s%s: %q is not an integer", envPrefix, key, v)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("config: %s%s: %q is not a boolean", envPrefix, key, v)
	}
	*dst = b
	return nil
}
