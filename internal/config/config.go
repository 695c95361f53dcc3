// Package config holds the settings of the command line tools. Settings are layered:
// defaults, then a YAML or TOML file, then command line flags.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"

	"go.uber.org/zap"
)

// Config is the root configuration.
type Config struct {
	Loader  LoaderConfig  `yaml:"loader" toml:"loader"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// LoaderConfig configures the glTF file loader.
type LoaderConfig struct {
	Workers               int      `yaml:"workers" toml:"workers"`
	QueueSize             int      `yaml:"queue_size" toml:"queue_size"`
	IdleTimeout           Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	FetchTimeout          Duration `yaml:"fetch_timeout" toml:"fetch_timeout"`
	ComputeMissingNormals bool     `yaml:"compute_missing_normals" toml:"compute_missing_normals"`
	ConvertToLeftHanded   bool     `yaml:"convert_to_left_handed" toml:"convert_to_left_handed"`
	AutoStartAnimations   bool     `yaml:"auto_start_animations" toml:"auto_start_animations"`
	DisabledExtensions    []string `yaml:"disabled_extensions" toml:"disabled_extensions"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Duration is a time.Duration read from and written as text such as "30s".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file or flag overrides a value.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			Workers:               runtime.NumCPU(),
			QueueSize:             256,
			IdleTimeout:           Duration(time.Second),
			FetchTimeout:          Duration(30 * time.Second),
			ComputeMissingNormals: true,
			AutoStartAnimations:   true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Loader.Workers < 0:
		return fmt.Errorf("loader.workers must not be negative, got %d", c.Loader.Workers)
	case c.Loader.QueueSize < 0:
		return fmt.Errorf("loader.queue_size must not be negative, got %d", c.Loader.QueueSize)
	case c.Loader.IdleTimeout < 0:
		return fmt.Errorf("loader.idle_timeout must not be negative")
	case c.Loader.FetchTimeout < 0:
		return fmt.Errorf("loader.fetch_timeout must not be negative")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}

// LoaderOptions converts the loader settings into FileLoader options.
//
// Parameters:
//   - log: the logger handed to the loader
//
// Returns:
//   - []loader.FileLoaderBuilderOption: options for loader.NewFileLoader
func (c *Config) LoaderOptions(log *zap.Logger) []loader.FileLoaderBuilderOption {
	lc := c.Loader
	opts := []loader.FileLoaderBuilderOption{
		loader.WithLogger(log),
		loader.WithFetcher(loader.NewDefaultFetcher(time.Duration(lc.FetchTimeout))),
		loader.WithWorkers(lc.Workers),
		loader.WithQueueSize(lc.QueueSize),
		loader.WithIdleTimeout(time.Duration(lc.IdleTimeout)),
		loader.WithComputeMissingNormals(lc.ComputeMissingNormals),
		loader.WithConvertToLeftHanded(lc.ConvertToLeftHanded),
		loader.WithAutoStartAnimations(lc.AutoStartAnimations),
	}
	if len(lc.DisabledExtensions) > 0 {
		opts = append(opts, loader.WithDisabledExtensions(lc.DisabledExtensions...))
	}
	return opts
}
