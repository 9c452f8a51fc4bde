// Package config loads sqlwhere settings from defaults, an optional config
// file, SQLWHERE_* environment variables and command-line flags, in rising
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix, e.g. SQLWHERE_DB.
const EnvPrefix = "SQLWHERE"

// Config holds settings shared by all commands.
type Config struct {
	// DB is the SQLite database path used by the query command.
	DB string `mapstructure:"db"`

	// Format is the output format: "text" or "json".
	Format string `mapstructure:"format"`

	// Verbose enables diagnostic output and debug logging.
	Verbose bool `mapstructure:"verbose"`

	// LogFormat selects the slog handler: "text" or "json".
	LogFormat string `mapstructure:"log_format"`
}

// ValidFormats defines the allowed output and log formats.
var ValidFormats = []string{"text", "json"}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":         "db",
	"format":     "format",
	"verbose":    "verbose",
	"log-format": "log_format",
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		DB:        "",
		Format:    "text",
		Verbose:   false,
		LogFormat: "text",
	}
}

// Load resolves the configuration.
//
// path names an optional config file (YAML, JSON or TOML, by extension);
// an empty path skips it, a missing file is an error. flags may be nil;
// flags set explicitly on the command line override every other source.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("db", def.DB)
	v.SetDefault("format", def.Format)
	v.SetDefault("verbose", def.Verbose)
	v.SetDefault("log_format", def.LogFormat)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range flagKeys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(ValidFormats, c.Format) {
		errs = append(errs, fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats))
	}
	if !slices.Contains(ValidFormats, c.LogFormat) {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of %v", c.LogFormat, ValidFormats))
	}
	return errors.Join(errs...)
}
