// Package config loads appshortcuts settings from defaults, an optional
// YAML file, a local .env file and APPSHORTCUTS_* environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "appshortcuts"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "appshortcuts"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"
	// EnvPrefix prefixes every environment variable override.
	EnvPrefix = "APPSHORTCUTS"
	// DefaultEnvFile is loaded from the working directory when present.
	DefaultEnvFile = ".env"
)

// maxWorkers bounds the enumeration worker pool
const maxWorkers = 256

// Config holds every setting of the tool
type Config struct {
	PackagesDir string         `mapstructure:"packages_dir"`
	Workers     int            `mapstructure:"workers"`
	Log         LogConfig      `mapstructure:"log"`
	Output      OutputConfig   `mapstructure:"output"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Security    SecurityConfig `mapstructure:"security"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// OutputConfig configures command output
type OutputConfig struct {
	Format string `mapstructure:"format"` // text or json
}

// CacheConfig sizes the resource caches
type CacheConfig struct {
	TableEntries  int `mapstructure:"table_entries"`
	StringEntries int `mapstructure:"string_entries"`
}

// SecurityConfig configures package integrity checks
type SecurityConfig struct {
	Keyring          string `mapstructure:"keyring"`
	RequireSignature bool   `mapstructure:"require_signature"`
	VerifyChecksums  bool   `mapstructure:"verify_checksums"`
}

// LoadOptions overrides where configuration is read from
type LoadOptions struct {
	// ConfigFilePath is used exclusively when set (--config).
	ConfigFilePath string
	// ConfigDirPath replaces ConfigDir() in the search path.
	ConfigDirPath string
	// EnvFile replaces DefaultEnvFile. A missing explicit file is an error.
	EnvFile string
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		PackagesDir: "packages",
		Workers:     4,
		Log:         LogConfig{Level: "info", Format: "json"},
		Output:      OutputConfig{Format: "text"},
		Cache:       CacheConfig{TableEntries: 32, StringEntries: 256},
		Security:    SecurityConfig{VerifyChecksums: true},
	}
}

// ConfigDir returns $XDG_CONFIG_HOME/appshortcuts, defaulting to ~/.config/appshortcuts
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, AppName), nil
}

// Load reads the configuration and validates it. It also returns the config
// file that was used, or "" when only defaults and the environment applied.
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, "", err
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFilePath != "" {
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config file %s: %w", opts.ConfigFilePath, err)
		}
	} else {
		cfgDir := opts.ConfigDirPath
		if cfgDir == "" {
			dir, err := ConfigDir()
			if err != nil {
				return nil, "", err
			}
			cfgDir = dir
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(cfgDir)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, "", fmt.Errorf("failed to read config file: %w", err)
			}
			// If no config file found, use defaults (no error)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, v.ConfigFileUsed(), nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("packages_dir", defaults.PackagesDir)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("cache.table_entries", defaults.Cache.TableEntries)
	v.SetDefault("cache.string_entries", defaults.Cache.StringEntries)
	v.SetDefault("security.keyring", defaults.Security.Keyring)
	v.SetDefault("security.require_signature", defaults.Security.RequireSignature)
	v.SetDefault("security.verify_checksums", defaults.Security.VerifyChecksums)
}

// loadEnvFile exports the variables of a dotenv file. Variables already set
// in the environment are kept.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the tool cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.PackagesDir == "" {
		errs = append(errs, errors.New("packages_dir must not be empty"))
	}
	if c.Workers < 1 || c.Workers > maxWorkers {
		errs = append(errs, fmt.Errorf("workers must be between 1 and %d, got %d", maxWorkers, c.Workers))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	if c.Output.Format != "text" && c.Output.Format != "json" {
		errs = append(errs, fmt.Errorf("output.format must be text or json, got %q", c.Output.Format))
	}
	if c.Cache.TableEntries < 1 {
		errs = append(errs, fmt.Errorf("cache.table_entries must be positive, got %d", c.Cache.TableEntries))
	}
	if c.Cache.StringEntries < 1 {
		errs = append(errs, fmt.Errorf("cache.string_entries must be positive, got %d", c.Cache.StringEntries))
	}
	if c.Security.RequireSignature && c.Security.Keyring == "" {
		errs = append(errs, errors.New("security.require_signature needs security.keyring"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
