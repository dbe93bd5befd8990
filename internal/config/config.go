// Package config loads impress settings from defaults, an optional
// impress.yaml, IMPRESS_* environment variables and command-line overrides,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file base name searched for without extension.
const FileName = "impress"

// EnvPrefix prefixes environment overrides, e.g. IMPRESS_BASE_URL.
const EnvPrefix = "IMPRESS"

// Formats accepted by the format setting.
var Formats = []string{"text", "md", "json", "yaml"}

// Config is the resolved configuration.
type Config struct {
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	StateDir string        `mapstructure:"state_dir" yaml:"state_dir" json:"state_dir"`
	Format   string        `mapstructure:"format" yaml:"format" json:"format"`
	UserID   int64         `mapstructure:"user_id" yaml:"user_id" json:"user_id"`
	LogLevel string        `mapstructure:"log_level" yaml:"log_level" json:"log_level"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-" json:"file,omitempty"`
}

// Options controls Load.
type Options struct {
	// File, when set, is read instead of searching for impress.yaml. It must exist.
	File string
	// Overrides take precedence over every other source. Keys are the
	// mapstructure names, e.g. "base_url".
	Overrides map[string]any
}

// DefaultStateDir returns $XDG_CONFIG_HOME/impress, falling back to
// ~/.config/impress.
func DefaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "impress")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "impress")
	}
	return ".impress"
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	v := viper.New()

	v.SetDefault("base_url", "http://localhost:5000")
	v.SetDefault("timeout", "2m")
	v.SetDefault("state_dir", DefaultStateDir())
	v.SetDefault("format", "text")
	v.SetDefault("user_id", 0)
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, ok := opts.Overrides["state_dir"].(string); ok && dir != "" {
			v.AddConfigPath(dir)
		} else {
			v.AddConfigPath(v.GetString("state_dir"))
		}
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https, got: %s", cfg.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url must include a host, got: %s", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %s", cfg.Timeout)
	}
	if !isFormat(cfg.Format) {
		return fmt.Errorf("format must be one of %s, got: %s", strings.Join(Formats, ", "), cfg.Format)
	}
	if cfg.StateDir == "" {
		return errors.New("state_dir must not be empty")
	}
	if cfg.UserID < 0 {
		return fmt.Errorf("user_id must not be negative, got: %d", cfg.UserID)
	}
	return nil
}

func isFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}
