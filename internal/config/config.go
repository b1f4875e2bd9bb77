// Package config loads client settings from ~/.todo/config.yaml, the
// project's .todo/config.yaml and TODO_* environment variables, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	dirName  = ".todo"
	fileName = "config.yaml"

	DefaultBaseURL = "http://localhost:3000"
	DefaultTheme   = "classic"
)

// Themes are the accepted values of theme; the list output has a palette for each.
var Themes = []string{"classic", "plain"}

// Config is the merged client configuration.
type Config struct {
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	Token         string        `yaml:"token,omitempty" mapstructure:"token"`
	Theme         string        `yaml:"theme" mapstructure:"theme"`
	LogFile       string        `yaml:"log_file,omitempty" mapstructure:"log_file"`
	Timeout       time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	ShowCompleted bool          `yaml:"show_completed" mapstructure:"show_completed"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("token", "")
	v.SetDefault("theme", DefaultTheme)
	v.SetDefault("log_file", "")
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("show_completed", false)
}

// Load merges the global and project config files with the environment.
// Missing files are not an error.
func Load() (*Config, error) {
	return LoadFrom(GlobalConfigPath(), ProjectConfigPath())
}

// LoadFrom is Load with explicit file paths; later files override earlier ones.
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("TODO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := mergeFile(v, p); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("config: timeout must not be negative, got %s", cfg.Timeout)
	}
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	if cfg.Theme == "" {
		cfg.Theme = DefaultTheme
	}
	if !slices.Contains(Themes, cfg.Theme) {
		return nil, fmt.Errorf("config: unknown theme %q (want one of %s)", cfg.Theme, strings.Join(Themes, ", "))
	}
	return &cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := v.MergeConfig(f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// GlobalConfigPath returns the path to the per-user config file.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, dirName, fileName)
}

// ProjectConfigPath returns the path to the config file in the working directory.
func ProjectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, dirName, fileName)
}

// Dir returns ~/.todo, where credentials and logs live.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, dirName), nil
}
