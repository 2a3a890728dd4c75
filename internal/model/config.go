package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// AppName is used for the config directory, keyring service and log file.
const AppName = "fedinotify"

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// ToastSeconds is how long a transient status message stays visible.
	ToastSeconds int `mapstructure:"toast_seconds" yaml:"toast_seconds"`
}

// HTTPConfig controls the API client.
type HTTPConfig struct {
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	UserAgent  string `mapstructure:"user_agent" yaml:"user_agent"`
}

// LogConfig controls where and how verbosely the client logs.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// DatabaseConfig locates the SQLite file holding account profiles.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Account selects a saved profile by name or ID at startup. Empty
	// means the most recently used profile.
	Account string `mapstructure:"account" yaml:"account"`
}

// ConfigDir returns ~/.config/fedinotify, or the working directory when
// the home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultConfigPath returns the default path for the configuration file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		Display: DisplayConfig{
			ToastSeconds: 4,
		},
		HTTP: HTTPConfig{
			TimeoutSec: 30,
			UserAgent:  AppName,
		},
		Log: LogConfig{
			File:  filepath.Join(dir, AppName+".log"),
			Level: "info",
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dir, AppName+".db"),
		},
	}
}

// SetDefaults registers default values on v so missing keys resolve to
// the same values defaultAppConfig uses.
func SetDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("display.toast_seconds", d.Display.ToastSeconds)
	v.SetDefault("http.timeout_sec", d.HTTP.TimeoutSec)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("database.path", d.Database.Path)
}

// LoadConfig reads configuration from the given YAML file path into a
// fresh Viper instance. A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	return LoadConfigWith(v, path)
}

// LoadConfigWith is LoadConfig on a caller-provided Viper instance, so
// command-line flags already bound to v take precedence over the file.
func LoadConfigWith(v *viper.Viper, path string) (*AppConfig, error) {
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FEDINOTIFY")
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if _, ok := err.(*os.PathError); ok {
			return unmarshalConfig(v)
		}
		if errors.As(err, &notFound) {
			return unmarshalConfig(v)
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	return unmarshalConfig(v)
}

func unmarshalConfig(v *viper.Viper) (*AppConfig, error) {
	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Display.ToastSeconds <= 0 {
		cfg.Display.ToastSeconds = 4
	}
	if cfg.HTTP.TimeoutSec <= 0 {
		cfg.HTTP.TimeoutSec = 30
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("display", cfg.Display)
	v.Set("http", cfg.HTTP)
	v.Set("log", cfg.Log)
	v.Set("database", cfg.Database)
	if cfg.Account != "" {
		v.Set("account", cfg.Account)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
