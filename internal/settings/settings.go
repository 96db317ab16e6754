// Package settings loads tool settings from .modbound/settings.json. These
// are machine-local preferences (output format, logging, cache placement) and
// are separate from the modbound.toml policy document, which describes the
// project itself.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DirName is the per-project directory holding settings and the cache.
const DirName = ".modbound"

// Settings are machine-local tool preferences.
type Settings struct {
	OutputFormat string `json:"outputFormat" mapstructure:"outputFormat"`
	LogFormat    string `json:"logFormat" mapstructure:"logFormat"`
	LogLevel     string `json:"logLevel" mapstructure:"logLevel"`
	Workers      int    `json:"workers" mapstructure:"workers"`
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	return &Settings{
		OutputFormat: "human",
		LogFormat:    "human",
		LogLevel:     "info",
	}
}

// Load reads settings from <projectRoot>/.modbound/settings.json, falling
// back to defaults when the file is absent. Environment variables prefixed
// MODBOUND_ override file values.
func Load(projectRoot string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("outputFormat", "human")
	v.SetDefault("logFormat", "human")
	v.SetDefault("logLevel", "info")
	v.SetDefault("workers", 0)

	v.SetConfigName("settings")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, DirName))
	v.SetEnvPrefix("MODBOUND")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the settings to <projectRoot>/.modbound/settings.json.
func (s *Settings) Save(projectRoot string) error {
	dir := filepath.Join(projectRoot, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "settings.json"), data, 0o644)
}

// CacheDir returns the cache directory under the settings directory.
func CacheDir(projectRoot string) string {
	return filepath.Join(projectRoot, DirName, "cache")
}
