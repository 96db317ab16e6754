package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"modbound/internal/errors"
)

// ConfigFileName is the name of the project policy document
const ConfigFileName = "modbound.toml"

// Parse decodes a modbound.toml document. Unknown fields are rejected so
// typos in the policy document surface instead of silently disabling checks.
func Parse(data []byte) (*ProjectConfig, error) {
	cfg := NewProjectConfig()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.New(errors.ParsingFailed, "invalid config document", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseFile loads and decodes the policy document at the given path,
// recording the path as the config's disk location
func ParseFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ConfigDoesNotExist, fmt.Sprintf("no config at %s", path), err)
		}
		return nil, errors.New(errors.FileReadError, fmt.Sprintf("reading %s", path), err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.SetLocation(path)
	return cfg, nil
}

// Locate finds the policy document in root or any ancestor directory
func Locate(root string) (string, bool) {
	dir, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Dump serializes the in-memory config to TOML. Dump does not preserve
// comments; the edit subsystem is responsible for format-preserving writes
// to an existing document.
func Dump(cfg *ProjectConfig) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.New(errors.InternalError, "serializing config", err)
	}
	return data, nil
}

func validate(cfg *ProjectConfig) error {
	switch cfg.RootModule {
	case RootModuleAllow, RootModuleIgnore, RootModuleForbid:
	default:
		return errors.Newf(errors.ParsingFailed, "invalid root_module treatment %q", cfg.RootModule)
	}
	if len(cfg.SourceRoots) == 0 {
		return errors.Newf(errors.ParsingFailed, "source_roots must not be empty")
	}
	if cfg.Cache.Backend != "" && cfg.Cache.Backend != "disk" && cfg.Cache.Backend != "none" {
		return errors.Newf(errors.ParsingFailed, "invalid cache backend %q", cfg.Cache.Backend)
	}
	return nil
}
