package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"modbound/internal/errors"
)

// DeprecatedConfigFileName is the YAML config format from early releases.
// It is parsed only to migrate projects to modbound.toml.
const DeprecatedConfigFileName = "modbound.yml"

type deprecatedModule struct {
	Path      string                 `yaml:"path"`
	DependsOn []deprecatedDependency `yaml:"depends_on"`
	Utility   bool                   `yaml:"utility"`
	Unchecked bool                   `yaml:"unchecked"`
}

// deprecatedDependency accepts both the plain-string and the {path, deprecated}
// forms that appeared over the YAML format's lifetime
type deprecatedDependency struct {
	Path       string
	Deprecated bool
}

func (d *deprecatedDependency) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		d.Path = value.Value
		return nil
	}
	var full struct {
		Path       string `yaml:"path"`
		Deprecated bool   `yaml:"deprecated"`
	}
	if err := value.Decode(&full); err != nil {
		return err
	}
	d.Path = full.Path
	d.Deprecated = full.Deprecated
	return nil
}

type deprecatedConfig struct {
	Modules []deprecatedModule `yaml:"modules"`
	Exclude []string           `yaml:"exclude"`
	// The singular source_root predates source_roots
	SourceRoot                string   `yaml:"source_root"`
	SourceRoots               []string `yaml:"source_roots"`
	RootModule                string   `yaml:"root_module"`
	IgnoreTypeCheckingImports *bool    `yaml:"ignore_type_checking_imports"`
}

// ParseDeprecatedYAML parses a deprecated YAML config into the current model
func ParseDeprecatedYAML(data []byte) (*ProjectConfig, error) {
	var old deprecatedConfig
	if err := yaml.Unmarshal(data, &old); err != nil {
		return nil, errors.New(errors.ParsingFailed, "invalid deprecated YAML config", err)
	}

	cfg := NewProjectConfig()
	for _, m := range old.Modules {
		mod := ModuleConfig{
			Path:      m.Path,
			Utility:   m.Utility,
			Unchecked: m.Unchecked,
		}
		for _, dep := range m.DependsOn {
			mod.DependsOn = append(mod.DependsOn, DependencyConfig{Path: dep.Path, Deprecated: dep.Deprecated})
		}
		cfg.Modules = append(cfg.Modules, mod)
	}
	if len(old.Exclude) > 0 {
		cfg.Exclude = old.Exclude
	}
	switch {
	case len(old.SourceRoots) > 0:
		cfg.SourceRoots = old.SourceRoots
	case old.SourceRoot != "":
		cfg.SourceRoots = []string{old.SourceRoot}
	}
	if old.RootModule != "" {
		cfg.RootModule = RootModuleTreatment(old.RootModule)
	}
	if old.IgnoreTypeCheckingImports != nil {
		cfg.IgnoreTypeCheckingImports = *old.IgnoreTypeCheckingImports
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LocateDeprecated finds a deprecated YAML config in root or any ancestor
func LocateDeprecated(root string) (string, bool) {
	dir, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, DeprecatedConfigFileName)
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

// MigrateDeprecatedConfig converts a YAML config to modbound.toml next to
// it, deletes the YAML file, and returns the migrated config bound to the
// new location
func MigrateDeprecatedConfig(yamlPath string) (*ProjectConfig, string, error) {
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, "", errors.New(errors.FileReadError, fmt.Sprintf("reading %s", yamlPath), err)
	}

	cfg, err := ParseDeprecatedYAML(data)
	if err != nil {
		return nil, "", err
	}

	out, err := Dump(cfg)
	if err != nil {
		return nil, "", err
	}

	tomlPath := strings.TrimSuffix(yamlPath, filepath.Ext(yamlPath)) + ".toml"
	if err := os.WriteFile(tomlPath, out, 0o644); err != nil {
		return nil, "", errors.New(errors.DiskWriteFailed, fmt.Sprintf("writing %s", tomlPath), err)
	}
	if err := os.Remove(yamlPath); err != nil {
		return nil, "", errors.New(errors.DiskWriteFailed, fmt.Sprintf("removing %s", yamlPath), err)
	}

	cfg.SetLocation(tomlPath)
	return cfg, tomlPath, nil
}
