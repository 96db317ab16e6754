package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"modbound/internal/errors"
)

// DomainConfigFileName is the name of a domain policy document. A domain
// groups the modules under one directory and contributes them to the global
// module namespace; the domain root path is derived from where the file
// lives relative to its source root.
const DomainConfigFileName = "modbound.domain.toml"

// DomainConfig is the parsed body of a domain document. Module paths inside
// a domain are relative to the domain root; "." declares the root itself.
// Dependency targets are absolute.
type DomainConfig struct {
	Modules    []ModuleConfig    `toml:"modules"`
	Interfaces []InterfaceConfig `toml:"interfaces,omitempty"`
}

// LocatedDomainConfig is a domain document bound to its position in the
// project: its disk location and the absolute dotted path of its root.
type LocatedDomainConfig struct {
	Location string
	Path     string
	Config   DomainConfig

	resolvedModules []ModuleConfig
	pendingEdits    []ConfigEdit
}

// NewLocatedDomain binds a domain body to the absolute dotted path of its
// root, resolving module declarations to absolute paths
func NewLocatedDomain(rootPath string, cfg *DomainConfig) *LocatedDomainConfig {
	domain := &LocatedDomainConfig{Path: rootPath, Config: *cfg}
	domain.resolve()
	return domain
}

// ParseDomainFile loads a domain document. rootPath is the absolute dotted
// module path of the directory containing the file.
func ParseDomainFile(location, rootPath string) (*LocatedDomainConfig, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, errors.New(errors.FileReadError, "reading domain config", err)
	}

	var cfg DomainConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.New(errors.ParsingFailed, "invalid domain document", err)
	}

	domain := &LocatedDomainConfig{
		Location: location,
		Path:     rootPath,
		Config:   cfg,
	}
	domain.resolve()
	return domain, nil
}

// resolve materializes the domain's module declarations with absolute paths
func (d *LocatedDomainConfig) resolve() {
	d.resolvedModules = make([]ModuleConfig, len(d.Config.Modules))
	for i, m := range d.Config.Modules {
		resolved := m
		resolved.Path = d.absolutePath(m.Path)
		d.resolvedModules[i] = resolved
	}
}

// absolutePath maps a domain-relative module path to an absolute one
func (d *LocatedDomainConfig) absolutePath(rel string) string {
	if rel == RootModulePath || rel == "" {
		return d.Path
	}
	return d.Path + "." + rel
}

// Modules returns the domain's contributed modules with absolute paths
func (d *LocatedDomainConfig) Modules() []*ModuleConfig {
	out := make([]*ModuleConfig, 0, len(d.resolvedModules))
	for i := range d.resolvedModules {
		out = append(out, &d.resolvedModules[i])
	}
	return out
}

// Interfaces returns the domain's contributed interfaces
func (d *LocatedDomainConfig) Interfaces() []*InterfaceConfig {
	out := make([]*InterfaceConfig, 0, len(d.Config.Interfaces))
	for i := range d.Config.Interfaces {
		out = append(out, &d.Config.Interfaces[i])
	}
	return out
}

// owns reports whether an absolute module path falls inside this domain
func (d *LocatedDomainConfig) owns(path string) bool {
	return path == d.Path || strings.HasPrefix(path, d.Path+".")
}

// declares reports whether the domain declares the absolute module path
func (d *LocatedDomainConfig) declares(path string) bool {
	for i := range d.resolvedModules {
		if d.resolvedModules[i].Path == path {
			return true
		}
	}
	return false
}

// EnqueueEdit accepts an edit when it falls inside this domain. Source-root
// edits never belong to a domain.
func (d *LocatedDomainConfig) EnqueueEdit(edit ConfigEdit) error {
	switch e := edit.(type) {
	case CreateModule:
		if !d.owns(e.Path) {
			return errors.Newf(errors.EditNotApplicable, "module %q is outside domain %q", e.Path, d.Path)
		}
		if d.declares(e.Path) {
			return errors.Newf(errors.ModuleAlreadyExists, "module %q already exists in domain %q", e.Path, d.Path)
		}
	case DeleteModule, MarkModuleAsUtility, UnmarkModuleAsUtility, AddDependency, RemoveDependency:
		if !d.declares(editModulePath(edit)) {
			return errors.Newf(errors.EditNotApplicable, "module %q not declared by domain %q", editModulePath(edit), d.Path)
		}
	default:
		return errors.Newf(errors.EditNotApplicable, "edit does not apply to a domain")
	}
	d.pendingEdits = append(d.pendingEdits, edit)
	return nil
}

// ApplyEdits commits the domain's queued edits to its own document
func (d *LocatedDomainConfig) ApplyEdits() error {
	if len(d.pendingEdits) == 0 {
		return nil
	}
	if err := applyEditsToFile(d.Location, d.pendingEdits, d.Path); err != nil {
		return err
	}
	d.pendingEdits = nil
	return nil
}

// HasEdits reports whether the domain has queued edits
func (d *LocatedDomainConfig) HasEdits() bool {
	return len(d.pendingEdits) > 0
}

// DiscoverDomains walks the configured source roots looking for domain
// documents and attaches each to the project config. The dotted root path of
// a domain is its directory relative to the source root that contains it.
func DiscoverDomains(cfg *ProjectConfig, projectRoot string) error {
	for _, root := range cfg.PrependRoots(projectRoot) {
		err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
			if err != nil || entry.IsDir() || entry.Name() != DomainConfigFileName {
				return err
			}
			rel, relErr := filepath.Rel(root, filepath.Dir(path))
			if relErr != nil || rel == "." || strings.HasPrefix(rel, "..") {
				return nil
			}
			rootPath := strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
			domain, parseErr := ParseDomainFile(path, rootPath)
			if parseErr != nil {
				return parseErr
			}
			cfg.AddDomain(domain)
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
	}
	return nil
}
