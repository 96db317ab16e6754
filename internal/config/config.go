// Package config models the modbound.toml policy document: the declared
// modules, their allowed dependencies, domains, interfaces and project-wide
// switches. It also implements the queued, format-preserving edit subsystem
// that mutates the document on disk.
package config

import "path/filepath"

// RootModuleSentinel is the path used to declare configuration for the
// implicit project-root module.
const RootModuleSentinel = "<root>"

// RootModulePath is the resolved module path of the project root.
const RootModulePath = "."

// DependencyConfig is one dependency edge target. In the TOML document edges
// are plain strings; the deprecated flag survives only in memory (it is
// carried over from deprecated YAML configs during migration).
type DependencyConfig struct {
	Path       string
	Deprecated bool
}

// UnmarshalText decodes a dependency edge from its string form
func (d *DependencyConfig) UnmarshalText(text []byte) error {
	d.Path = string(text)
	return nil
}

// MarshalText encodes a dependency edge to its string form
func (d DependencyConfig) MarshalText() ([]byte, error) {
	return []byte(d.Path), nil
}

// ModuleConfig is the declared configuration for a single module
type ModuleConfig struct {
	Path       string             `toml:"path"`
	DependsOn  []DependencyConfig `toml:"depends_on"`
	Visibility []string           `toml:"visibility,omitempty"`
	Utility    bool               `toml:"utility,omitempty"`
	Unchecked  bool               `toml:"unchecked,omitempty"`
}

// ModPath returns the resolved module path, mapping the root sentinel to "."
func (m *ModuleConfig) ModPath() string {
	if m.Path == RootModuleSentinel {
		return RootModulePath
	}
	return m.Path
}

// DependencyPaths returns the edge target paths in declaration order
func (m *ModuleConfig) DependencyPaths() []string {
	paths := make([]string, 0, len(m.DependsOn))
	for _, dep := range m.DependsOn {
		paths = append(paths, dep.Path)
	}
	return paths
}

// HasDependency reports whether the module declares an edge to the given path
func (m *ModuleConfig) HasDependency(path string) bool {
	for _, dep := range m.DependsOn {
		if dep.Path == path {
			return true
		}
	}
	return false
}

// InterfaceConfig declares the public interface of one or more modules
type InterfaceConfig struct {
	Expose []string `toml:"expose"`
	From   []string `toml:"from,omitempty"`
}

// RootModuleTreatment controls how the implicit root module is checked
type RootModuleTreatment string

const (
	// RootModuleAllow checks the root module like any other module
	RootModuleAllow RootModuleTreatment = "allow"
	// RootModuleIgnore excludes the root module from checking entirely
	RootModuleIgnore RootModuleTreatment = "ignore"
	// RootModuleForbid rejects dependencies on the root module
	RootModuleForbid RootModuleTreatment = "forbid"
)

// CacheConfig configures the extraction cache
type CacheConfig struct {
	// Backend is "disk" or "none"
	Backend string `toml:"backend,omitempty"`
	// MaxEntries bounds the in-memory cache tier
	MaxEntries int `toml:"max_entries,omitempty"`
}

// Enabled reports whether the cache should be used
func (c CacheConfig) Enabled() bool {
	return c.Backend != "none"
}

// DjangoConfig configures the Django foreign-key reference plugin
type DjangoConfig struct {
	SettingsModule string `toml:"settings_module,omitempty"`
}

// PluginsConfig holds optional framework plugins
type PluginsConfig struct {
	Django *DjangoConfig `toml:"django,omitempty"`
}

// ProjectConfig is the parsed modbound.toml document plus runtime state:
// located domains, the pending edit queue and the document's disk location
type ProjectConfig struct {
	Modules                    []ModuleConfig      `toml:"modules"`
	Interfaces                 []InterfaceConfig   `toml:"interfaces,omitempty"`
	Exclude                    []string            `toml:"exclude,omitempty"`
	SourceRoots                []string            `toml:"source_roots"`
	RootModule                 RootModuleTreatment `toml:"root_module,omitempty"`
	IgnoreTypeCheckingImports  bool                `toml:"ignore_type_checking_imports,omitempty"`
	IncludeStringImports       bool                `toml:"include_string_imports,omitempty"`
	ForbidCircularDependencies bool                `toml:"forbid_circular_dependencies,omitempty"`
	Cache                      CacheConfig         `toml:"cache,omitempty"`
	Plugins                    PluginsConfig       `toml:"plugins,omitempty"`

	domains      []*LocatedDomainConfig
	pendingEdits []ConfigEdit
	location     string
}

// DefaultExcludePaths are glob patterns excluded from checking by default
var DefaultExcludePaths = []string{
	"**/tests",
	"**/docs",
	"**/*__pycache__",
	"**/*egg-info",
	"**/venv",
}

// NewProjectConfig returns a ProjectConfig with defaults applied
func NewProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Exclude:                   append([]string(nil), DefaultExcludePaths...),
		SourceRoots:               []string{"."},
		RootModule:                RootModuleAllow,
		IgnoreTypeCheckingImports: true,
		Cache:                     CacheConfig{Backend: "disk"},
	}
}

// SetLocation records where the config document lives on disk
func (c *ProjectConfig) SetLocation(location string) {
	c.location = location
}

// Location returns the on-disk path of the config document, or "" if the
// config was never loaded from disk
func (c *ProjectConfig) Location() string {
	return c.location
}

// AddDomain attaches a located domain to the project
func (c *ProjectConfig) AddDomain(domain *LocatedDomainConfig) {
	c.domains = append(c.domains, domain)
}

// Domains returns the attached domains
func (c *ProjectConfig) Domains() []*LocatedDomainConfig {
	return c.domains
}

// AllModules returns every declared module: top-level declarations first,
// then each domain's contributions in attachment order. The ordering is
// significant; lookups like DependenciesForModule return the first match.
func (c *ProjectConfig) AllModules() []*ModuleConfig {
	all := make([]*ModuleConfig, 0, len(c.Modules))
	for i := range c.Modules {
		all = append(all, &c.Modules[i])
	}
	for _, domain := range c.domains {
		all = append(all, domain.Modules()...)
	}
	return all
}

// AllInterfaces returns every declared interface, top-level first
func (c *ProjectConfig) AllInterfaces() []*InterfaceConfig {
	all := make([]*InterfaceConfig, 0, len(c.Interfaces))
	for i := range c.Interfaces {
		all = append(all, &c.Interfaces[i])
	}
	for _, domain := range c.domains {
		all = append(all, domain.Interfaces()...)
	}
	return all
}

// ModulePaths returns the paths of every declared module
func (c *ProjectConfig) ModulePaths() []string {
	var paths []string
	for _, m := range c.AllModules() {
		paths = append(paths, m.Path)
	}
	return paths
}

// UtilityPaths returns the paths of every utility module
func (c *ProjectConfig) UtilityPaths() []string {
	var paths []string
	for _, m := range c.AllModules() {
		if m.Utility {
			paths = append(paths, m.Path)
		}
	}
	return paths
}

// DependenciesForModule returns the declared dependency edges of the first
// module matching the given path, or nil if the module is not declared
func (c *ProjectConfig) DependenciesForModule(path string) []DependencyConfig {
	for _, m := range c.AllModules() {
		if m.Path == path {
			return m.DependsOn
		}
	}
	return nil
}

// PrependRoots resolves the configured source roots against the project root
func (c *ProjectConfig) PrependRoots(projectRoot string) []string {
	roots := make([]string, 0, len(c.SourceRoots))
	for _, root := range c.SourceRoots {
		if root == "." {
			roots = append(roots, projectRoot)
		} else {
			roots = append(roots, filepath.Join(projectRoot, root))
		}
	}
	return roots
}

// WithDependenciesRemoved returns a copy of the config whose top-level
// modules keep their declarations but drop all dependency edges
func (c *ProjectConfig) WithDependenciesRemoved() *ProjectConfig {
	clone := *c
	clone.Modules = make([]ModuleConfig, len(c.Modules))
	copy(clone.Modules, c.Modules)
	for i := range clone.Modules {
		if clone.Modules[i].DependsOn != nil {
			clone.Modules[i].DependsOn = []DependencyConfig{}
		}
	}
	return &clone
}

// SetModules replaces the top-level module set with the given paths,
// preserving existing configuration for retained modules and pruning
// dependency edges that point outside the new set
func (c *ProjectConfig) SetModules(modulePaths []string) {
	keep := make(map[string]bool, len(modulePaths))
	for _, path := range modulePaths {
		keep[path] = true
	}

	original := make(map[string]ModuleConfig, len(c.Modules))
	for _, m := range c.Modules {
		original[m.Path] = m
	}

	newModules := make([]ModuleConfig, 0, len(modulePaths))
	for _, path := range modulePaths {
		if m, ok := original[path]; ok {
			if m.DependsOn != nil {
				retained := m.DependsOn[:0:0]
				for _, dep := range m.DependsOn {
					if keep[dep.Path] {
						retained = append(retained, dep)
					}
				}
				m.DependsOn = retained
			}
			newModules = append(newModules, m)
		} else {
			newModules = append(newModules, ModuleConfig{Path: path})
		}
	}
	c.Modules = newModules
}

// MarkUtilities sets the utility flag on exactly the given module paths
func (c *ProjectConfig) MarkUtilities(utilityPaths []string) {
	utility := make(map[string]bool, len(utilityPaths))
	for _, path := range utilityPaths {
		utility[path] = true
	}
	for i := range c.Modules {
		c.Modules[i].Utility = utility[c.Modules[i].Path]
	}
}

// AddDependencyToModule adds a dependency edge to the in-memory model,
// declaring the module if needed. Duplicate edges are not added.
func (c *ProjectConfig) AddDependencyToModule(module string, dependency DependencyConfig) {
	for i := range c.Modules {
		if c.Modules[i].Path != module {
			continue
		}
		if !c.Modules[i].HasDependency(dependency.Path) {
			c.Modules[i].DependsOn = append(c.Modules[i].DependsOn, dependency)
		}
		return
	}
	c.Modules = append(c.Modules, ModuleConfig{
		Path:      module,
		DependsOn: []DependencyConfig{dependency},
	})
}
