package config

import (
	"testing"

	"modbound/internal/errors"
)

const sampleConfig = `
source_roots = ["src"]
exclude = ["**/tests"]
root_module = "ignore"

[[modules]]
path = "core"
depends_on = []

[[modules]]
path = "core.db"
depends_on = ["core"]
utility = true

[[modules]]
path = "api"
depends_on = ["core", "core.db"]
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(cfg.Modules) != 3 {
		t.Fatalf("expected 3 modules, got %d", len(cfg.Modules))
	}
	if cfg.RootModule != RootModuleIgnore {
		t.Errorf("root_module = %q, want ignore", cfg.RootModule)
	}
	if len(cfg.SourceRoots) != 1 || cfg.SourceRoots[0] != "src" {
		t.Errorf("source_roots = %v, want [src]", cfg.SourceRoots)
	}

	db := cfg.Modules[1]
	if db.Path != "core.db" || !db.Utility {
		t.Errorf("core.db module not parsed correctly: %+v", db)
	}
	if got := db.DependencyPaths(); len(got) != 1 || got[0] != "core" {
		t.Errorf("core.db depends_on = %v, want [core]", got)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("[[modules]]\npath = \"a\"\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !cfg.IgnoreTypeCheckingImports {
		t.Error("ignore_type_checking_imports should default to true")
	}
	if cfg.RootModule != RootModuleAllow {
		t.Errorf("root_module should default to allow, got %q", cfg.RootModule)
	}
	if len(cfg.SourceRoots) != 1 || cfg.SourceRoots[0] != "." {
		t.Errorf("source_roots should default to [.], got %v", cfg.SourceRoots)
	}
	if len(cfg.Exclude) == 0 {
		t.Error("exclude should carry default patterns")
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("modulez = 3\n"))
	if err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
	if !errors.HasCode(err, errors.ParsingFailed) {
		t.Errorf("expected PARSING_FAILED, got %v", err)
	}
}

func TestParseRejectsBadRootModule(t *testing.T) {
	_, err := Parse([]byte("root_module = \"maybe\"\n"))
	if err == nil || !errors.HasCode(err, errors.ParsingFailed) {
		t.Errorf("expected PARSING_FAILED for bad root_module, got %v", err)
	}
}

func TestDependenciesForModuleFirstMatchWins(t *testing.T) {
	cfg := NewProjectConfig()
	cfg.Modules = []ModuleConfig{
		{Path: "a", DependsOn: []DependencyConfig{{Path: "b"}}},
	}
	domain := &LocatedDomainConfig{
		Path: "a",
		Config: DomainConfig{Modules: []ModuleConfig{
			{Path: ".", DependsOn: []DependencyConfig{{Path: "c"}}},
		}},
	}
	domain.resolve()
	cfg.AddDomain(domain)

	deps := cfg.DependenciesForModule("a")
	if len(deps) != 1 || deps[0].Path != "b" {
		t.Errorf("first (top-level) declaration should win, got %v", deps)
	}
}

func TestAllModulesOrdering(t *testing.T) {
	cfg := NewProjectConfig()
	cfg.Modules = []ModuleConfig{{Path: "top"}}
	domain := &LocatedDomainConfig{
		Path:   "dom",
		Config: DomainConfig{Modules: []ModuleConfig{{Path: "sub"}}},
	}
	domain.resolve()
	cfg.AddDomain(domain)

	all := cfg.AllModules()
	if len(all) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(all))
	}
	if all[0].Path != "top" {
		t.Errorf("top-level modules must come first, got %q", all[0].Path)
	}
	if all[1].Path != "dom.sub" {
		t.Errorf("domain module path should be resolved, got %q", all[1].Path)
	}
}

func TestSetModules(t *testing.T) {
	cfg := NewProjectConfig()
	cfg.Modules = []ModuleConfig{
		{Path: "a", DependsOn: []DependencyConfig{{Path: "b"}, {Path: "gone"}}, Utility: true},
		{Path: "b"},
		{Path: "gone"},
	}

	cfg.SetModules([]string{"a", "b", "fresh"})

	if len(cfg.Modules) != 3 {
		t.Fatalf("expected 3 modules, got %d", len(cfg.Modules))
	}
	a := cfg.Modules[0]
	if !a.Utility {
		t.Error("retained module should keep its configuration")
	}
	if got := a.DependencyPaths(); len(got) != 1 || got[0] != "b" {
		t.Errorf("edges outside the new set should be pruned, got %v", got)
	}
	if cfg.Modules[2].Path != "fresh" || len(cfg.Modules[2].DependsOn) != 0 {
		t.Errorf("new module should start empty, got %+v", cfg.Modules[2])
	}
}

func TestAddDependencyToModule(t *testing.T) {
	cfg := NewProjectConfig()
	cfg.Modules = []ModuleConfig{{Path: "a", DependsOn: []DependencyConfig{{Path: "b"}}}}

	cfg.AddDependencyToModule("a", DependencyConfig{Path: "b"})
	if got := cfg.Modules[0].DependencyPaths(); len(got) != 1 {
		t.Errorf("duplicate edge should not be added, got %v", got)
	}

	cfg.AddDependencyToModule("a", DependencyConfig{Path: "c"})
	if got := cfg.Modules[0].DependencyPaths(); len(got) != 2 || got[1] != "c" {
		t.Errorf("edge c should be appended, got %v", got)
	}

	cfg.AddDependencyToModule("new", DependencyConfig{Path: "a"})
	if len(cfg.Modules) != 2 || cfg.Modules[1].Path != "new" {
		t.Errorf("unknown module should be declared, got %+v", cfg.Modules)
	}
}

func TestWithDependenciesRemoved(t *testing.T) {
	cfg := NewProjectConfig()
	cfg.Modules = []ModuleConfig{{Path: "a", DependsOn: []DependencyConfig{{Path: "b"}}}}

	stripped := cfg.WithDependenciesRemoved()
	if len(stripped.Modules[0].DependsOn) != 0 {
		t.Error("copy should have no dependency edges")
	}
	if len(cfg.Modules[0].DependsOn) != 1 {
		t.Error("original must be untouched")
	}
}

func TestModPathRootSentinel(t *testing.T) {
	m := ModuleConfig{Path: RootModuleSentinel}
	if got := m.ModPath(); got != RootModulePath {
		t.Errorf("ModPath() = %q, want %q", got, RootModulePath)
	}
}

func TestDumpRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	reparsed, err := Parse(out)
	if err != nil {
		t.Fatalf("re-parsing dumped config failed: %v\n%s", err, out)
	}
	if len(reparsed.Modules) != len(cfg.Modules) {
		t.Errorf("module count changed across round trip: %d != %d", len(reparsed.Modules), len(cfg.Modules))
	}
	if reparsed.Modules[2].DependencyPaths()[1] != "core.db" {
		t.Errorf("dependency edges lost across round trip: %+v", reparsed.Modules[2])
	}
}
