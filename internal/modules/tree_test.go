package modules

import (
	"testing"

	"modbound/internal/config"
	"modbound/internal/errors"
)

func buildTree(t *testing.T, rootTreatment config.RootModuleTreatment, paths ...string) *ModuleTree {
	t.Helper()
	cfg := config.NewProjectConfig()
	cfg.RootModule = rootTreatment
	for _, p := range paths {
		cfg.Modules = append(cfg.Modules, config.ModuleConfig{Path: p})
	}
	tree, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return tree
}

func TestFindNearestLongestPrefix(t *testing.T) {
	tree := buildTree(t, config.RootModuleAllow, "a", "a.b", "a.b.c")

	tests := []struct {
		query string
		want  string
	}{
		{"a", "a"},
		{"a.b", "a.b"},
		{"a.b.c", "a.b.c"},
		{"a.b.c.d", "a.b.c"},
		{"a.b.x", "a.b"},
		{"a.x", "a"},
		{"a.x.y", "a"},
		{"z", config.RootModulePath},
		{config.RootModulePath, config.RootModulePath},
	}
	for _, tt := range tests {
		node := tree.FindNearest(tt.query)
		if node == nil {
			t.Errorf("FindNearest(%q) = nil, want %q", tt.query, tt.want)
			continue
		}
		if node.Path != tt.want {
			t.Errorf("FindNearest(%q) = %q, want %q", tt.query, node.Path, tt.want)
		}
	}
}

func TestFindNearestNoRootWhenIgnored(t *testing.T) {
	tree := buildTree(t, config.RootModuleIgnore, "a")

	if node := tree.FindNearest("z"); node != nil {
		t.Errorf("FindNearest(%q) = %+v, want nil", "z", node)
	}
	if node := tree.FindNearest("a.b"); node == nil || node.Path != "a" {
		t.Errorf("FindNearest(%q) = %+v, want a", "a.b", node)
	}
}

func TestGetExactOnly(t *testing.T) {
	tree := buildTree(t, config.RootModuleAllow, "a.b")

	if node := tree.Get("a.b"); node == nil || node.Path != "a.b" {
		t.Fatalf("Get(a.b) = %+v, want declared node", node)
	}
	// "a" exists only as an interior node
	if node := tree.Get("a"); node != nil {
		t.Errorf("Get(a) = %+v, want nil", node)
	}
	if node := tree.Get("a.b.c"); node != nil {
		t.Errorf("Get(a.b.c) = %+v, want nil", node)
	}
}

func TestDuplicateDeclarationRejected(t *testing.T) {
	cfg := config.NewProjectConfig()
	cfg.Modules = []config.ModuleConfig{{Path: "a.b"}, {Path: "a.b"}}

	_, err := Build(cfg)
	if !errors.HasCode(err, errors.DuplicateModule) {
		t.Fatalf("Build() error = %v, want DuplicateModule", err)
	}
}

func TestRootSentinelDeclaration(t *testing.T) {
	tree := buildTree(t, config.RootModuleAllow, config.RootModuleSentinel)

	node := tree.Get(config.RootModulePath)
	if node == nil || !node.IsRoot {
		t.Fatalf("Get(root) = %+v, want root node", node)
	}
	if node.Config == nil {
		t.Fatal("root node has no declaring config")
	}
}

func TestDomainModulesJoinTree(t *testing.T) {
	cfg := config.NewProjectConfig()
	cfg.Modules = []config.ModuleConfig{{Path: "core"}}

	domain := &config.DomainConfig{Modules: []config.ModuleConfig{{Path: "api"}}}
	located := config.NewLocatedDomain("pkg", domain)
	cfg.AddDomain(located)

	tree, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if node := tree.Get("pkg.api"); node == nil {
		t.Fatal("domain module pkg.api not in tree")
	}
}

func TestUncheckedAndUtilityFlags(t *testing.T) {
	cfg := config.NewProjectConfig()
	cfg.Modules = []config.ModuleConfig{
		{Path: "skip", Unchecked: true},
		{Path: "util", Utility: true},
	}
	tree, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !tree.Get("skip").IsUnchecked() {
		t.Error("skip should be unchecked")
	}
	if !tree.Get("util").IsUtility() {
		t.Error("util should be a utility")
	}
	if EmptyNode().IsUnchecked() {
		t.Error("empty node should never be unchecked")
	}
}
