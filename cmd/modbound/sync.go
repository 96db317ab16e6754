package main

import (
	"context"
	"sort"

	"github.com/spf13/cobra"

	"modbound/internal/check"
	"modbound/internal/config"
	"modbound/internal/modules"
)

var (
	syncPrune  bool
	syncDryRun bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Update declared dependencies to match extracted imports",
	Long: `Extract the actual import graph and queue edits bringing each module's
depends_on array in line with it: missing edges are added, and with --prune,
declared edges no file exercises are removed.

Examples:
  modbound sync
  modbound sync --prune
  modbound sync --dry-run`,
	Run: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncPrune, "prune", false, "Also remove declared dependencies no file exercises")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Report the edits without writing them")
	rootCmd.AddCommand(syncCmd)
}

// SyncEdge is one dependency edge in a sync report.
type SyncEdge struct {
	Module     string `json:"module"`
	Dependency string `json:"dependency"`
}

// SyncResponseCLI is the CLI response for sync.
type SyncResponseCLI struct {
	Added   []SyncEdge `json:"added"`
	Removed []SyncEdge `json:"removed"`
	Applied bool       `json:"applied"`
}

func runSync(cmd *cobra.Command, args []string) {
	projectRoot, cfg := mustResolveProject()
	s := mustLoadSettings(projectRoot)
	logger := newLogger(s)

	store := openCacheStore(projectRoot, cfg, logger)
	if store != nil {
		defer store.Close()
	}

	runner := check.NewRunner(cfg, projectRoot, logger, store)
	result, err := runner.CheckInternal(context.Background())
	if err != nil {
		fail("extracting dependencies", err)
	}

	tree, err := modules.Build(cfg)
	if err != nil {
		fail("building module tree", err)
	}

	detected := detectedConfig(cfg, tree, result)
	resp := &SyncResponseCLI{Added: []SyncEdge{}, Removed: []SyncEdge{}}

	// edges present in the extracted graph but not declared
	for _, missing := range cfg.CompareDependencies(detected) {
		for _, dep := range missing.Dependencies {
			if err := cfg.AddDependency(missing.Path, dep.Path); err != nil {
				fail("queueing dependency addition", err)
			}
			resp.Added = append(resp.Added, SyncEdge{Module: missing.Path, Dependency: dep.Path})
		}
	}

	// declared edges the extracted graph never exercises
	if syncPrune {
		for _, unused := range detected.CompareDependencies(cfg) {
			for _, dep := range unused.Dependencies {
				if err := cfg.RemoveDependency(unused.Path, dep.Path); err != nil {
					fail("queueing dependency removal", err)
				}
				resp.Removed = append(resp.Removed, SyncEdge{Module: unused.Path, Dependency: dep.Path})
			}
		}
	}

	if !syncDryRun && (len(resp.Added) > 0 || len(resp.Removed) > 0) {
		if err := cfg.ApplyEdits(); err != nil {
			fail("applying edits", err)
		}
		resp.Applied = true
	}
	printOutput(resp, outputFormat(s))
}

// detectedConfig builds an in-memory config whose depends_on arrays reflect
// the extracted import graph. Each fact's target is attributed to its nearest
// declared module; self-edges and suppressed facts are dropped.
func detectedConfig(cfg *config.ProjectConfig, tree *modules.ModuleTree, result *check.RunResult) *config.ProjectConfig {
	edges := make(map[string]map[string]bool)
	for _, file := range result.Files {
		for _, fact := range file.Facts {
			if fact.Ignored {
				continue
			}
			target := tree.FindNearest(fact.ModulePath)
			if target == nil || target.Path == file.ModulePath {
				continue
			}
			if edges[file.ModulePath] == nil {
				edges[file.ModulePath] = make(map[string]bool)
			}
			edges[file.ModulePath][target.Path] = true
		}
	}

	detected := config.NewProjectConfig()
	for _, mod := range cfg.AllModules() {
		moduleConfig := config.ModuleConfig{Path: mod.Path}
		targets := make([]string, 0, len(edges[mod.ModPath()]))
		for target := range edges[mod.ModPath()] {
			targets = append(targets, target)
		}
		sort.Strings(targets)
		for _, target := range targets {
			moduleConfig.DependsOn = append(moduleConfig.DependsOn, config.DependencyConfig{Path: target})
		}
		detected.Modules = append(detected.Modules, moduleConfig)
	}
	return detected
}
