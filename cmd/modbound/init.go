package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"modbound/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter modbound.toml in the current directory",
	Long: `Write a modbound.toml with defaults, declaring a module for each
top-level Python package found in the working directory.`,
	Run: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing modbound.toml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	dir := projectRootFlag
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fail("resolving working directory", err)
		}
		dir = cwd
	}

	target := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(target); err == nil && !initForce {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", target)
		os.Exit(1)
	}

	cfg := config.NewProjectConfig()
	for _, pkg := range topLevelPackages(dir) {
		cfg.Modules = append(cfg.Modules, config.ModuleConfig{Path: pkg})
	}

	data, err := config.Dump(cfg)
	if err != nil {
		fail("serializing config", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		fail("writing config", err)
	}
	fmt.Printf("Created %s with %d modules.\n", target, len(cfg.Modules))
}

// topLevelPackages lists directories directly under dir that contain an
// __init__.py
func topLevelPackages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var pkgs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, entry.Name(), "__init__.py")); err == nil {
			pkgs = append(pkgs, entry.Name())
		}
	}
	sort.Strings(pkgs)
	return pkgs
}
