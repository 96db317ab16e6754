package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modbound/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate a deprecated modbound.yml to modbound.toml",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	start := projectRootFlag
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fail("resolving working directory", err)
		}
		start = cwd
	}

	yamlPath, found := config.LocateDeprecated(start)
	if !found {
		fmt.Fprintf(os.Stderr, "Error: no %s found in %s or any parent directory\n", config.DeprecatedConfigFileName, start)
		os.Exit(1)
	}

	_, tomlPath, err := config.MigrateDeprecatedConfig(yamlPath)
	if err != nil {
		fail("migrating config", err)
	}
	fmt.Printf("Migrated %s to %s\n", yamlPath, tomlPath)
}
