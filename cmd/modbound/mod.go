package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modbound/internal/config"
)

var modCmd = &cobra.Command{
	Use:   "mod",
	Short: "Edit module declarations in modbound.toml",
	Long: `Queue edits against the policy document and apply them in one batch.
Edits preserve the document's comments and entry order; either the whole
batch is written or nothing is.

Examples:
  modbound mod create billing.invoices
  modbound mod add-dep billing.invoices shared.db
  modbound mod mark-utility shared.logging`,
}

func init() {
	modCmd.AddCommand(
		modEditCmd("create <module>", "Declare a new module", func(cfg *config.ProjectConfig, args []string) error {
			return cfg.CreateModule(args[0])
		}, 1),
		modEditCmd("delete <module>", "Remove a module declaration", func(cfg *config.ProjectConfig, args []string) error {
			return cfg.DeleteModule(args[0])
		}, 1),
		modEditCmd("add-dep <module> <dependency>", "Add a dependency to a module", func(cfg *config.ProjectConfig, args []string) error {
			return cfg.AddDependency(args[0], args[1])
		}, 2),
		modEditCmd("remove-dep <module> <dependency>", "Remove a dependency from a module", func(cfg *config.ProjectConfig, args []string) error {
			return cfg.RemoveDependency(args[0], args[1])
		}, 2),
		modEditCmd("mark-utility <module>", "Mark a module as a utility", func(cfg *config.ProjectConfig, args []string) error {
			return cfg.MarkModuleAsUtility(args[0])
		}, 1),
		modEditCmd("unmark-utility <module>", "Clear a module's utility marker", func(cfg *config.ProjectConfig, args []string) error {
			return cfg.UnmarkModuleAsUtility(args[0])
		}, 1),
	)
	rootCmd.AddCommand(modCmd)
}

func modEditCmd(use, short string, enqueue func(*config.ProjectConfig, []string) error, nargs int) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		Run: func(cmd *cobra.Command, args []string) {
			_, cfg := mustResolveProject()
			if err := enqueue(cfg, args); err != nil {
				fail("queueing edit", err)
			}
			if err := cfg.ApplyEdits(); err != nil {
				fail("applying edits", err)
			}
			fmt.Println("Configuration updated.")
		},
	}
}
