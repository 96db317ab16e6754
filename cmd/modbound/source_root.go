package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourceRootCmd = &cobra.Command{
	Use:   "source-root",
	Short: "Edit the source_roots array in modbound.toml",
}

var sourceRootAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a source root",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, cfg := mustResolveProject()
		if err := cfg.AddSourceRoot(args[0]); err != nil {
			fail("queueing edit", err)
		}
		if err := cfg.ApplyEdits(); err != nil {
			fail("applying edits", err)
		}
		fmt.Println("Configuration updated.")
	},
}

var sourceRootRemoveCmd = &cobra.Command{
	Use:   "remove <path>",
	Short: "Remove a source root",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, cfg := mustResolveProject()
		if err := cfg.RemoveSourceRoot(args[0]); err != nil {
			fail("queueing edit", err)
		}
		if err := cfg.ApplyEdits(); err != nil {
			fail("applying edits", err)
		}
		fmt.Println("Configuration updated.")
	},
}

func init() {
	sourceRootCmd.AddCommand(sourceRootAddCmd, sourceRootRemoveCmd)
	rootCmd.AddCommand(sourceRootCmd)
}
