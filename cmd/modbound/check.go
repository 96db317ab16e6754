package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"modbound/internal/check"
)

var checkWorkers int

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Extract project-internal dependencies for every file",
	Long: `Walk the configured source roots, attribute every Python file to its
nearest declared module and extract its project-internal dependencies.

Examples:
  modbound check
  modbound check --format json
  modbound check --workers 4`,
	Run: runCheck,
}

var checkExternalCmd = &cobra.Command{
	Use:   "check-external",
	Short: "Extract external (non-project) imports for every file",
	Run:   runCheckExternal,
}

func init() {
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0, "Worker pool size (default: number of CPUs)")
	checkExternalCmd.Flags().IntVar(&checkWorkers, "workers", 0, "Worker pool size (default: number of CPUs)")
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(checkExternalCmd)
}

// CheckResponseCLI is the CLI response for check passes.
type CheckResponseCLI struct {
	RunID      string              `json:"runId"`
	Pass       string              `json:"pass"`
	Files      []check.FileResult  `json:"files"`
	Failures   []check.FileFailure `json:"failures,omitempty"`
	DurationMs int64               `json:"durationMs"`
}

func runCheck(cmd *cobra.Command, args []string) {
	runCheckPass("internal")
}

func runCheckExternal(cmd *cobra.Command, args []string) {
	runCheckPass("external")
}

func runCheckPass(pass string) {
	start := time.Now()
	projectRoot, cfg := mustResolveProject()
	s := mustLoadSettings(projectRoot)
	logger := newLogger(s)

	store := openCacheStore(projectRoot, cfg, logger)
	if store != nil {
		defer store.Close()
	}

	runner := check.NewRunner(cfg, projectRoot, logger, store)
	if checkWorkers > 0 {
		runner.SetWorkers(checkWorkers)
	} else if s.Workers > 0 {
		runner.SetWorkers(s.Workers)
	}

	var result *check.RunResult
	var err error
	if pass == "external" {
		result, err = runner.CheckExternal(context.Background())
	} else {
		result, err = runner.CheckInternal(context.Background())
	}
	if err != nil {
		fail("running check pass", err)
	}

	for i := range result.Files {
		result.Files[i].FilePath = runner.RelativePath(result.Files[i].FilePath)
	}
	for i := range result.Failures {
		result.Failures[i].FilePath = runner.RelativePath(result.Failures[i].FilePath)
	}

	printOutput(&CheckResponseCLI{
		RunID:      result.RunID,
		Pass:       pass,
		Files:      result.Files,
		Failures:   result.Failures,
		DurationMs: time.Since(start).Milliseconds(),
	}, outputFormat(s))

	if len(result.Failures) > 0 {
		os.Exit(1)
	}
}
