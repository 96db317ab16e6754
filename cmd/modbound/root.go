package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"modbound/internal/cache"
	"modbound/internal/config"
	"modbound/internal/logging"
	"modbound/internal/settings"
	"modbound/internal/version"
)

var (
	projectRootFlag string
	formatFlag      string
	logLevelFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "modbound",
	Short: "modbound - module dependency checker for Python projects",
	Long: `modbound statically checks the import graph of a Python project against
the module boundaries declared in modbound.toml: which modules exist, what each
may depend on, and which directories are source roots.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("modbound version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&projectRootFlag, "project-root", "",
		"Project root directory (default: walk up from the working directory)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "",
		"Output format: json or human (default from settings)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error (default from settings)")
}

func fail(message string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, err)
	os.Exit(1)
}

// mustResolveProject locates and parses the policy document, attaching any
// domain documents found under the source roots.
func mustResolveProject() (string, *config.ProjectConfig) {
	start := projectRootFlag
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fail("resolving working directory", err)
		}
		start = cwd
	}

	location, found := config.Locate(start)
	if !found {
		if _, deprecated := config.LocateDeprecated(start); deprecated {
			fmt.Fprintln(os.Stderr, "Error: found a deprecated modbound.yml; run `modbound migrate` first")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: no %s found in %s or any parent directory\n", config.ConfigFileName, start)
		os.Exit(1)
	}

	cfg, err := config.ParseFile(location)
	if err != nil {
		fail("loading config", err)
	}
	projectRoot := filepath.Dir(location)
	if err := config.DiscoverDomains(cfg, projectRoot); err != nil {
		fail("discovering domains", err)
	}
	return projectRoot, cfg
}

func mustLoadSettings(projectRoot string) *settings.Settings {
	s, err := settings.Load(projectRoot)
	if err != nil {
		fail("loading settings", err)
	}
	return s
}

func newLogger(s *settings.Settings) *logging.Logger {
	level := s.LogLevel
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(s.LogFormat),
		Level:  logging.LogLevel(level),
	})
}

func outputFormat(s *settings.Settings) OutputFormat {
	if formatFlag != "" {
		return OutputFormat(formatFlag)
	}
	return OutputFormat(s.OutputFormat)
}

// openCacheStore returns a cache store when caching is enabled, else nil.
func openCacheStore(projectRoot string, cfg *config.ProjectConfig, logger *logging.Logger) *cache.Store {
	if !cfg.Cache.Enabled() {
		return nil
	}
	store, err := cache.Open(settings.CacheDir(projectRoot), cfg.Cache.MaxEntries)
	if err != nil {
		logger.Warn("cache unavailable, continuing without it", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return store
}

func printOutput(resp interface{}, format OutputFormat) {
	output, err := FormatResponse(resp, format)
	if err != nil {
		fail("formatting output", err)
	}
	fmt.Println(output)
}
