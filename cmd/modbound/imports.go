package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"modbound/internal/processors"
)

var importsExternal bool

var importsCmd = &cobra.Command{
	Use:   "imports <file>",
	Short: "List the normalized imports of one file",
	Long: `Normalize the imports of a single Python file and print them with their
line numbers. By default only project-internal imports are shown; use
--external for the inverse filter.`,
	Args: cobra.ExactArgs(1),
	Run:  runImports,
}

func init() {
	importsCmd.Flags().BoolVar(&importsExternal, "external", false, "Show external imports instead of project-internal ones")
	rootCmd.AddCommand(importsCmd)
}

// ImportsResponseCLI is the CLI response for the imports command.
type ImportsResponseCLI struct {
	FilePath string          `json:"filePath"`
	Kind     string          `json:"kind"`
	Imports  []LocatedImport `json:"imports"`
}

// LocatedImport is one import with its line attribution.
type LocatedImport struct {
	ModulePath string `json:"modulePath"`
	LineNumber int    `json:"lineNumber"`
	AliasLine  int    `json:"aliasLine"`
}

func runImports(cmd *cobra.Command, args []string) {
	projectRoot, cfg := mustResolveProject()
	s := mustLoadSettings(projectRoot)

	filePath, err := filepath.Abs(args[0])
	if err != nil {
		fail("resolving file path", err)
	}
	sourceRoots := cfg.PrependRoots(projectRoot)

	var located []processors.LocatedImport
	kind := "project"
	if importsExternal {
		kind = "external"
		located, err = processors.GetLocatedExternalImports(sourceRoots, filePath, cfg.IgnoreTypeCheckingImports)
	} else {
		located, err = processors.GetLocatedProjectImports(sourceRoots, filePath, cfg.IgnoreTypeCheckingImports, cfg.IncludeStringImports)
	}
	if err != nil {
		fail("normalizing imports", err)
	}

	resp := &ImportsResponseCLI{FilePath: args[0], Kind: kind, Imports: []LocatedImport{}}
	for _, imp := range located {
		resp.Imports = append(resp.Imports, LocatedImport{
			ModulePath: imp.ModulePath(),
			LineNumber: imp.ImportLineNumber,
			AliasLine:  imp.AliasLineNumber,
		})
	}
	printOutput(resp, outputFormat(s))
}
