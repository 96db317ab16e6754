// Package check runs dependency extraction over a whole project: walking
// source roots, fanning file extraction out over a worker pool, and
// aggregating per-file results and failures.
package check

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"modbound/internal/cache"
	"modbound/internal/config"
	"modbound/internal/filesystem"
	"modbound/internal/logging"
	"modbound/internal/modules"
	"modbound/internal/processors"
)

// DependencyFact is one extracted dependency in serializable form.
type DependencyFact struct {
	Kind       string `json:"kind"`
	ModulePath string `json:"module_path"`
	ImportLine int    `json:"import_line"`
	AliasLine  int    `json:"alias_line"`
	Ignored    bool   `json:"ignored,omitempty"`
}

const (
	FactKindImport    = "import"
	FactKindReference = "reference"
)

// FileResult is the extraction outcome for one file.
type FileResult struct {
	FilePath   string           `json:"file_path"`
	ModulePath string           `json:"module_path"`
	Facts      []DependencyFact `json:"facts"`
}

// FileFailure records a per-file extraction error. Failures never abort the
// rest of a pass.
type FileFailure struct {
	FilePath string `json:"file_path"`
	Error    string `json:"error"`
}

// RunResult aggregates one checking pass.
type RunResult struct {
	RunID    string        `json:"run_id"`
	Files    []FileResult  `json:"files"`
	Failures []FileFailure `json:"failures,omitempty"`
}

// Runner drives extraction passes over shared read-only configuration.
type Runner struct {
	cfg         *config.ProjectConfig
	projectRoot string
	logger      *logging.Logger
	store       *cache.Store
	workers     int
}

// NewRunner builds a runner. store may be nil to disable caching.
func NewRunner(cfg *config.ProjectConfig, projectRoot string, logger *logging.Logger, store *cache.Store) *Runner {
	return &Runner{
		cfg:         cfg,
		projectRoot: projectRoot,
		logger:      logger,
		store:       store,
		workers:     runtime.NumCPU(),
	}
}

// SetWorkers overrides the worker pool size.
func (r *Runner) SetWorkers(n int) {
	if n > 0 {
		r.workers = n
	}
}

// CheckInternal extracts project-internal dependencies for every file under
// the configured source roots.
func (r *Runner) CheckInternal(ctx context.Context) (*RunResult, error) {
	sourceRoots := r.cfg.PrependRoots(r.projectRoot)
	tree, err := modules.Build(r.cfg)
	if err != nil {
		return nil, err
	}
	extractor := processors.NewInternalDependencyExtractor(sourceRoots, tree, r.cfg)
	return r.run(ctx, "internal", sourceRoots, extractor)
}

// CheckExternal extracts imports that do not resolve under any source root.
func (r *Runner) CheckExternal(ctx context.Context) (*RunResult, error) {
	sourceRoots := r.cfg.PrependRoots(r.projectRoot)
	extractor := processors.NewExternalDependencyExtractor(sourceRoots, r.cfg)
	return r.run(ctx, "external", sourceRoots, extractor)
}

func (r *Runner) run(ctx context.Context, pass string, sourceRoots []string, extractor processors.FileProcessor) (*RunResult, error) {
	runID := uuid.NewString()
	digest := r.configDigest()
	files, err := r.collectFiles(sourceRoots)
	if err != nil {
		return nil, err
	}
	r.logger.Info("starting check pass", map[string]interface{}{
		"run_id":  runID,
		"pass":    pass,
		"files":   len(files),
		"workers": r.workers,
	})

	result := &RunResult{RunID: runID}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, filePath := range files {
		filePath := filePath
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fileResult, err := r.processFile(pass, digest, extractor, filePath)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, FileFailure{FilePath: filePath, Error: err.Error()})
				return nil
			}
			result.Files = append(result.Files, *fileResult)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].FilePath < result.Files[j].FilePath
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].FilePath < result.Failures[j].FilePath
	})
	r.logger.Info("check pass finished", map[string]interface{}{
		"run_id":   runID,
		"pass":     pass,
		"files":    len(result.Files),
		"failures": len(result.Failures),
	})
	return result, nil
}

func (r *Runner) collectFiles(sourceRoots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, root := range sourceRoots {
		found, err := filesystem.WalkPythonFiles(root, r.cfg.Exclude)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// configDigest captures every configuration input that changes extraction
// output, so that edits like a new module or source root invalidate cached
// results even when the file bytes are unchanged.
func (r *Runner) configDigest() string {
	var b strings.Builder
	for _, m := range r.cfg.AllModules() {
		b.WriteString(m.ModPath())
		if m.Unchecked {
			b.WriteString("!")
		}
		b.WriteString(",")
	}
	b.WriteString(";")
	b.WriteString(strings.Join(r.cfg.SourceRoots, ","))
	b.WriteString(";")
	b.WriteString(strings.Join(r.cfg.Exclude, ","))
	b.WriteString(";")
	b.WriteString(string(r.cfg.RootModule))
	if r.cfg.Plugins.Django != nil {
		b.WriteString(";django=")
		b.WriteString(r.cfg.Plugins.Django.SettingsModule)
	}
	return b.String()
}

func (r *Runner) processFile(pass, digest string, extractor processors.FileProcessor, filePath string) (*FileResult, error) {
	var key string
	if r.store != nil {
		contents, err := filesystem.ReadFileContent(filePath)
		if err != nil {
			return nil, err
		}
		key = cache.Key(contents,
			pass,
			digest,
			fmt.Sprint(r.cfg.IgnoreTypeCheckingImports),
			fmt.Sprint(r.cfg.IncludeStringImports),
		)
		if payload, ok := r.store.Get(key); ok {
			var cached FileResult
			if err := json.Unmarshal(payload, &cached); err == nil {
				cached.FilePath = filePath
				return &cached, nil
			}
		}
	}

	fm, err := extractor.Process(filePath)
	if err != nil {
		return nil, err
	}
	result := fileResultFrom(fm)

	if r.store != nil {
		if payload, err := json.Marshal(result); err == nil {
			if err := r.store.Put(key, payload); err != nil {
				r.logger.Warn("cache write failed", map[string]interface{}{
					"file":  filePath,
					"error": err.Error(),
				})
			}
		}
	}
	return result, nil
}

func fileResultFrom(fm *processors.FileModule) *FileResult {
	result := &FileResult{
		FilePath:   fm.FilePath,
		ModulePath: fm.Module.Path,
		Facts:      []DependencyFact{},
	}
	for _, dep := range fm.Dependencies() {
		fact := DependencyFact{
			ModulePath: dep.ModulePath(),
			AliasLine:  fm.LineNumber(dep.Offset()),
			Ignored:    fm.IsIgnored(dep),
		}
		switch d := dep.(type) {
		case processors.ImportDependency:
			fact.Kind = FactKindImport
			fact.ImportLine = fm.LineNumber(d.Import.ImportOffset)
		case processors.ReferenceDependency:
			fact.Kind = FactKindReference
			fact.ImportLine = fact.AliasLine
		}
		result.Facts = append(result.Facts, fact)
	}
	return result
}

// RelativePath rewrites a result file path relative to the project root for
// display.
func (r *Runner) RelativePath(path string) string {
	if rel, err := filepath.Rel(r.projectRoot, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
