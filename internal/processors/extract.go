package processors

import (
	"modbound/internal/config"
	"modbound/internal/errors"
	"modbound/internal/filesystem"
	"modbound/internal/modules"
	"modbound/internal/parsing"
)

func moduleNotFound(modPath, filePath string) error {
	return errors.Newf(errors.ModuleNotFound, "no module resolves for path %q", modPath).WithFile(filePath)
}

// FileProcessor turns one file path into an extracted FileModule. Errors are
// per-file; a failed file never aborts the rest of a pass.
type FileProcessor interface {
	Process(filePath string) (*FileModule, error)
}

// InternalDependencyExtractor extracts project-internal dependencies: imports
// that resolve under a configured source root, plus framework references when
// a plugin is configured.
type InternalDependencyExtractor struct {
	sourceRoots   []string
	moduleTree    *modules.ModuleTree
	projectConfig *config.ProjectConfig
	django        *DjangoMetadata
}

// NewInternalDependencyExtractor builds an extractor over shared read-only
// state. The extractor itself is safe for concurrent use.
func NewInternalDependencyExtractor(sourceRoots []string, tree *modules.ModuleTree, cfg *config.ProjectConfig) *InternalDependencyExtractor {
	e := &InternalDependencyExtractor{
		sourceRoots:   sourceRoots,
		moduleTree:    tree,
		projectConfig: cfg,
	}
	if cfg.Plugins.Django != nil {
		e.django = NewDjangoMetadata(sourceRoots, cfg.Plugins.Django)
	}
	return e
}

func (e *InternalDependencyExtractor) Process(filePath string) (*FileModule, error) {
	modPath, err := filesystem.FileToModulePath(e.sourceRoots, filePath)
	if err != nil {
		return nil, err
	}
	module := e.moduleTree.FindNearest(modPath)
	if module == nil {
		return nil, moduleNotFound(modPath, filePath)
	}

	fileModule, err := NewFileModule(filePath, module)
	if err != nil {
		return nil, err
	}
	if module.IsUnchecked() {
		return fileModule, nil
	}
	if module.IsRoot && e.projectConfig.RootModule == config.RootModuleIgnore {
		return fileModule, nil
	}

	tree, err := parsing.ParseSource(fileModule.Contents())
	if err != nil {
		return nil, err
	}
	imports, err := GetNormalizedImportsFromTree(
		e.sourceRoots, filePath, tree, fileModule.Contents(),
		e.projectConfig.IgnoreTypeCheckingImports,
		e.projectConfig.IncludeStringImports,
	)
	if err != nil {
		return nil, err
	}

	var deps []Dependency
	for _, imp := range imports {
		if filesystem.IsProjectImport(e.sourceRoots, imp.ModulePath) {
			deps = append(deps, ImportDependency{Import: imp})
			continue
		}
		// directives anchored to imports outside this pass are consumed here
		fileModule.IgnoreDirectives.RemoveMatchingDirectives(fileModule.LineNumber(imp.ImportOffset))
	}

	if e.django != nil {
		for _, ref := range e.django.GetForeignKeyReferences(tree, fileModule.Contents()) {
			deps = append(deps, ReferenceDependency{Reference: ref})
		}
	}

	fileModule.ExtendDependencies(deps)
	return fileModule, nil
}

// ExternalDependencyExtractor extracts imports that do not resolve under any
// source root. It does not resolve files against the module tree.
type ExternalDependencyExtractor struct {
	sourceRoots   []string
	projectConfig *config.ProjectConfig
}

func NewExternalDependencyExtractor(sourceRoots []string, cfg *config.ProjectConfig) *ExternalDependencyExtractor {
	return &ExternalDependencyExtractor{sourceRoots: sourceRoots, projectConfig: cfg}
}

func (e *ExternalDependencyExtractor) Process(filePath string) (*FileModule, error) {
	fileModule, err := NewFileModule(filePath, modules.EmptyNode())
	if err != nil {
		return nil, err
	}
	// string imports never name external packages
	imports, err := GetNormalizedImports(
		e.sourceRoots, filePath, fileModule.Contents(),
		e.projectConfig.IgnoreTypeCheckingImports,
		false,
	)
	if err != nil {
		return nil, err
	}

	var deps []Dependency
	for _, imp := range imports {
		if !filesystem.IsProjectImport(e.sourceRoots, imp.ModulePath) {
			deps = append(deps, ImportDependency{Import: imp})
			continue
		}
		fileModule.IgnoreDirectives.RemoveMatchingDirectives(fileModule.LineNumber(imp.ImportOffset))
	}
	fileModule.ExtendDependencies(deps)
	return fileModule, nil
}
