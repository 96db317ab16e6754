package processors

import (
	"modbound/internal/filesystem"
	"modbound/internal/lineindex"
	"modbound/internal/modules"
)

// FileModule is the result of extracting one file: the file's owning module,
// its ordered dependency facts and the ignore directives found in it.
type FileModule struct {
	FilePath         string
	Module           *modules.ModuleNode
	IgnoreDirectives *IgnoreDirectives

	contents     []byte
	lines        *lineindex.Index
	dependencies []Dependency
}

// NewFileModule reads the file and builds its line index and directive set.
func NewFileModule(filePath string, module *modules.ModuleNode) (*FileModule, error) {
	contents, err := filesystem.ReadFileContent(filePath)
	if err != nil {
		return nil, err
	}
	return &FileModule{
		FilePath:         filePath,
		Module:           module,
		IgnoreDirectives: GetIgnoreDirectives(contents),
		contents:         contents,
		lines:            lineindex.New(contents),
	}, nil
}

// Contents returns the raw file bytes
func (f *FileModule) Contents() []byte {
	return f.contents
}

// LineNumber maps a byte offset to its 1-based line number
func (f *FileModule) LineNumber(offset uint32) int {
	return f.lines.LineNumber(int(offset))
}

// ExtendDependencies appends dependency facts, preserving source order
func (f *FileModule) ExtendDependencies(deps []Dependency) {
	f.dependencies = append(f.dependencies, deps...)
}

// Dependencies returns the ordered extracted facts
func (f *FileModule) Dependencies() []Dependency {
	return f.dependencies
}

// IsIgnored reports whether a dependency is suppressed by a directive.
// Directives anchor to the import statement line, not the alias line.
func (f *FileModule) IsIgnored(dep Dependency) bool {
	line := f.LineNumber(dep.Offset())
	if imp, ok := dep.(ImportDependency); ok {
		line = f.LineNumber(imp.Import.ImportOffset)
	}
	return f.IgnoreDirectives.IsIgnored(line, dep.ModulePath())
}
