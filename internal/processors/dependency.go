// Package processors turns parsed Python files into dependency facts: imports
// normalized to absolute module paths, framework references, and the ignore
// directives that suppress them.
package processors

// Dependency is one extracted fact tying a file to a module path.
type Dependency interface {
	// ModulePath is the absolute dotted path the dependency points at
	ModulePath() string
	// Offset is the byte offset used for line attribution
	Offset() uint32

	isDependency()
}

// ImportDependency wraps a normalized import statement.
type ImportDependency struct {
	Import NormalizedImport
}

func (d ImportDependency) ModulePath() string { return d.Import.ModulePath }
func (d ImportDependency) Offset() uint32     { return d.Import.AliasOffset }
func (d ImportDependency) isDependency()      {}

// ReferenceDependency wraps a source code reference contributed by a
// framework plugin.
type ReferenceDependency struct {
	Reference SourceCodeReference
}

func (d ReferenceDependency) ModulePath() string { return d.Reference.ModulePath }
func (d ReferenceDependency) Offset() uint32     { return d.Reference.Offset }
func (d ReferenceDependency) isDependency()      {}
