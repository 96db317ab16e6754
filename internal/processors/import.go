package processors

import (
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"modbound/internal/errors"
	"modbound/internal/filesystem"
	"modbound/internal/parsing"
)

// NormalizedImport is one bound name reduced to an absolute module path.
// ImportOffset is the byte offset of the statement; AliasOffset is the offset
// of the specific bound name, which differs when one statement binds several.
type NormalizedImport struct {
	ModulePath   string
	ImportOffset uint32
	AliasOffset  uint32
}

// LocatedImport pairs a normalized import with its 1-based line numbers.
type LocatedImport struct {
	Import           NormalizedImport
	ImportLineNumber int
	AliasLineNumber  int
}

// ModulePath returns the import's absolute dotted path
func (l LocatedImport) ModulePath() string {
	return l.Import.ModulePath
}

// GetNormalizedImports parses contents and normalizes every import in it.
func GetNormalizedImports(sourceRoots []string, filePath string, contents []byte, ignoreTypeChecking, includeStringImports bool) ([]NormalizedImport, error) {
	root, err := parsing.ParseSource(contents)
	if err != nil {
		return nil, err
	}
	return GetNormalizedImportsFromTree(sourceRoots, filePath, root, contents, ignoreTypeChecking, includeStringImports)
}

// GetNormalizedImportsFromTree normalizes every import in an already parsed
// tree. Relative imports are resolved against the file's own module path;
// an import reaching above the source root fails the whole file. When
// ignoreTypeChecking is set, imports guarded by a type-checking-only
// conditional are skipped. When includeStringImports is set, string literals
// shaped like dotted module paths are emitted as imports too.
func GetNormalizedImportsFromTree(sourceRoots []string, filePath string, root *sitter.Node, contents []byte, ignoreTypeChecking, includeStringImports bool) ([]NormalizedImport, error) {
	v := &importVisitor{
		sourceRoots:       sourceRoots,
		filePath:          filePath,
		source:            contents,
		skipTypeChecking:  ignoreTypeChecking,
		emitStringImports: includeStringImports,
	}
	v.walk(root)
	if v.err != nil {
		return nil, v.err
	}
	return v.imports, nil
}

type importVisitor struct {
	sourceRoots       []string
	filePath          string
	source            []byte
	skipTypeChecking  bool
	emitStringImports bool

	imports []NormalizedImport
	err     error
}

func (v *importVisitor) walk(node *sitter.Node) {
	if v.err != nil {
		return
	}
	switch node.Type() {
	case "import_statement":
		v.visitImport(node)
		return
	case "import_from_statement":
		v.visitImportFrom(node)
		return
	case "if_statement":
		if v.skipTypeChecking && isTypeCheckingGuard(node, v.source) {
			// the guarded block is skipped, elif/else branches are not
			for i := 0; i < int(node.NamedChildCount()); i++ {
				child := node.NamedChild(i)
				if child.Type() == "elif_clause" || child.Type() == "else_clause" {
					v.walk(child)
				}
			}
			return
		}
	case "string":
		if v.emitStringImports {
			v.visitString(node)
		}
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		v.walk(node.NamedChild(i))
	}
}

func (v *importVisitor) visitImport(node *sitter.Node) {
	stmtStart := node.StartByte()
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			v.add(parsing.NodeContent(child, v.source), stmtStart, child.StartByte())
		case "aliased_import":
			name := child.ChildByFieldName("name")
			if name != nil {
				v.add(parsing.NodeContent(name, v.source), stmtStart, name.StartByte())
			}
		}
	}
}

func (v *importVisitor) visitImportFrom(node *sitter.Node) {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}
	base, err := v.resolveBase(moduleNode)
	if err != nil {
		v.err = err
		return
	}
	stmtStart := node.StartByte()
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if sameRange(child, moduleNode) {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			v.add(joinModule(base, parsing.NodeContent(child, v.source)), stmtStart, child.StartByte())
		case "aliased_import":
			name := child.ChildByFieldName("name")
			if name != nil {
				v.add(joinModule(base, parsing.NodeContent(name, v.source)), stmtStart, name.StartByte())
			}
		case "wildcard_import":
			v.add(base, stmtStart, child.StartByte())
		}
	}
}

// resolveBase turns the from-clause into an absolute dotted prefix, resolving
// leading dots against the file's own module path.
func (v *importVisitor) resolveBase(moduleNode *sitter.Node) (string, error) {
	text := parsing.NodeContent(moduleNode, v.source)
	if moduleNode.Type() != "relative_import" {
		return text, nil
	}
	level := 0
	for level < len(text) && text[level] == '.' {
		level++
	}
	base, err := v.relativeBase(level)
	if err != nil {
		return "", err
	}
	return joinModule(base, text[level:]), nil
}

// relativeBase resolves `level` leading dots to the dotted path of the
// containing package. One dot names the file's own package; each further dot
// climbs one package up.
func (v *importVisitor) relativeBase(level int) (string, error) {
	modPath, err := filesystem.FileToModulePath(v.sourceRoots, v.filePath)
	if err != nil {
		return "", err
	}
	var parts []string
	if modPath != "." {
		parts = strings.Split(modPath, ".")
	}
	// a plain module's package is its parent; an __init__ file already maps
	// to the package itself
	if filepath.Base(v.filePath) != "__init__.py" && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	drop := level - 1
	if drop > len(parts) {
		return "", errors.Newf(errors.RelativeImportEscapesRoot, "relative import with %d dots escapes the source root", level).WithFile(v.filePath)
	}
	return strings.Join(parts[:len(parts)-drop], "."), nil
}

var modulePathLiteralRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)+$`)

func (v *importVisitor) visitString(node *sitter.Node) {
	inner, ok := stringLiteralBody(parsing.NodeContent(node, v.source))
	if !ok {
		return
	}
	if modulePathLiteralRe.MatchString(inner) {
		v.add(inner, node.StartByte(), node.StartByte())
	}
}

func (v *importVisitor) add(modulePath string, importOffset, aliasOffset uint32) {
	v.imports = append(v.imports, NormalizedImport{
		ModulePath:   modulePath,
		ImportOffset: importOffset,
		AliasOffset:  aliasOffset,
	})
}

// stringLiteralBody strips the quotes from a plain string literal. Prefixed
// literals (f-strings, byte strings, raw strings) are not module references.
func stringLiteralBody(literal string) (string, bool) {
	for _, quote := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(literal, quote) && strings.HasSuffix(literal, quote) && len(literal) >= 2*len(quote) {
			return literal[len(quote) : len(literal)-len(quote)], true
		}
	}
	return "", false
}

func joinModule(base, suffix string) string {
	if base == "" {
		return suffix
	}
	if suffix == "" {
		return base
	}
	return base + "." + suffix
}

func isTypeCheckingGuard(node *sitter.Node, source []byte) bool {
	condition := node.ChildByFieldName("condition")
	if condition == nil {
		return false
	}
	text := parsing.NodeContent(condition, source)
	return text == "TYPE_CHECKING" || strings.HasSuffix(text, ".TYPE_CHECKING")
}

func sameRange(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
