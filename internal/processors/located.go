package processors

import (
	"modbound/internal/filesystem"
	"modbound/internal/lineindex"
)

// GetLocatedProjectImports reads a file and returns its project-internal
// imports with 1-based line numbers, directives already applied.
func GetLocatedProjectImports(sourceRoots []string, filePath string, ignoreTypeChecking, includeStringImports bool) ([]LocatedImport, error) {
	return locatedImports(sourceRoots, filePath, ignoreTypeChecking, includeStringImports, true)
}

// GetLocatedExternalImports is the inverse filter: imports that do not
// resolve under any source root. String-import mode never applies here.
func GetLocatedExternalImports(sourceRoots []string, filePath string, ignoreTypeChecking bool) ([]LocatedImport, error) {
	return locatedImports(sourceRoots, filePath, ignoreTypeChecking, false, false)
}

func locatedImports(sourceRoots []string, filePath string, ignoreTypeChecking, includeStringImports, wantProject bool) ([]LocatedImport, error) {
	contents, err := filesystem.ReadFileContent(filePath)
	if err != nil {
		return nil, err
	}
	lines := lineindex.New(contents)
	imports, err := GetNormalizedImports(sourceRoots, filePath, contents, ignoreTypeChecking, includeStringImports)
	if err != nil {
		return nil, err
	}
	directives := GetIgnoreDirectives(contents)

	var out []LocatedImport
	for _, imp := range imports {
		located := LocatedImport{
			Import:           imp,
			ImportLineNumber: lines.LineNumber(int(imp.ImportOffset)),
			AliasLineNumber:  lines.LineNumber(int(imp.AliasOffset)),
		}
		if directives.IsIgnored(located.ImportLineNumber, imp.ModulePath) {
			continue
		}
		if filesystem.IsProjectImport(sourceRoots, imp.ModulePath) == wantProject {
			out = append(out, located)
		}
	}
	return out, nil
}
