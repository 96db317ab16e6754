// Package filesystem maps between disk paths and dotted module paths, and
// walks source roots for Python files.
package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"modbound/internal/errors"
)

const pythonExt = ".py"

// ReadFileContent reads raw file bytes
func ReadFileContent(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.FileReadError, "reading source file", err).WithFile(path)
	}
	return data, nil
}

// FileToModulePath converts a file path into a dotted module path relative to
// the first source root that contains it. A package __init__ file maps to the
// package itself; a file directly at a source root maps to ".".
func FileToModulePath(sourceRoots []string, filePath string) (string, error) {
	for _, root := range sourceRoots {
		rel, err := filepath.Rel(root, filePath)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		mod := filepath.ToSlash(rel)
		mod = strings.TrimSuffix(mod, pythonExt)
		mod = strings.TrimSuffix(mod, "/__init__")
		if mod == "" || mod == "." || mod == "__init__" {
			return ".", nil
		}
		return strings.ReplaceAll(mod, "/", "."), nil
	}
	return "", errors.Newf(errors.ModuleNotFound, "file %q is not under any source root", filePath)
}

// ModuleToFilePath returns the file or package directory a dotted module path
// resolves to under the given source roots, or "" when none exists.
func ModuleToFilePath(sourceRoots []string, modulePath string) string {
	base := strings.ReplaceAll(modulePath, ".", string(filepath.Separator))
	for _, root := range sourceRoots {
		if modulePath == "." {
			return root
		}
		candidate := filepath.Join(root, base+pythonExt)
		if isFile(candidate) {
			return candidate
		}
		candidate = filepath.Join(root, base)
		if isDir(candidate) {
			return candidate
		}
	}
	return ""
}

// IsProjectImport reports whether a dotted module path resolves under any
// configured source root. The last segment of an import often names a member
// rather than a module, so a failed lookup retries with it dropped.
func IsProjectImport(sourceRoots []string, modulePath string) bool {
	if ModuleToFilePath(sourceRoots, modulePath) != "" {
		return true
	}
	if i := strings.LastIndex(modulePath, "."); i > 0 {
		return ModuleToFilePath(sourceRoots, modulePath[:i]) != ""
	}
	return false
}

// WalkPythonFiles collects every Python file under root, skipping paths that
// match any exclude pattern. Patterns are doublestar globs matched against
// the slash-separated path relative to root.
func WalkPythonFiles(root string, excludePatterns []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if matchesAny(excludePatterns, filepath.ToSlash(rel)) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.IsDir() && strings.HasSuffix(path, pythonExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.New(errors.FileReadError, "walking source root", err).WithFile(root)
	}
	return files, nil
}

func matchesAny(patterns []string, relSlash string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, relSlash); err == nil && ok {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
