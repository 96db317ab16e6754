package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"modbound/internal/errors"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("pass\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFileToModulePath(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		file string
		want string
	}{
		{"pkg/mod.py", "pkg.mod"},
		{"pkg/__init__.py", "pkg"},
		{"pkg/sub/deep.py", "pkg.sub.deep"},
		{"__init__.py", "."},
		{"main.py", "main"},
	}
	for _, tt := range tests {
		got, err := FileToModulePath([]string{root}, filepath.Join(root, filepath.FromSlash(tt.file)))
		if err != nil {
			t.Errorf("FileToModulePath(%q) error: %v", tt.file, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FileToModulePath(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestFileToModulePathOutsideRoots(t *testing.T) {
	root := t.TempDir()
	_, err := FileToModulePath([]string{filepath.Join(root, "src")}, filepath.Join(root, "elsewhere", "x.py"))
	if !errors.HasCode(err, errors.ModuleNotFound) {
		t.Fatalf("error = %v, want ModuleNotFound", err)
	}
}

func TestIsProjectImport(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "pkg/__init__.py", "pkg/mod.py")

	roots := []string{root}
	tests := []struct {
		path string
		want bool
	}{
		{"pkg", true},
		{"pkg.mod", true},
		// member lookup falls back to the containing module
		{"pkg.mod.SomeClass", true},
		{"os.path", false},
		{"collections", false},
	}
	for _, tt := range tests {
		if got := IsProjectImport(roots, tt.path); got != tt.want {
			t.Errorf("IsProjectImport(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWalkPythonFilesExcludes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"pkg/mod.py",
		"pkg/tests/test_mod.py",
		"docs/conf.py",
		"pkg/data.txt",
	)

	files, err := WalkPythonFiles(root, []string{"**/tests", "**/docs"})
	if err != nil {
		t.Fatalf("WalkPythonFiles() error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %v, want exactly pkg/mod.py", files)
	}
	if files[0] != filepath.Join(root, "pkg", "mod.py") {
		t.Errorf("files[0] = %q", files[0])
	}
}

func TestReadFileContentMissing(t *testing.T) {
	_, err := ReadFileContent(filepath.Join(t.TempDir(), "nope.py"))
	if !errors.HasCode(err, errors.FileReadError) {
		t.Fatalf("error = %v, want FileReadError", err)
	}
}
