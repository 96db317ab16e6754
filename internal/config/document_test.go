package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	bstoml "github.com/BurntSushi/toml"

	"modbound/internal/errors"
)

const editableDoc = `# project policy
# keep this comment
source_roots = ["src"]

[[modules]]
path = "core"
depends_on = []

# the api layer
[[modules]]
path = "api"
depends_on = ["core"]
`

func writeTestDoc(t *testing.T, content string) (string, *ProjectConfig) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	return path, cfg
}

// decodedDoc is the shape used to independently verify written documents
type decodedDoc struct {
	SourceRoots []string `toml:"source_roots"`
	Modules     []struct {
		Path      string   `toml:"path"`
		DependsOn []string `toml:"depends_on"`
		Utility   bool     `toml:"utility"`
	} `toml:"modules"`
}

func decodeDoc(t *testing.T, path string) (decodedDoc, string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc decodedDoc
	if err := bstoml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("written document is not valid TOML: %v\n%s", err, data)
	}
	return doc, string(data)
}

func TestApplyEditsPreservesCommentsAndOrder(t *testing.T) {
	path, cfg := writeTestDoc(t, editableDoc)

	if err := cfg.CreateModule("core.db"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyEdits(); err != nil {
		t.Fatalf("ApplyEdits failed: %v", err)
	}

	doc, text := decodeDoc(t, path)
	if len(doc.Modules) != 3 {
		t.Fatalf("expected 3 modules after create, got %d", len(doc.Modules))
	}
	if doc.Modules[2].Path != "core.db" {
		t.Errorf("new module should be appended last, got %q", doc.Modules[2].Path)
	}
	for _, comment := range []string{"# project policy", "# keep this comment", "# the api layer"} {
		if !strings.Contains(text, comment) {
			t.Errorf("comment %q was lost:\n%s", comment, text)
		}
	}
	if strings.Index(text, `path = "core"`) > strings.Index(text, `path = "api"`) {
		t.Error("existing module order was changed")
	}
	if cfg.HasEdits() {
		t.Error("queue should be cleared after successful apply")
	}
}

func TestAddSourceRootExactlyOnce(t *testing.T) {
	path, cfg := writeTestDoc(t, editableDoc)

	if err := cfg.AddSourceRoot("lib"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.AddSourceRoot("lib"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyEdits(); err != nil {
		t.Fatalf("ApplyEdits failed: %v", err)
	}

	doc, text := decodeDoc(t, path)
	count := 0
	for _, root := range doc.SourceRoots {
		if root == "lib" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("lib should appear exactly once in source_roots, got %v", doc.SourceRoots)
	}
	if doc.SourceRoots[0] != "src" {
		t.Errorf("pre-existing source root must be unchanged, got %v", doc.SourceRoots)
	}
	if !strings.Contains(text, "# keep this comment") {
		t.Error("comments must survive source-root edits")
	}
}

func TestRemoveSourceRoot(t *testing.T) {
	path, cfg := writeTestDoc(t, "source_roots = [\"src\", \"lib\"]\n\n[[modules]]\npath = \"a\"\ndepends_on = []\n")

	if err := cfg.RemoveSourceRoot("lib"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyEdits(); err != nil {
		t.Fatal(err)
	}

	doc, _ := decodeDoc(t, path)
	if len(doc.SourceRoots) != 1 || doc.SourceRoots[0] != "src" {
		t.Errorf("source_roots = %v, want [src]", doc.SourceRoots)
	}
}

func TestNoOpApplyDoesNotWrite(t *testing.T) {
	path, cfg := writeTestDoc(t, editableDoc)

	before, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.ApplyEdits(); err != nil {
		t.Fatalf("empty apply should succeed: %v", err)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) || after.Size() != before.Size() {
		t.Error("empty apply must not touch the document")
	}
}

func TestDeleteModule(t *testing.T) {
	path, cfg := writeTestDoc(t, editableDoc)

	if err := cfg.DeleteModule("core"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyEdits(); err != nil {
		t.Fatal(err)
	}

	doc, text := decodeDoc(t, path)
	if len(doc.Modules) != 1 || doc.Modules[0].Path != "api" {
		t.Errorf("expected only api to remain, got %+v", doc.Modules)
	}
	if !strings.Contains(text, "# the api layer") {
		t.Error("unrelated comments must survive deletion")
	}
}

func TestUtilityMarkerToggle(t *testing.T) {
	path, cfg := writeTestDoc(t, editableDoc)

	if err := cfg.MarkModuleAsUtility("core"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyEdits(); err != nil {
		t.Fatal(err)
	}
	doc, _ := decodeDoc(t, path)
	if !doc.Modules[0].Utility {
		t.Fatal("core should be marked utility")
	}

	// Reload so validation sees the current document state
	cfg2, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg2.UnmarkModuleAsUtility("core"); err != nil {
		t.Fatal(err)
	}
	if err := cfg2.ApplyEdits(); err != nil {
		t.Fatal(err)
	}
	doc, text := decodeDoc(t, path)
	if doc.Modules[0].Utility {
		t.Error("utility marker should be removed")
	}
	if strings.Contains(text, "utility") {
		t.Errorf("utility key should be gone from the document:\n%s", text)
	}
}

func TestDependencySplicing(t *testing.T) {
	path, cfg := writeTestDoc(t, editableDoc)

	if err := cfg.AddDependency("core", "api"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.RemoveDependency("api", "core"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyEdits(); err != nil {
		t.Fatal(err)
	}

	doc, _ := decodeDoc(t, path)
	if got := doc.Modules[0].DependsOn; len(got) != 1 || got[0] != "api" {
		t.Errorf("core depends_on = %v, want [api]", got)
	}
	if got := doc.Modules[1].DependsOn; len(got) != 0 {
		t.Errorf("api depends_on = %v, want []", got)
	}
}

func TestSplicePreservesInlineComment(t *testing.T) {
	content := `source_roots = ["src"] # roots live here

[[modules]]
path = "a"
depends_on = ["b"] # reviewed 2024-02
[[modules]]
path = "b"
depends_on = []
[[modules]]
path = "c"
depends_on = []
`
	path, cfg := writeTestDoc(t, content)

	if err := cfg.AddDependency("a", "c"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.AddSourceRoot("lib"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyEdits(); err != nil {
		t.Fatal(err)
	}

	doc, text := decodeDoc(t, path)
	if got := doc.Modules[0].DependsOn; len(got) != 2 || got[1] != "c" {
		t.Errorf("a depends_on = %v, want [b c]", got)
	}
	if len(doc.SourceRoots) != 2 {
		t.Errorf("source_roots = %v, want [src lib]", doc.SourceRoots)
	}
	for _, comment := range []string{"# roots live here", "# reviewed 2024-02"} {
		if !strings.Contains(text, comment) {
			t.Errorf("inline comment %q was lost:\n%s", comment, text)
		}
	}
}

func TestValueWithHashInsideQuotes(t *testing.T) {
	content := `source_roots = ["src"]

[[modules]]
path = "a"
depends_on = ["b#x"]
[[modules]]
path = "b#x"
depends_on = []
`
	path, cfg := writeTestDoc(t, content)

	if err := cfg.RemoveDependency("a", "b#x"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyEdits(); err != nil {
		t.Fatal(err)
	}

	doc, _ := decodeDoc(t, path)
	if got := doc.Modules[0].DependsOn; len(got) != 0 {
		t.Errorf("a depends_on = %v, want []", got)
	}
}

func TestMultilineDependencyArray(t *testing.T) {
	content := `source_roots = ["src"]

[[modules]]
path = "a"
depends_on = [
    "b",
    "c",
]

[[modules]]
path = "b"
depends_on = []

[[modules]]
path = "c"
depends_on = []

[[modules]]
path = "d"
depends_on = []
`
	path, cfg := writeTestDoc(t, content)

	if err := cfg.AddDependency("a", "d"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.RemoveDependency("a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyEdits(); err != nil {
		t.Fatal(err)
	}

	doc, _ := decodeDoc(t, path)
	got := doc.Modules[0].DependsOn
	if len(got) != 2 || got[0] != "c" || got[1] != "d" {
		t.Errorf("a depends_on = %v, want [c d]", got)
	}
}

func TestApplyEditsMissingDocument(t *testing.T) {
	path, cfg := writeTestDoc(t, editableDoc)
	if err := cfg.CreateModule("x"); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	err := cfg.ApplyEdits()
	if err == nil || !errors.HasCode(err, errors.ConfigDoesNotExist) {
		t.Errorf("expected CONFIG_DOES_NOT_EXIST, got %v", err)
	}
	if !cfg.HasEdits() {
		t.Error("queue must survive a failed apply")
	}
}

func TestApplyEditsCorruptDocument(t *testing.T) {
	path, cfg := writeTestDoc(t, editableDoc)
	if err := cfg.CreateModule("x"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("modules = [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := cfg.ApplyEdits()
	if err == nil || !errors.HasCode(err, errors.ParsingFailed) {
		t.Errorf("expected PARSING_FAILED, got %v", err)
	}
}

func TestDomainApplyStripsPrefix(t *testing.T) {
	dir := t.TempDir()
	domainPath := filepath.Join(dir, DomainConfigFileName)
	domainDoc := `# payments domain
[[modules]]
path = "."
depends_on = []

[[modules]]
path = "billing"
depends_on = []
`
	if err := os.WriteFile(domainPath, []byte(domainDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	domain, err := ParseDomainFile(domainPath, "payments")
	if err != nil {
		t.Fatal(err)
	}

	if err := domain.EnqueueEdit(AddDependency{Path: "payments.billing", Dependency: "payments"}); err != nil {
		t.Fatal(err)
	}
	if err := domain.ApplyEdits(); err != nil {
		t.Fatal(err)
	}

	doc, text := decodeDoc(t, domainPath)
	if got := doc.Modules[1].DependsOn; len(got) != 1 || got[0] != "payments" {
		t.Errorf("billing depends_on = %v, want [payments]", got)
	}
	if !strings.Contains(text, `path = "billing"`) {
		t.Error("domain module paths must stay domain-relative")
	}
	if !strings.Contains(text, "# payments domain") {
		t.Error("domain document comments must survive")
	}
}
