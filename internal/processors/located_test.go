package processors

import (
	"testing"
)

func TestLocatedProjectImports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/__init__.py", "")
	source := "import os\nimport pkg\nimport pkg.hidden  # modbound-ignore\n"
	path := writeFile(t, root, "main.py", source)

	located, err := GetLocatedProjectImports([]string{root}, path, true, false)
	if err != nil {
		t.Fatalf("GetLocatedProjectImports() error: %v", err)
	}
	if len(located) != 1 {
		t.Fatalf("located = %+v, want exactly pkg", located)
	}
	if located[0].ModulePath() != "pkg" || located[0].ImportLineNumber != 2 {
		t.Errorf("located[0] = %+v", located[0])
	}
}

func TestLocatedExternalImports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/__init__.py", "")
	source := "import os\nimport pkg\n"
	path := writeFile(t, root, "main.py", source)

	located, err := GetLocatedExternalImports([]string{root}, path, true)
	if err != nil {
		t.Fatalf("GetLocatedExternalImports() error: %v", err)
	}
	if len(located) != 1 || located[0].ModulePath() != "os" {
		t.Fatalf("located = %+v, want exactly os", located)
	}
	if located[0].ImportLineNumber != 1 || located[0].AliasLineNumber != 1 {
		t.Errorf("line numbers = %d/%d, want 1/1", located[0].ImportLineNumber, located[0].AliasLineNumber)
	}
}
