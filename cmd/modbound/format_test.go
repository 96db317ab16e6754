package main

import (
	"strings"
	"testing"

	"modbound/internal/check"
)

func TestFormatCheckJSON(t *testing.T) {
	resp := &CheckResponseCLI{
		RunID: "abc",
		Pass:  "internal",
		Files: []check.FileResult{{
			FilePath:   "pkg/mod.py",
			ModulePath: "pkg",
			Facts: []check.DependencyFact{
				{Kind: check.FactKindImport, ModulePath: "other", ImportLine: 2, AliasLine: 2},
			},
		}},
	}

	out, err := FormatResponse(resp, FormatJSON)
	if err != nil {
		t.Fatalf("FormatResponse() error: %v", err)
	}
	for _, want := range []string{`"runId": "abc"`, `"module_path": "other"`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCheckHuman(t *testing.T) {
	resp := &CheckResponseCLI{
		Pass: "internal",
		Files: []check.FileResult{{
			FilePath:   "pkg/mod.py",
			ModulePath: "pkg",
			Facts: []check.DependencyFact{
				{Kind: check.FactKindImport, ModulePath: "other", ImportLine: 2, AliasLine: 2, Ignored: true},
			},
		}},
		Failures: []check.FileFailure{{FilePath: "bad.py", Error: "boom"}},
	}

	out, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse() error: %v", err)
	}
	for _, want := range []string{"pkg/mod.py", "[ignored]", "bad.py: boom", "1 failures"} {
		if !strings.Contains(out, want) {
			t.Errorf("human output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatUnsupported(t *testing.T) {
	if _, err := FormatResponse(&CheckResponseCLI{}, OutputFormat("yaml")); err == nil {
		t.Error("unsupported format should error")
	}
}
