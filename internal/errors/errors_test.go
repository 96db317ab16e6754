package errors

import (
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ParseError, "invalid syntax", fmt.Errorf("unexpected token"))
	got := err.Error()
	want := "[PARSE_ERROR] invalid syntax: unexpected token"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorWithFile(t *testing.T) {
	err := Newf(ModuleNotFound, "no module for %q", "a.b.c").WithFile("src/a/b/c.py")
	got := err.Error()
	want := `[MODULE_NOT_FOUND] no module for "a.b.c" (file: src/a/b/c.py)`
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestHasCode(t *testing.T) {
	base := New(DiskWriteFailed, "write failed", nil)
	wrapped := fmt.Errorf("applying edits: %w", base)

	if !HasCode(wrapped, DiskWriteFailed) {
		t.Error("expected HasCode to find DISK_WRITE_FAILED through wrapping")
	}
	if HasCode(wrapped, ParseError) {
		t.Error("HasCode matched the wrong code")
	}
	if HasCode(fmt.Errorf("plain"), DiskWriteFailed) {
		t.Error("HasCode matched a foreign error")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(ConfigDoesNotExist, "missing", nil)); got != ConfigDoesNotExist {
		t.Errorf("CodeOf = %s, want %s", got, ConfigDoesNotExist)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != InternalError {
		t.Errorf("CodeOf foreign error = %s, want %s", got, InternalError)
	}
}
