package processors

import (
	"bufio"
	"bytes"
	"strings"
)

// IgnoreDirectiveMarker is the comment token that suppresses dependency
// checking. Bare, it suppresses every dependency on the target line; followed
// by module paths it suppresses only those.
const IgnoreDirectiveMarker = "# modbound-ignore"

// IgnoreDirective is one suppression comment, anchored to the physical line
// it applies to.
type IgnoreDirective struct {
	LineNumber int
	// Modules scopes the directive; empty matches any module path
	Modules []string
}

// IgnoreDirectives is the set of directives found in one file.
type IgnoreDirectives struct {
	directives []IgnoreDirective
}

// GetIgnoreDirectives scans raw file contents for suppression comments. A
// directive trailing a statement applies to that line; a directive on a line
// of its own applies to the line below it.
func GetIgnoreDirectives(contents []byte) *IgnoreDirectives {
	out := &IgnoreDirectives{}
	scanner := bufio.NewScanner(bytes.NewReader(contents))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		idx := strings.Index(line, IgnoreDirectiveMarker)
		if idx < 0 {
			continue
		}
		target := lineNo
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			target = lineNo + 1
		}
		out.directives = append(out.directives, IgnoreDirective{
			LineNumber: target,
			Modules:    strings.Fields(line[idx+len(IgnoreDirectiveMarker):]),
		})
	}
	return out
}

// IsIgnored reports whether a dependency resolved to the given line and
// module path is suppressed.
func (d *IgnoreDirectives) IsIgnored(lineNumber int, modulePath string) bool {
	for _, directive := range d.directives {
		if directive.LineNumber != lineNumber {
			continue
		}
		if len(directive.Modules) == 0 {
			return true
		}
		for _, m := range directive.Modules {
			if m == modulePath {
				return true
			}
		}
	}
	return false
}

// RemoveMatchingDirectives deletes every directive anchored at the given
// line. Called when a dependency on that line is excluded from output for a
// reason unrelated to the directive, so the directive is not later reported
// as unused.
func (d *IgnoreDirectives) RemoveMatchingDirectives(lineNumber int) {
	kept := d.directives[:0]
	for _, directive := range d.directives {
		if directive.LineNumber != lineNumber {
			kept = append(kept, directive)
		}
	}
	d.directives = kept
}

// All returns every remaining directive
func (d *IgnoreDirectives) All() []IgnoreDirective {
	return d.directives
}
