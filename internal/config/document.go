package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	bstoml "github.com/BurntSushi/toml"

	"modbound/internal/errors"
)

// The edit subsystem mutates the on-disk document structurally while
// leaving every untouched line byte-for-byte intact, including comments and
// blank lines. There is no comment-preserving TOML editor in the Go
// ecosystem, so mutation works on the document's physical lines: table
// blocks are located by their headers, keys by line-anchored matches, and
// splices touch only the lines they must. The mutated text is re-decoded
// before anything is written, so a bad splice can never reach disk.

var (
	arrayTableHeaderRe = regexp.MustCompile(`^\s*\[\[\s*([^\]]+?)\s*\]\]\s*(?:#.*)?$`)
	tableHeaderRe      = regexp.MustCompile(`^\s*\[\s*([^\]]+?)\s*\]\s*(?:#.*)?$`)
	keyLineRe          = regexp.MustCompile(`^\s*([A-Za-z0-9_-]+)\s*=\s*(.*)$`)
)

// document is a line-level view of a TOML policy document
type document struct {
	lines []string
	// trailingNewline records whether the original text ended with \n
	trailingNewline bool
}

// block is a contiguous run of lines belonging to one [[header]] element or
// the top-level region before the first header
type block struct {
	header string // "" for the top-level region
	start  int    // header line index, or 0 for the top-level region
	end    int    // exclusive
}

func loadDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ConfigDoesNotExist, fmt.Sprintf("no config at %s", path), err)
		}
		return nil, errors.New(errors.ConfigDoesNotExist, fmt.Sprintf("reading %s", path), err)
	}

	// Reject documents we cannot parse before editing anything
	var probe map[string]interface{}
	if err := bstoml.Unmarshal(data, &probe); err != nil {
		return nil, errors.New(errors.ParsingFailed, "config document is not valid TOML", err)
	}

	text := string(data)
	doc := &document{trailingNewline: strings.HasSuffix(text, "\n")}
	doc.lines = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	return doc, nil
}

func (d *document) text() string {
	out := strings.Join(d.lines, "\n")
	if d.trailingNewline || out != "" {
		out += "\n"
	}
	return out
}

// blocks splits the document into the top-level region (always first, even
// when empty) and one block per table or array-of-tables header, in
// document order
func (d *document) blocks() []block {
	var blocks []block
	current := block{start: 0}
	for i, line := range d.lines {
		var header string
		if m := arrayTableHeaderRe.FindStringSubmatch(line); m != nil {
			header = m[1]
		} else if m := tableHeaderRe.FindStringSubmatch(line); m != nil {
			header = m[1]
		} else {
			continue
		}
		current.end = i
		blocks = append(blocks, current)
		current = block{header: header, start: i}
	}
	current.end = len(d.lines)
	blocks = append(blocks, current)
	return blocks
}

// moduleBlocks returns the [[modules]] blocks in document order
func (d *document) moduleBlocks() []block {
	var out []block
	for _, b := range d.blocks() {
		if b.header == "modules" && arrayTableHeaderRe.MatchString(d.lines[b.start]) {
			out = append(out, b)
		}
	}
	return out
}

// findModuleBlock returns the block declaring the given module path
func (d *document) findModuleBlock(path string) (block, bool) {
	for _, b := range d.moduleBlocks() {
		if v, ok := d.keyValue(b, "path"); ok && unquote(v) == path {
			return b, true
		}
	}
	return block{}, false
}

// keyValue returns the raw value text of a key within a block
func (d *document) keyValue(b block, key string) (string, bool) {
	_, raw, ok := d.keyLine(b, key)
	return raw, ok
}

// keyLine locates a key's line within a block and returns its raw value text
func (d *document) keyLine(b block, key string) (int, string, bool) {
	start := b.start
	if b.header != "" {
		start = b.start + 1
	}
	for i := start; i < b.end; i++ {
		if m := keyLineRe.FindStringSubmatch(d.lines[i]); m != nil && m[1] == key {
			value, _ := splitValueComment(m[2])
			return i, value, true
		}
	}
	return 0, "", false
}

// splitValueComment splits raw value text into the value proper and any
// trailing comment. A '#' inside a quoted string does not start a comment.
func splitValueComment(raw string) (string, string) {
	var inString byte
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case inString != 0:
			if ch == inString {
				inString = 0
			}
		case ch == '"' || ch == '\'':
			inString = ch
		case ch == '#':
			return strings.TrimSpace(raw[:i]), raw[i:]
		}
	}
	return strings.TrimSpace(raw), ""
}

// insertLines inserts the given lines before index at
func (d *document) insertLines(at int, lines ...string) {
	rest := append([]string(nil), d.lines[at:]...)
	d.lines = append(d.lines[:at], append(lines, rest...)...)
}

// removeLines removes lines [from, to)
func (d *document) removeLines(from, to int) {
	d.lines = append(d.lines[:from], d.lines[to:]...)
}

func unquote(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 {
		if (raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}

func quote(s string) string {
	return `"` + s + `"`
}

// splitArrayElements tokenizes a single-line TOML array body into its raw
// element texts. Only string and bare elements are produced; nested
// structures are returned as-is so untouched entries survive verbatim.
func splitArrayElements(body string) []string {
	var elems []string
	var cur strings.Builder
	depth := 0
	var inString byte
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case inString != 0:
			cur.WriteByte(ch)
			if ch == inString {
				inString = 0
			}
		case ch == '"' || ch == '\'':
			inString = ch
			cur.WriteByte(ch)
		case ch == '[' || ch == '{':
			depth++
			cur.WriteByte(ch)
		case ch == ']' || ch == '}':
			depth--
			cur.WriteByte(ch)
		case ch == ',' && depth == 0:
			elems = append(elems, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		elems = append(elems, s)
	}
	return elems
}

// spliceArrayLine rewrites a single-line `key = [...]` value applying add or
// remove of one string element. Add guards against duplicates.
func spliceArrayLine(line, value string, add bool) (string, bool) {
	m := keyLineRe.FindStringSubmatch(line)
	if m == nil {
		return line, false
	}
	raw, comment := splitValueComment(m[2])
	if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
		return line, false
	}
	elems := splitArrayElements(raw[1 : len(raw)-1])

	if add {
		for _, e := range elems {
			if unquote(e) == value {
				return line, true // already present, not an error
			}
		}
		elems = append(elems, quote(value))
	} else {
		kept := elems[:0]
		for _, e := range elems {
			if unquote(e) != value {
				kept = append(kept, e)
			}
		}
		elems = kept
	}

	prefix := line[:strings.Index(line, "=")+1]
	out := prefix + " [" + strings.Join(elems, ", ") + "]"
	if comment != "" {
		out += " " + comment
	}
	return out, true
}

// applyEditsToFile loads the document at path, applies the queued edits as
// structural mutations, and writes the document back. stripPrefix, when
// non-empty, is the domain root: module paths are made domain-relative
// before they touch the document. The write is all-or-nothing.
func applyEditsToFile(path string, edits []ConfigEdit, stripPrefix string) error {
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}

	for _, edit := range edits {
		applyEdit(doc, localizeEdit(edit, stripPrefix))
	}

	mutated := doc.text()
	var probe map[string]interface{}
	if err := bstoml.Unmarshal([]byte(mutated), &probe); err != nil {
		return errors.New(errors.ParsingFailed, "edited document failed validation, not written", err)
	}

	if err := os.WriteFile(path, []byte(mutated), 0o644); err != nil {
		return errors.New(errors.DiskWriteFailed, fmt.Sprintf("writing %s", path), err)
	}
	return nil
}

// localizeEdit rewrites module paths relative to a domain root
func localizeEdit(edit ConfigEdit, stripPrefix string) ConfigEdit {
	if stripPrefix == "" {
		return edit
	}
	rel := func(path string) string {
		if path == stripPrefix {
			return RootModulePath
		}
		return strings.TrimPrefix(path, stripPrefix+".")
	}
	switch e := edit.(type) {
	case CreateModule:
		return CreateModule{Path: rel(e.Path)}
	case DeleteModule:
		return DeleteModule{Path: rel(e.Path)}
	case MarkModuleAsUtility:
		return MarkModuleAsUtility{Path: rel(e.Path)}
	case UnmarkModuleAsUtility:
		return UnmarkModuleAsUtility{Path: rel(e.Path)}
	case AddDependency:
		return AddDependency{Path: rel(e.Path), Dependency: e.Dependency}
	case RemoveDependency:
		return RemoveDependency{Path: rel(e.Path), Dependency: e.Dependency}
	}
	return edit
}

func applyEdit(doc *document, edit ConfigEdit) {
	switch e := edit.(type) {
	case CreateModule:
		appendModuleBlock(doc, e.Path)
	case DeleteModule:
		if b, ok := doc.findModuleBlock(e.Path); ok {
			start := b.start
			// Swallow the preceding blank separator so blocks stay tidy
			if start > 0 && strings.TrimSpace(doc.lines[start-1]) == "" {
				start--
			}
			doc.removeLines(start, b.end)
		}
	case MarkModuleAsUtility:
		if b, ok := doc.findModuleBlock(e.Path); ok {
			if i, _, ok := doc.keyLine(b, "utility"); ok {
				doc.lines[i] = "utility = true"
			} else if i, _, ok := doc.keyLine(b, "path"); ok {
				doc.insertLines(i+1, "utility = true")
			}
		}
	case UnmarkModuleAsUtility:
		if b, ok := doc.findModuleBlock(e.Path); ok {
			if i, _, ok := doc.keyLine(b, "utility"); ok {
				doc.removeLines(i, i+1)
			}
		}
	case AddDependency:
		spliceModuleDependency(doc, e.Path, e.Dependency, true)
	case RemoveDependency:
		spliceModuleDependency(doc, e.Path, e.Dependency, false)
	case AddSourceRoot:
		spliceTopLevelArray(doc, "source_roots", e.Filepath, true)
	case RemoveSourceRoot:
		spliceTopLevelArray(doc, "source_roots", e.Filepath, false)
	}
}

func appendModuleBlock(doc *document, path string) {
	lines := []string{
		"[[modules]]",
		fmt.Sprintf("path = %s", quote(path)),
		"depends_on = []",
	}
	at := len(doc.lines)
	if mods := doc.moduleBlocks(); len(mods) > 0 {
		at = mods[len(mods)-1].end
	}
	// Trim trailing blank lines inside the insertion point, then separate
	for at > 0 && strings.TrimSpace(doc.lines[at-1]) == "" {
		at--
	}
	if at > 0 {
		lines = append([]string{""}, lines...)
	}
	doc.insertLines(at, lines...)
}

func spliceModuleDependency(doc *document, path, dependency string, add bool) {
	b, ok := doc.findModuleBlock(path)
	if !ok {
		return
	}
	i, raw, ok := doc.keyLine(b, "depends_on")
	if !ok {
		if add {
			if pi, _, ok := doc.keyLine(b, "path"); ok {
				doc.insertLines(pi+1, fmt.Sprintf("depends_on = [%s]", quote(dependency)))
			}
		}
		return
	}

	if strings.TrimSpace(raw) == "[" {
		// Multi-line array: elements live one per line until the closing bracket
		spliceMultilineArray(doc, b, i, dependency, add)
		return
	}
	if line, ok := spliceArrayLine(doc.lines[i], dependency, add); ok {
		doc.lines[i] = line
	}
}

func spliceMultilineArray(doc *document, b block, keyIdx int, value string, add bool) {
	closing := -1
	for i := keyIdx + 1; i < b.end; i++ {
		if strings.HasPrefix(strings.TrimSpace(doc.lines[i]), "]") {
			closing = i
			break
		}
	}
	if closing < 0 {
		return
	}
	if add {
		for i := keyIdx + 1; i < closing; i++ {
			if unquote(strings.TrimSuffix(strings.TrimSpace(doc.lines[i]), ",")) == value {
				return
			}
		}
		indent := "    "
		if closing > keyIdx+1 {
			trimmed := strings.TrimLeft(doc.lines[keyIdx+1], " \t")
			indent = doc.lines[keyIdx+1][:len(doc.lines[keyIdx+1])-len(trimmed)]
		}
		doc.insertLines(closing, indent+quote(value)+",")
		return
	}
	for i := keyIdx + 1; i < closing; i++ {
		if unquote(strings.TrimSuffix(strings.TrimSpace(doc.lines[i]), ",")) == value {
			doc.removeLines(i, i+1)
			return
		}
	}
}

func spliceTopLevelArray(doc *document, key, value string, add bool) {
	blocks := doc.blocks()
	top := blocks[0]
	if top.header != "" {
		// No top-level region; synthesize the key at the very start
		if add {
			doc.insertLines(0, fmt.Sprintf("%s = [%s]", key, quote(value)), "")
		}
		return
	}

	i, raw, ok := doc.keyLine(top, key)
	if !ok {
		if add {
			at := top.end
			for at > 0 && strings.TrimSpace(doc.lines[at-1]) == "" {
				at--
			}
			doc.insertLines(at, fmt.Sprintf("%s = [%s]", key, quote(value)))
		}
		return
	}
	if strings.TrimSpace(raw) == "[" {
		spliceMultilineArray(doc, top, i, value, add)
		return
	}
	if line, ok := spliceArrayLine(doc.lines[i], value, add); ok {
		doc.lines[i] = line
	}
}
