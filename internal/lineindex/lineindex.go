// Package lineindex maps byte offsets in file contents to 1-based line numbers.
// An index is built once per file and shared by every consumer that needs to
// attribute an offset-tagged fact to a physical line.
package lineindex

import (
	"bytes"
	"sort"
)

// Index is an immutable offset-to-line lookup table for one file
type Index struct {
	// lineStarts[i] is the byte offset of the first byte of line i+1
	lineStarts []int
}

// New builds an index over the given file contents
func New(contents []byte) *Index {
	starts := []int{0}
	for i := 0; i < len(contents); {
		j := bytes.IndexByte(contents[i:], '\n')
		if j < 0 {
			break
		}
		i += j + 1
		starts = append(starts, i)
	}
	return &Index{lineStarts: starts}
}

// LineNumber returns the 1-based line number containing the given byte offset.
// Offsets past the end of the file map to the last line. Line numbers are
// monotonic non-decreasing with offset.
func (ix *Index) LineNumber(offset int) int {
	if offset < 0 {
		return 1
	}
	// First line start strictly greater than offset; the offset's line is the
	// one before it.
	n := sort.Search(len(ix.lineStarts), func(i int) bool {
		return ix.lineStarts[i] > offset
	})
	return n
}

// LineCount returns the number of lines in the indexed contents
func (ix *Index) LineCount() int {
	return len(ix.lineStarts)
}
