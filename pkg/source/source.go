// Package source provides an immutable view of a script source buffer
// with byte-offset to line/column mapping.
//
// A Text is built once per input and never mutated in place: the pre-fix
// pass and the final rewrite each produce a brand new Text.
package source

import "sort"

// Text is an immutable source buffer plus a derived line index.
type Text struct {
	name       string
	content    []byte
	lineStarts []int
}

// New creates a Text from content. The name is used in diagnostics only.
func New(name string, content []byte) *Text {
	t := &Text{name: name, content: content}
	t.lineStarts = append(t.lineStarts, 0)
	for i, c := range content {
		if c == '\n' {
			t.lineStarts = append(t.lineStarts, i+1)
		}
	}
	return t
}

// Name returns the diagnostic name of the source.
func (t *Text) Name() string { return t.name }

// Content returns the raw bytes. Callers must not modify the slice.
func (t *Text) Content() []byte { return t.content }

// Len returns the content length in bytes.
func (t *Text) Len() int { return len(t.content) }

// LineCount returns the number of lines. An empty buffer has one line.
func (t *Text) LineCount() int { return len(t.lineStarts) }

// LineAt converts a byte offset to 1-based line and column numbers.
// Columns count bytes, not runes. Offsets outside the buffer are clamped.
func (t *Text) LineAt(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(t.content) {
		offset = len(t.content)
	}

	// First line whose start is beyond the offset; the offset lives on the
	// line before it.
	idx := sort.Search(len(t.lineStarts), func(i int) bool {
		return t.lineStarts[i] > offset
	}) - 1

	return idx + 1, offset - t.lineStarts[idx] + 1
}

// Offset converts 1-based line and column numbers to a byte offset.
// Returns (0, false) if the position is out of range.
func (t *Text) Offset(line, col int) (int, bool) {
	if line < 1 || line > len(t.lineStarts) || col < 1 {
		return 0, false
	}
	offset := t.lineStarts[line-1] + col - 1
	if offset > t.lineEnd(line-1) {
		return 0, false
	}
	return offset, true
}

// LineContent returns the bytes of a 1-based line, excluding the newline.
// Returns nil if the line number is out of range.
func (t *Text) LineContent(line int) []byte {
	if line < 1 || line > len(t.lineStarts) {
		return nil
	}
	start := t.lineStarts[line-1]
	end := t.lineEnd(line - 1)
	return t.content[start:end]
}

// LineStart returns the byte offset of a 1-based line's first byte.
// Returns -1 if the line number is out of range.
func (t *Text) LineStart(line int) int {
	if line < 1 || line > len(t.lineStarts) {
		return -1
	}
	return t.lineStarts[line-1]
}

// lineEnd returns the offset just past the last content byte of the line
// at index idx, excluding the newline.
func (t *Text) lineEnd(idx int) int {
	if idx+1 < len(t.lineStarts) {
		return t.lineStarts[idx+1] - 1
	}
	return len(t.content)
}
