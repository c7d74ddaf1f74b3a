package fix

import (
	"bytes"
	"fmt"
	"strings"
)

// Diff is a line-based unified diff of one rewritten file.
type Diff struct {
	// Path is the file path shown in the diff headers.
	Path string

	// Hunks are the change regions, each padded with context lines.
	Hunks []DiffHunk

	// Additions and Deletions count the +/- lines across all hunks.
	Additions int
	Deletions int
}

// DiffHunk is one "@@" region of a unified diff. Start positions are
// 1-based line numbers; counts include context lines.
type DiffHunk struct {
	OriginalStart int
	OriginalCount int
	ModifiedStart int
	ModifiedCount int
	Lines         []DiffLine
}

// DiffLine is a single line of a hunk, without its +/-/space prefix.
type DiffLine struct {
	Kind    DiffLineKind
	Content string
}

// DiffLineKind distinguishes context, added, and removed lines.
type DiffLineKind int

const (
	DiffLineContext DiffLineKind = iota
	DiffLineAdd
	DiffLineRemove
)

// diffContext is how many unchanged lines surround each change. Change
// runs closer than twice this are folded into one hunk, matching the
// behavior of diff -u.
const diffContext = 3

// GenerateDiff diffs original against modified line by line and returns
// nil when they are equivalent. A missing trailing newline is not a
// difference on its own; the rewriter never touches it.
func GenerateDiff(path string, original, modified []byte) *Diff {
	if bytes.Equal(original, modified) {
		return nil
	}

	ops := editScript(toLines(original), toLines(modified))
	hunks := buildHunks(ops)
	if len(hunks) == 0 {
		return nil
	}

	d := &Diff{Path: path, Hunks: hunks}
	for _, h := range hunks {
		for _, line := range h.Lines {
			switch line.Kind {
			case DiffLineAdd:
				d.Additions++
			case DiffLineRemove:
				d.Deletions++
			}
		}
	}
	return d
}

// HasChanges reports whether the diff has at least one hunk. Safe on a
// nil receiver so callers can chain it off GenerateDiff directly.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// String renders the diff in unified format, starting with the ---/+++
// header lines. An empty or nil diff renders as "".
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	name := strings.TrimPrefix(d.Path, "/")

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", name, name)

	for _, h := range d.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n",
			h.OriginalStart, h.OriginalCount,
			h.ModifiedStart, h.ModifiedCount)

		for _, line := range h.Lines {
			switch line.Kind {
			case DiffLineAdd:
				b.WriteByte('+')
			case DiffLineRemove:
				b.WriteByte('-')
			default:
				b.WriteByte(' ')
			}
			b.WriteString(line.Content)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// toLines splits content into lines without their terminators. A final
// newline does not produce an empty trailing line.
func toLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.Split(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// editKind classifies one step of the edit script.
type editKind uint8

const (
	editKeep editKind = iota
	editInsert
	editDelete
)

type editOp struct {
	kind editKind
	text string
}

// editScript computes a minimal line edit script from a to b using an
// LCS length table, emitting ops straight from the backtrack. Within a
// replacement, deleted lines come before inserted ones.
func editScript(a, b []string) []editOp {
	rows, cols := len(a), len(b)

	table := make([][]int, rows+1)
	for i := range table {
		table[i] = make([]int, cols+1)
	}
	for i := 1; i <= rows; i++ {
		for j := 1; j <= cols; j++ {
			if a[i-1] == b[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else {
				table[i][j] = max(table[i-1][j], table[i][j-1])
			}
		}
	}

	// Backtrack from the far corner. Ops come out last-to-first.
	ops := make([]editOp, 0, rows+cols)
	i, j := rows, cols
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1]:
			ops = append(ops, editOp{editKeep, a[i-1]})
			i--
			j--
		case j > 0 && (i == 0 || table[i][j-1] >= table[i-1][j]):
			ops = append(ops, editOp{editInsert, b[j-1]})
			j--
		default:
			ops = append(ops, editOp{editDelete, a[i-1]})
			i--
		}
	}

	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}
	return ops
}

// buildHunks groups the changed ops into hunks. A run of changes keeps
// absorbing later changes until more than 2*diffContext unchanged lines
// separate them, so adjacent hunks never overlap.
func buildHunks(ops []editOp) []DiffHunk {
	var hunks []DiffHunk

	for i := 0; i < len(ops); {
		if ops[i].kind == editKeep {
			i++
			continue
		}

		end := i + 1
		gap := 0
		for j := i + 1; j < len(ops); j++ {
			if ops[j].kind == editKeep {
				gap++
				if gap > 2*diffContext {
					break
				}
			} else {
				end = j + 1
				gap = 0
			}
		}

		hunks = append(hunks, makeHunk(ops, i, end))
		i = end
	}

	return hunks
}

// makeHunk expands a change run [start, end) with surrounding context
// and fills in the header positions and counts.
func makeHunk(ops []editOp, start, end int) DiffHunk {
	lo := max(start-diffContext, 0)
	hi := min(end+diffContext, len(ops))

	h := DiffHunk{OriginalStart: 1, ModifiedStart: 1}
	for _, op := range ops[:lo] {
		if op.kind != editInsert {
			h.OriginalStart++
		}
		if op.kind != editDelete {
			h.ModifiedStart++
		}
	}

	h.Lines = make([]DiffLine, 0, hi-lo)
	for _, op := range ops[lo:hi] {
		line := DiffLine{Content: op.text}
		switch op.kind {
		case editKeep:
			line.Kind = DiffLineContext
			h.OriginalCount++
			h.ModifiedCount++
		case editInsert:
			line.Kind = DiffLineAdd
			h.ModifiedCount++
		case editDelete:
			line.Kind = DiffLineRemove
			h.OriginalCount++
		}
		h.Lines = append(h.Lines, line)
	}

	return h
}
