package pretty

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/picofix/pkg/fix"
	"github.com/yaklabco/picofix/pkg/peg"
	"github.com/yaklabco/picofix/pkg/runner"
)

func TestIsColorEnabled(t *testing.T) {
	var buf bytes.Buffer

	assert.True(t, IsColorEnabled("always", &buf))
	assert.False(t, IsColorEnabled("never", &buf))
	// A plain buffer is not a TTY.
	assert.False(t, IsColorEnabled("auto", &buf))
}

func TestIsColorEnabledNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, IsColorEnabled("auto", &bytes.Buffer{}))
	// Explicit "always" still wins over NO_COLOR.
	assert.True(t, IsColorEnabled("always", &bytes.Buffer{}))
}

func TestFormatOccurrence(t *testing.T) {
	t.Parallel()

	styles := NewStyles(false)
	occ := fix.Occurrence{Kind: fix.KindNotEqual, Line: 3, Col: 6, Length: 2, Text: "!="}

	out := styles.FormatOccurrence("main.lua", occ, true, "if a != b then end")
	assert.Contains(t, out, "main.lua:3:6")
	assert.Contains(t, out, "fix")
	assert.Contains(t, out, "(not-equal operator)")
	assert.Contains(t, out, "if a != b then end")
	// Caret lines up under column 6.
	assert.Contains(t, out, strings.Repeat(" ", 5)+"^")
}

func TestFormatOccurrenceShortIfIsWarning(t *testing.T) {
	t.Parallel()

	styles := NewStyles(false)
	occ := fix.Occurrence{Kind: fix.KindShortIf, Line: 1, Col: 1, Text: "if (a) b=1"}

	out := styles.FormatOccurrence("main.lua", occ, false, "")
	assert.Contains(t, out, "warning")
	assert.Contains(t, out, "left unchanged")
}

func TestFormatParseError(t *testing.T) {
	t.Parallel()

	styles := NewStyles(false)
	perr := &peg.ParseError{
		Source:  "bad.lua",
		Pos:     peg.Position{Line: 2, Col: 5},
		Rule:    "statement",
		Message: "syntax error",
	}

	out := styles.FormatParseError(perr, "if a then")
	assert.Contains(t, out, "bad.lua:2:5")
	assert.Contains(t, out, "syntax error")
	assert.Contains(t, out, "(in statement)")
	assert.Contains(t, out, "if a then")
}

func TestFormatFileHeader(t *testing.T) {
	t.Parallel()

	styles := NewStyles(false)
	assert.Equal(t, "main.lua (2 findings)", styles.FormatFileHeader("main.lua", 2))
	assert.Equal(t, "main.lua (1 finding)", styles.FormatFileHeader("main.lua", 1))
	assert.Equal(t, "main.lua", styles.FormatFileHeader("main.lua", 0))
}

func TestFormatSummaryOneLineClean(t *testing.T) {
	t.Parallel()

	styles := NewStyles(false)
	out := styles.FormatSummaryOneLine(runner.Stats{FilesProcessed: 3})
	assert.Equal(t, "No PICO-8 constructs found (3 files checked)\n", out)
}

func TestFormatSummaryOneLineWithFindings(t *testing.T) {
	t.Parallel()

	styles := NewStyles(false)
	out := styles.FormatSummaryOneLine(runner.Stats{
		FilesProcessed:   3,
		FilesChanged:     2,
		FilesWritten:     2,
		OccurrencesTotal: 3,
		OccurrencesByKind: map[string]int{
			"not-equal operator":  2,
			"compound assignment": 1,
		},
		WarningsTotal: 1,
	})

	assert.Equal(t,
		"3 occurrences (1 compound assignment, 2 not-equal operator) in 2 files, 1 warning, 2 written\n",
		out)
}

func TestFormatSummaryBlock(t *testing.T) {
	t.Parallel()

	styles := NewStyles(false)
	out := styles.FormatSummary(runner.Stats{
		FilesProcessed:    2,
		FilesChanged:      1,
		OccurrencesTotal:  1,
		OccurrencesByKind: map[string]int{"not-equal operator": 1},
	})

	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Files checked:     2")
	assert.Contains(t, out, "Total occurrences: 1")
	assert.Contains(t, out, "Fixes pending")
}
