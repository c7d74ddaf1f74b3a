package reporter

import (
	"bufio"
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/picofix/internal/ui/pretty"
	"github.com/yaklabco/picofix/pkg/fix"
	"github.com/yaklabco/picofix/pkg/fixer"
	"github.com/yaklabco/picofix/pkg/peg"
	"github.com/yaklabco/picofix/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
	width  int
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
		width:  pretty.TerminalWidth(opts.Writer),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(ctx context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to check."))
		}
		return 0, nil
	}

	var total int
	if r.opts.GroupByFile {
		total = r.reportGrouped(ctx, result)
	} else {
		total = r.reportFlat(ctx, result)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return total, nil
}

// reportGrouped writes findings grouped by file.
func (r *TextReporter) reportGrouped(_ context.Context, result *runner.Result) int {
	var total int

	for _, file := range result.Files {
		if file.Error != nil {
			r.writeFileError(file)
			continue
		}

		occurrences := fileOccurrences(file)
		if len(occurrences) == 0 {
			continue
		}

		// File header
		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(file.Path, len(occurrences)))

		for _, occ := range occurrences {
			var sourceLine string
			if r.opts.ShowContext {
				sourceLine = r.sourceLine(file.Result, occ.Line)
			}
			fmt.Fprint(r.bw, r.styles.FormatOccurrence(file.Path, occ, r.opts.ShowContext, sourceLine))
			total++
		}

		// Blank line between files
		fmt.Fprintln(r.bw)
	}

	return total
}

// reportFlat writes findings without grouping.
func (r *TextReporter) reportFlat(_ context.Context, result *runner.Result) int {
	var total int

	for _, file := range result.Files {
		if file.Error != nil {
			r.writeFileError(file)
			continue
		}

		for _, occ := range fileOccurrences(file) {
			var sourceLine string
			if r.opts.ShowContext {
				sourceLine = r.sourceLine(file.Result, occ.Line)
			}
			fmt.Fprint(r.bw, r.styles.FormatOccurrence(file.Path, occ, r.opts.ShowContext, sourceLine))
			total++
		}
	}

	return total
}

// writeFileError renders a per-file error, with parse errors getting
// location and context treatment.
func (r *TextReporter) writeFileError(file runner.FileOutcome) {
	var perr *peg.ParseError
	if errors.As(file.Error, &perr) {
		fmt.Fprint(r.bw, r.styles.FormatParseError(perr, ""))
		return
	}

	fmt.Fprintf(r.bw, "%s: %s\n",
		r.styles.FilePath.Render(file.Path),
		r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
	)
}

// fileOccurrences returns the occurrences for an outcome, or nil.
func fileOccurrences(file runner.FileOutcome) []fix.Occurrence {
	if file.Result == nil || file.Result.Result == nil {
		return nil
	}
	return file.Result.Occurrences
}

// contextIndent is the visual indent FormatSourceContext puts before a
// source line; truncation accounts for it so context never wraps.
const contextIndent = 8

// sourceLine extracts a specific line from the retained source text,
// truncated to the terminal width when one is known. The fixer keeps a
// line index, so the lookup is O(1) per call.
func (r *TextReporter) sourceLine(pr *fixer.PipelineResult, lineNum int) string {
	if pr == nil || pr.Result == nil || pr.Source == nil {
		return ""
	}
	content := pr.Source.LineContent(lineNum)
	if content == nil {
		return ""
	}

	line := string(content)
	if r.width > contextIndent && len(line) > r.width-contextIndent {
		line = line[:r.width-contextIndent]
	}
	return line
}
