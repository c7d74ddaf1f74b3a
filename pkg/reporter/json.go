package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/picofix/pkg/fix"
	"github.com/yaklabco/picofix/pkg/runner"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path        string           `json:"path"`
	Occurrences []JSONOccurrence `json:"occurrences"`
	Changed     bool             `json:"changed,omitempty"`
	Written     bool             `json:"written,omitempty"`
	Skipped     bool             `json:"skipped,omitempty"`
	SkipReason  string           `json:"skipReason,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// JSONOccurrence represents a single dialect occurrence.
type JSONOccurrence struct {
	Kind    string `json:"kind"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Offset  int    `json:"offset"`
	Length  int    `json:"length"`
	Text    string `json:"text"`
	Warning bool   `json:"warning,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesChecked     int            `json:"filesChecked"`
	FilesChanged     int            `json:"filesChanged"`
	FilesWritten     int            `json:"filesWritten"`
	FilesSkipped     int            `json:"filesSkipped"`
	FilesErrored     int            `json:"filesErrored"`
	TotalOccurrences int            `json:"totalOccurrences"`
	ByKind           map[string]int `json:"byKind"`
	TotalWarnings    int            `json:"totalWarnings"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.TotalOccurrences, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: "1.0.0",
		Files:   make([]JSONFileResult, 0),
		Summary: JSONSummary{
			ByKind: make(map[string]int),
		},
	}

	if result == nil {
		return output
	}

	if len(result.Files) > 0 {
		output.Files = make([]JSONFileResult, 0, len(result.Files))
	}

	for _, file := range result.Files {
		fileResult := JSONFileResult{
			Path:        file.Path,
			Occurrences: make([]JSONOccurrence, 0),
		}

		if file.Error != nil {
			fileResult.Error = file.Error.Error()
			output.Summary.FilesErrored++
		}

		if file.Result != nil {
			fileResult.Written = file.Result.Written
			fileResult.Skipped = file.Result.Skipped
			fileResult.SkipReason = file.Result.SkipReason
			if file.Result.Skipped {
				output.Summary.FilesSkipped++
			}

			if file.Result.Result != nil {
				fileResult.Changed = file.Result.Changed

				for _, occ := range file.Result.Occurrences {
					fileResult.Occurrences = append(fileResult.Occurrences, JSONOccurrence{
						Kind:    occ.Kind.String(),
						Line:    occ.Line,
						Column:  occ.Col,
						Offset:  occ.Offset,
						Length:  occ.Length,
						Text:    occ.Text,
						Warning: occ.Kind == fix.KindShortIf,
					})

					output.Summary.TotalOccurrences++
					output.Summary.ByKind[occ.Kind.String()]++
					if occ.Kind == fix.KindShortIf {
						output.Summary.TotalWarnings++
					}
				}
			}
		}

		if fileResult.Changed {
			output.Summary.FilesChanged++
		}
		if fileResult.Written {
			output.Summary.FilesWritten++
		}

		output.Files = append(output.Files, fileResult)
		output.Summary.FilesChecked++
	}

	return output
}
