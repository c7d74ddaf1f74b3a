package pretty

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/picofix/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 occurrences (2 not-equal operator, 1 compound assignment) in 2 files, 2 written".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.OccurrencesTotal == 0 && stats.WarningsTotal == 0 {
		return s.Success.Render("No PICO-8 constructs found") +
			s.Dim.Render(fmt.Sprintf(" (%d files checked)", stats.FilesProcessed)) + "\n"
	}

	var parts []string

	occWord := "occurrences"
	if stats.OccurrencesTotal == 1 {
		occWord = "occurrence"
	}

	if breakdown := formatKindBreakdown(stats.OccurrencesByKind); breakdown != "" {
		parts = append(parts, fmt.Sprintf("%d %s (%s)", stats.OccurrencesTotal, occWord, breakdown))
	} else {
		parts = append(parts, fmt.Sprintf("%d %s", stats.OccurrencesTotal, occWord))
	}

	fileWord := wordFiles
	if stats.FilesChanged == 1 {
		fileWord = wordFile
	}
	parts = append(parts, fmt.Sprintf("in %d %s", stats.FilesChanged, fileWord))

	if stats.WarningsTotal > 0 {
		warnWord := "warnings"
		if stats.WarningsTotal == 1 {
			warnWord = "warning"
		}
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d %s", stats.WarningsTotal, warnWord)))
	}

	if stats.FilesWritten > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d written", stats.FilesWritten)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// formatKindBreakdown renders the per-kind counts in a stable order.
func formatKindBreakdown(byKind map[string]int) string {
	if len(byKind) == 0 {
		return ""
	}

	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%d %s", byKind[kind], kind))
	}
	return strings.Join(parts, ", ")
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Files checked:     " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesProcessed)) + "\n")

	if stats.FilesChanged > 0 {
		builder.WriteString("  Files with fixes:  " +
			s.SummaryValue.Render(strconv.Itoa(stats.FilesChanged)) + "\n")
	}
	if stats.FilesWritten > 0 {
		builder.WriteString("  Files written:     " +
			s.Success.Render(strconv.Itoa(stats.FilesWritten)) + "\n")
	}
	if stats.FilesSkipped > 0 {
		builder.WriteString("  Files skipped:     " +
			s.Dim.Render(strconv.Itoa(stats.FilesSkipped)) + "\n")
	}
	if stats.FilesErrored > 0 {
		builder.WriteString("  Files errored:     " +
			s.Failure.Render(strconv.Itoa(stats.FilesErrored)) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Total occurrences: " +
		s.SummaryValue.Render(strconv.Itoa(stats.OccurrencesTotal)) + "\n")

	kinds := make([]string, 0, len(stats.OccurrencesByKind))
	for kind := range stats.OccurrencesByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		builder.WriteString(fmt.Sprintf("    %-17s%s\n", kind+":",
			s.SummaryValue.Render(strconv.Itoa(stats.OccurrencesByKind[kind]))))
	}

	if stats.WarningsTotal > 0 {
		builder.WriteString("  Warnings:          " +
			s.Warning.Render(strconv.Itoa(stats.WarningsTotal)) + "\n")
	}

	builder.WriteString("\n")

	switch {
	case stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Completed with errors"))
	case stats.OccurrencesTotal > 0 && stats.FilesWritten == 0:
		builder.WriteString(s.Warning.Render("Fixes pending"))
	default:
		builder.WriteString(s.Success.Render("All clean"))
	}
	builder.WriteString("\n")

	return builder.String()
}
