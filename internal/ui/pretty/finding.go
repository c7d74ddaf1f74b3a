package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/picofix/pkg/fix"
	"github.com/yaklabco/picofix/pkg/peg"
)

// FormatOccurrence formats a single dialect occurrence for terminal output.
func (s *Styles) FormatOccurrence(path string, occ fix.Occurrence, showContext bool, sourceLine string) string {
	var builder strings.Builder

	location := fmt.Sprintf("%s:%d:%d",
		s.FilePath.Render(path),
		occ.Line,
		occ.Col,
	)

	severity := s.Info.Render("fix")
	if occ.Kind == fix.KindShortIf {
		severity = s.Warning.Render("warning")
	}

	kindDisplay := s.Kind.Render("(" + occ.Kind.String() + ")")

	// Main line: location  severity  message  (kind)
	builder.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		location,
		severity,
		s.Message.Render(occurrenceMessage(occ)),
		kindDisplay,
	))

	if showContext && sourceLine != "" {
		builder.WriteString(s.FormatSourceContext(sourceLine, occ.Col))
	}

	return builder.String()
}

// occurrenceMessage describes what the fixer does (or warns) about an occurrence.
func occurrenceMessage(occ fix.Occurrence) string {
	switch occ.Kind {
	case fix.KindNotEqual:
		return `"!=" rewritten to "~="`
	case fix.KindReassign:
		return fmt.Sprintf("%q expanded to plain assignment", occ.Text)
	case fix.KindShortIf:
		return "single-line if without then; left unchanged"
	default:
		return occ.Kind.String()
	}
}

// FormatParseError formats a parse error with optional source context.
func (s *Styles) FormatParseError(err *peg.ParseError, sourceLine string) string {
	var builder strings.Builder

	location := fmt.Sprintf("%s:%d:%d",
		s.FilePath.Render(err.Source),
		err.Pos.Line,
		err.Pos.Col,
	)

	message := err.Message
	if err.Rule != "" {
		message += " " + s.Dim.Render("(in "+err.Rule+")")
	}

	builder.WriteString(fmt.Sprintf("  %s  %s  %s\n",
		location,
		s.Error.Render("error"),
		message,
	))

	if sourceLine != "" {
		builder.WriteString(s.FormatSourceContext(sourceLine, err.Pos.Col))
	}

	return builder.String()
}

// FormatSourceContext formats the source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	// Indent to align with finding output
	const indent = "        "

	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	if column > 0 {
		padding := indent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, findingCount int) string {
	header := s.FilePath.Render(path)
	if findingCount > 0 {
		word := "findings"
		if findingCount == 1 {
			word = "finding"
		}
		header += s.Dim.Render(fmt.Sprintf(" (%d %s)", findingCount, word))
	}
	return header
}
