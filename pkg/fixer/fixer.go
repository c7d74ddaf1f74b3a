// Package fixer is the source-to-source pipeline: it pre-fixes the known
// _update60 trailer, parses the code with the dialect grammar, and rewrites
// the recorded occurrences into canonical Lua.
package fixer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/picofix/internal/logging"
	"github.com/yaklabco/picofix/pkg/fix"
	"github.com/yaklabco/picofix/pkg/lua"
	"github.com/yaklabco/picofix/pkg/peg"
	"github.com/yaklabco/picofix/pkg/source"
)

// Options configures a Fixer.
type Options struct {
	// Pico8 enables the dialect extensions. When false the fixer is a
	// pure validator: canonical Lua passes through untouched and dialect
	// constructs are syntax errors.
	Pico8 bool

	// Logger receives per-occurrence debug output. Defaults to the
	// package default logger.
	Logger *log.Logger
}

// GrammarDefectError wraps a structural self-check failure. The grammar
// itself is broken, so no input can be trusted to parse; callers must not
// process any file.
type GrammarDefectError struct {
	Err error
}

func (e *GrammarDefectError) Error() string {
	return fmt.Sprintf("grammar self-check failed: %v", e.Err)
}

func (e *GrammarDefectError) Unwrap() error { return e.Err }

// Result is the outcome of fixing one buffer.
type Result struct {
	// Name is the buffer name used in diagnostics.
	Name string

	// Output is the fixed content. Equal to the input when nothing
	// needed fixing.
	Output []byte

	// Occurrences lists every dialect construct found, in source order.
	Occurrences []fix.Occurrence

	// Warnings lists the occurrences that are reported but not
	// rewritten (the single-line if form).
	Warnings []fix.Occurrence

	// Changed reports whether Output differs from the input.
	Changed bool

	// Source is the indexed input text, kept for line-context rendering.
	Source *source.Text
}

// Fixer translates PICO-8 flavored Lua into canonical Lua. A Fixer is
// immutable after construction and safe for concurrent use; every Fix call
// builds its own parse state.
type Fixer struct {
	opts Options
	log  *log.Logger
}

// New creates a Fixer and runs the grammar's structural self-check once.
// The check covers every grammar this Fixer will ever build, since the
// structure depends only on the options.
func New(opts Options) (*Fixer, error) {
	if err := lua.New(lua.Options{Pico8: opts.Pico8}).Analyze(); err != nil {
		return nil, &GrammarDefectError{Err: err}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Fixer{opts: opts, log: logger}, nil
}

// Fix parses content and returns the canonical rendition. The input slice
// is never modified. A *peg.ParseError means the input is not valid code;
// a *fix.InvariantError means the parser and rewriter disagreed, which is a
// bug in this program.
func (f *Fixer) Fix(ctx context.Context, name string, content []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefixed := fix.FixUpdate60(content)
	if len(prefixed) != len(content) {
		f.log.Debug("fixed _update60 trailer", logging.FieldPath, name)
	}

	rec := fix.NewRecorder()
	g := lua.New(lua.Options{Pico8: f.opts.Pico8, Recorder: rec})
	src := source.New(name, prefixed)
	st := peg.NewState(src)
	st.Register(rec)

	if err := g.Parse(st); err != nil {
		return nil, err
	}

	var warnings []fix.Occurrence
	for _, occ := range rec.All() {
		f.log.Debug("dialect construct",
			logging.FieldPath, name,
			logging.FieldKind, occ.Kind.String(),
			logging.FieldLine, occ.Line,
			logging.FieldCol, occ.Col,
			logging.FieldLength, occ.Length,
		)
		if occ.Kind == fix.KindShortIf {
			warnings = append(warnings, occ)
		}
	}

	out, err := fix.Rewrite(name, prefixed, rec)
	if err != nil {
		return nil, err
	}

	return &Result{
		Name:        name,
		Output:      out,
		Occurrences: rec.All(),
		Warnings:    warnings,
		Changed:     !bytes.Equal(out, content),
		Source:      src,
	}, nil
}
