// Package errors defines Railway's error kinds (spec §7) and formats them
// with source context: a line/column header and a caret pointing at the
// offending token, the way the teacher's compiler-error formatter does.
package errors

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"github.com/railwaylang/railway/internal/lexer"
)

// Kind identifies one of the fatal error categories a Railway program can
// raise. All kinds are fatal: Railway code cannot recover from them.
type Kind string

const (
	KindExists            Kind = "exists-error"
	KindParsing           Kind = "parsing-error"
	KindLet               Kind = "let-error"
	KindUnlet             Kind = "unlet-error"
	KindModification      Kind = "modification-error"
	KindLoopAssert        Kind = "loop-assert-error"
	KindIfAssert          Kind = "if-assert-error"
	KindMemAccess         Kind = "mem-access-error"
	KindZeroMultiplication Kind = "zero-multiplication-error"
	KindDivisionByZero    Kind = "division-by-zero-error"
	KindInformationLeak   Kind = "information-leak-error"
	KindExhaustedTry      Kind = "exhausted-try-error"
	KindMutexDirection    Kind = "mutex-direction-error"
)

// RailwayError is a single fatal error with position and source context,
// surfaced to the CLI driver.
type RailwayError struct {
	Kind    Kind
	Message string
	Pos     lexer.Position
	Source  string
	File    string
}

// New constructs a RailwayError. Source and File may be left empty when
// no source text is available yet (e.g. inside the engine, where the
// caller attaches context before printing).
func New(kind Kind, pos lexer.Position, format string, args ...any) *RailwayError {
	return &RailwayError{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// WithSource attaches source text and a filename for pretty formatting.
func (e *RailwayError) WithSource(source, file string) *RailwayError {
	e.Source = source
	e.File = file
	return e
}

// Error implements the error interface with plain (non-colour) formatting.
func (e *RailwayError) Error() string { return e.Format(false) }

// Format renders the error with a source line and caret, optionally with
// ANSI colour for terminal output.
func (e *RailwayError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s in %s:%d:%d\n", e.Kind, e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s at line %d:%d\n", e.Kind, e.Pos.Line, e.Pos.Column)
	}

	if line := sourceLine(e.Source, e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(" ", len(prefix)+displayWidthBefore(line, max0(e.Pos.Column-1))))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteByte('^')
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteByte('\n')
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// displayWidthBefore sums the terminal display width of the first runeCols
// runes of line, counting east-asian wide and fullwidth runes as two
// columns so the caret lines up under the offending token even when the
// source line mixes wide and narrow characters.
func displayWidthBefore(line string, runeCols int) int {
	total := 0
	i := 0
	for _, r := range line {
		if i >= runeCols {
			break
		}
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			total += 2
		default:
			total++
		}
		i++
	}
	return total
}

// FormatErrors renders a batch of errors separated by blank lines.
func FormatErrors(errs []*RailwayError, color bool) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Format(color)
	}
	return strings.Join(parts, "\n\n")
}
