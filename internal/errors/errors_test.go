package errors

import (
	"strings"
	"testing"

	"github.com/railwaylang/railway/internal/lexer"
)

func TestFormatIncludesCaret(t *testing.T) {
	err := New(KindUnlet, lexer.Position{Line: 2, Column: 5}, "value mismatch: got %d, want %d", 10, 11)
	err = err.WithSource("let x = 6\nx += 5\nunlet x = 10", "prog.rail")
	out := err.Format(false)
	if !strings.Contains(out, "unlet-error") {
		t.Fatalf("missing kind: %s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("missing caret: %s", out)
	}
	if !strings.Contains(out, "x += 5") {
		t.Fatalf("missing source line: %s", out)
	}
}

func TestFormatErrorsJoinsBatch(t *testing.T) {
	e1 := New(KindParsing, lexer.Position{Line: 1, Column: 1}, "bad token")
	e2 := New(KindExists, lexer.Position{Line: 2, Column: 1}, "undefined name x")
	out := FormatErrors([]*RailwayError{e1, e2}, false)
	if !strings.Contains(out, "parsing-error") || !strings.Contains(out, "exists-error") {
		t.Fatalf("got %s", out)
	}
}
