package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/railwaylang/railway/internal/parser"
)

func mustParse(t *testing.T, src string) *Interpreter {
	t.Helper()
	p := parser.New(src)
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	var buf bytes.Buffer
	it, err := New(file, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return it
}

// TestRoundTrip exercises P1: running a program forwards then backwards
// must leave every binding as it started.
func TestRoundTrip(t *testing.T) {
	src := `
func main()
    let x = 3
    x += 4
    let y = x * 2
return x, y
`
	it := mustParse(t, src)
	if err := it.Run(false); err != nil {
		t.Fatalf("forward run: %v", err)
	}
	if err := it.Run(true); err != nil {
		t.Fatalf("backward run: %v", err)
	}
}

func TestModificationAndUnlet(t *testing.T) {
	src := `
func main()
    let x = 10
    x -= 3
    unlet x = 7
return
`
	it := mustParse(t, src)
	if err := it.Run(false); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestUnletMismatchErrors(t *testing.T) {
	src := `
func main()
    let x = 10
    unlet x = 11
return
`
	it := mustParse(t, src)
	if err := it.Run(false); err == nil {
		t.Fatal("expected unlet mismatch error")
	}
}

func TestIfConditionDisagreementErrors(t *testing.T) {
	src := `
func main()
    let x = 1
    if (x = 1)
        x += 1
    else
        x += 100
    fi (x = 3)
    unlet x = 2
return
`
	it := mustParse(t, src)
	if err := it.Run(false); err == nil {
		t.Fatal("expected if-assert error from a disagreeing exit condition")
	}
}

func TestLoopCountsDown(t *testing.T) {
	src := `
func main()
    let n = 3
    loop (n > 0)
        n -= 1
    pool (n = 0)
    unlet n = 0
return
`
	it := mustParse(t, src)
	if err := it.Run(false); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestCallAndUncallInverse(t *testing.T) {
	src := `
func increment(: n)
    n += 1
return n

func main()
    let x = 5
    call increment(: x) => x
    uncall increment(: x) => x
    unlet x = 5
return
`
	it := mustParse(t, src)
	if err := it.Run(false); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestPrintIsSkippedBackwards(t *testing.T) {
	src := `
func main()
    let x = 1
    print x
return x
`
	p := parser.New(src)
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	var buf bytes.Buffer
	it, err := New(file, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := it.Run(false); err != nil {
		t.Fatalf("forward run: %v", err)
	}
	if !strings.Contains(buf.String(), "1") {
		t.Fatalf("expected printed output, got %q", buf.String())
	}
	before := buf.Len()
	if err := it.Run(true); err != nil {
		t.Fatalf("backward run: %v", err)
	}
	if buf.Len() != before {
		t.Fatal("print should have no effect running backwards")
	}
}

func TestPushPopInverse(t *testing.T) {
	src := `
func main()
    let arr = [1, 2]
    let x = 5
    push x => arr
    pop arr => x
return arr, x
`
	it := mustParse(t, src)
	if err := it.Run(false); err != nil {
		t.Fatalf("run: %v", err)
	}
}

// TestForLoopRoundTrip exercises a for-loop accumulating over an array
// literal, both forwards and backwards (P1).
func TestForLoopRoundTrip(t *testing.T) {
	src := `
func main()
    let total = 0
    for i in [1, 2, 3]
        total += i
    rof
return total
`
	it := mustParse(t, src)
	if err := it.Run(false); err != nil {
		t.Fatalf("forward run: %v", err)
	}
	if err := it.Run(true); err != nil {
		t.Fatalf("backward run: %v", err)
	}
}

// TestDoYieldUndoRoundTrip exercises spec §4.6's do/yield/undo construct:
// yield runs while the do-block's effect on x is in place (y becomes 11),
// then the do-block is undone so x is back to 1, leaving only yield's
// effect on y, and the whole construct must itself invert cleanly under a
// backward Run.
func TestDoYieldUndoRoundTrip(t *testing.T) {
	src := `
func main()
    let x = 1
    let y = 0
    do
        x += 10
    yield
        y += x
    undo
return x, y
`
	it := mustParse(t, src)
	if err := it.Run(false); err != nil {
		t.Fatalf("forward run: %v", err)
	}
	if err := it.Run(true); err != nil {
		t.Fatalf("backward run: %v", err)
	}
}

// TestTryCatchBacktracksToPassingCandidate exercises spec §4.6's try-catch:
// candidates that trip the catch condition must be tried and rewound in
// order until one sticks, and the whole statement must replay the same
// choice when the program is later run backwards.
func TestTryCatchBacktracksToPassingCandidate(t *testing.T) {
	src := `
func main()
    let x = 0
    try (v in [10, 2, 1])
        x += v
        catch (x > 4)
    yrt
    print x
return x, v
`
	it := mustParse(t, src)
	if err := it.Run(false); err != nil {
		t.Fatalf("forward run: %v", err)
	}
	if err := it.Run(true); err != nil {
		t.Fatalf("backward run: %v", err)
	}
}

// TestTryCatchExhaustedErrors confirms every candidate tripping catch is
// reported as an exhausted-try error rather than silently succeeding.
func TestTryCatchExhaustedErrors(t *testing.T) {
	src := `
func main()
    let x = 0
    try (v in [10, 20])
        x += v
        catch (x > 4)
    yrt
return x, v
`
	it := mustParse(t, src)
	if err := it.Run(false); err == nil {
		t.Fatal("expected exhausted-try error when every candidate trips catch")
	}
}

// TestPromoteBridgesMonoAndPlain exercises spec §4.6's promote statement:
// a mono-only binding becomes an ordinary one that can safely cross a
// return boundary.
func TestPromoteBridgesMonoAndPlain(t *testing.T) {
	src := `
func main()
    let .m = 7
    promote .m => p
return p
`
	it := mustParse(t, src)
	if err := it.Run(false); err != nil {
		t.Fatalf("run: %v", err)
	}
}

// TestUndoreturnLeavesNoTrace exercises spec §4.7's undoreturn functions: a
// forward call runs the body, copies the returned cell, then reverses the
// body so any mutation of a borrowed cell is undone and only the copy
// escapes to the caller.
func TestUndoreturnLeavesNoTrace(t *testing.T) {
	src := `
func peek(n : )
    n += 1
undoreturn n

func main()
    let n = 5
    call peek(n : ) => doubled
return n, doubled
`
	it := mustParse(t, src)
	if err := it.Run(false); err != nil {
		t.Fatalf("run: %v", err)
	}
}

// TestParallelCallWithBarrierAndMutex exercises spec §5: each lane bumps
// its own slice of a stolen array after rendezvousing at a named barrier
// and taking turns in a named mutex section.
func TestParallelCallWithBarrierAndMutex(t *testing.T) {
	src := `
func bump(: n)
    barrier sync
    mutex guard
        n += 1
    xetum
return n

func main()
    let xs = [1, 2, 3]
    parallel call bump(: xs) => xs
return xs
`
	it := mustParse(t, src)
	if err := it.Run(false); err != nil {
		t.Fatalf("run: %v", err)
	}
}
