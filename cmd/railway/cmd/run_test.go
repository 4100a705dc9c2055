package cmd

import (
	"bytes"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/railwaylang/railway/pkg/railway"
)

// runSource loads and runs source forwards (or backwards) and returns
// whatever it printed to stdout, the way `railway run` does.
func runSource(t *testing.T, source string, backwards bool) string {
	t.Helper()
	prog, err := railway.Load(source, "<test>")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var buf bytes.Buffer
	if err := prog.Run(backwards, &buf, false); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return buf.String()
}

// TestRunPrintsGreeting covers a plain forward run that prints output
// (S1-style hello-world program): print is a no-op running backwards, so
// only the forward pass should produce anything.
func TestRunPrintsGreeting(t *testing.T) {
	source := `
func main()
    let x = 42
    print x
return x
`
	forward := runSource(t, source, false)
	snaps.MatchSnapshot(t, "forward_output", forward)
}

// TestRunSummation covers a loop-driven computation (S-style worked
// example), snapshotting its printed trace.
func TestRunSummation(t *testing.T) {
	source := `
func main()
    let total = 0
    let n = 5
    loop (n > 0)
        total += n
        n -= 1
    pool (n = 0)
    print total
return total, n
`
	forward := runSource(t, source, false)
	snaps.MatchSnapshot(t, "summation_output", forward)
}

// TestRunCallUncallRoundTrip covers call/uncall (spec §4.7) end to end
// through the public Load/Run surface, confirming a call followed by its
// own uncall prints nothing extra and leaves the program's own prints
// from the forward pass as the only output.
func TestRunCallUncallRoundTrip(t *testing.T) {
	source := `
func double(: n)
    n *= 2
return n

func main()
    let x = 5
    call double(: x) => x
    print x
    uncall double(: x) => x
return x
`
	forward := runSource(t, source, false)
	snaps.MatchSnapshot(t, "call_uncall_output", forward)
}
