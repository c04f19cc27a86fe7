package framework

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	failedColor  = color.New(color.FgRed, color.Bold)
	passedColor  = color.New(color.FgGreen)
	skippedColor = color.New(color.FgYellow)
)

// ConsoleTestLogger writes human-readable test progress to Out, or to standard output if Out
// is nil. It is safe to use from parallel tests.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	Out                  io.Writer
	lock                 sync.Mutex
}

func (c *ConsoleTestLogger) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *ConsoleTestLogger) TestStarted(id TestID) {
	c.lock.Lock()
	defer c.lock.Unlock()
	fmt.Fprintf(c.out(), "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id TestID, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.out(), "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if failed {
		failedColor.Fprintf(c.out(), "  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.out(), "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if reason == "" {
		skippedColor.Fprintf(c.out(), "  SKIPPED: %s\n", id)
	} else {
		skippedColor.Fprintf(c.out(), "  SKIPPED: %s (%s)\n", id, reason)
	}
}

// PrintResults writes a summary of a test run.
func PrintResults(out io.Writer, results Results) {
	if results.OK() {
		passedColor.Fprintf(out, "All %d tests passed\n", len(results.Tests))
		return
	}
	failedColor.Fprintf(out, "FAILED TESTS (%d of %d):\n", len(results.Failures), len(results.Tests))
	for _, f := range results.Failures {
		fmt.Fprintf(out, "  %s\n", f.TestID)
	}
	counts := results.CountByKind()
	if len(counts) == 0 {
		return
	}
	var lines []string
	for kind, n := range counts {
		lines = append(lines, fmt.Sprintf("  %s: %d", kind, n))
	}
	sort.Strings(lines)
	fmt.Fprintln(out, "Failures by kind:")
	fmt.Fprintln(out, strings.Join(lines, "\n"))
}
