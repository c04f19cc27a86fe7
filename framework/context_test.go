package framework

import (
	"bytes"
	"errors"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultNames(results []TestResult) []string {
	var ret []string
	for _, r := range results {
		ret = append(ret, r.TestID.String())
	}
	sort.Strings(ret)
	return ret
}

func TestRunRecordsPassesAndFailures(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("passes", func(c *Context) {})
		c.Run("fails", func(c *Context) {
			c.Errorf("bad %d", 1)
		})
		c.Run("fails now", func(c *Context) {
			c.Errorf("fatal")
			c.FailNow()
			c.Errorf("not reached")
		})
	})

	assert.False(t, results.OK())
	assert.Equal(t, []string{"fails", "fails now"}, resultNames(results.Failures))
	require.Len(t, results.Failures, 2)
	for _, f := range results.Failures {
		require.Len(t, f.Errors, 1)
	}
}

func TestRecordFailureKeepsTypedFailure(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("typed", func(c *Context) {
			c.RecordFailure(failure.New(failure.WrongErrorType, "wrong"))
			c.FailNow()
		})
	})
	require.Len(t, results.Failures, 1)
	assert.True(t, errors.Is(results.Failures[0].Errors[0], failure.ErrWrongErrorType))
	assert.Equal(t, map[failure.Kind]int{failure.WrongErrorType: 1}, results.CountByKind())
}

func TestUnexpectedPanicFailsTest(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("panics", func(c *Context) {
			panic("oops")
		})
	})
	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "unexpected panic in test: oops")
	assert.Empty(t, results.CountByKind())
}

func TestFailNowWithoutMessage(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("silent", func(c *Context) { c.FailNow() })
	})
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "test failed with no failure message", results.Failures[0].Errors[0].Error())
}

func TestSkipAndFilter(t *testing.T) {
	var out bytes.Buffer
	color.NoColor = true
	logger := &ConsoleTestLogger{Out: &out}
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("excluded"))

	results := Run(filters.AsFilter, logger, func(c *Context) {
		c.Run("excluded", func(c *Context) { c.Errorf("should not run") })
		c.Run("skipped", func(c *Context) { c.SkipWithReason("not today") })
	})
	assert.True(t, results.OK())
	assert.Contains(t, out.String(), "SKIPPED: excluded (excluded by filter parameters)")
	assert.Contains(t, out.String(), "SKIPPED: skipped (not today)")
}

func TestNestedIDs(t *testing.T) {
	var ids []string
	Run(nil, nil, func(c *Context) {
		c.Run("a", func(c *Context) {
			c.Run("b", func(c *Context) { ids = append(ids, c.ID().String()) })
			c.Run("c", func(c *Context) { ids = append(ids, c.ID().String()) })
		})
	})
	assert.Equal(t, []string{"a/b", "a/c"}, ids)
}

func TestRunParallelRunsEverySubtest(t *testing.T) {
	var count int32
	var actions []NamedAction
	for _, name := range []string{"one", "two", "three", "four"} {
		actions = append(actions, NamedAction{Name: name, Action: func(c *Context) {
			atomic.AddInt32(&count, 1)
			if c.ID().String() == "group/two" {
				c.Errorf("two failed")
			}
		}})
	}
	var err error
	results := Run(nil, nil, func(c *Context) {
		c.Run("group", func(c *Context) {
			err = c.RunParallel(2, actions...)
		})
	})
	assert.Equal(t, int32(4), count)
	assert.Equal(t, []string{"group/two"}, resultNames(results.Failures))
	assert.Len(t, results.Tests, 6) // four subtests, the group, and the root

	var tf TestFailure
	require.ErrorAs(t, err, &tf)
	assert.Equal(t, "group/two", tf.ID.String())
	assert.EqualError(t, tf.Err, "two failed")
}

func TestRunParallelReturnsNilWhenAllPass(t *testing.T) {
	err := errors.New("not run")
	Run(nil, nil, func(c *Context) {
		err = c.RunParallel(0,
			NamedAction{Name: "a", Action: func(*Context) {}},
			NamedAction{Name: "b", Action: func(c *Context) { c.Skip() }})
	})
	assert.NoError(t, err)
}

func TestConsoleLoggerDumpsDebugOutputOnFailure(t *testing.T) {
	var out bytes.Buffer
	color.NoColor = true
	logger := &ConsoleTestLogger{Out: &out, DebugOutputOnFailure: true}
	Run(nil, logger, func(c *Context) {
		c.Run("noisy", func(c *Context) {
			c.Debug("value was %d", 3)
			c.Errorf("line one\nline two")
		})
	})
	s := out.String()
	assert.Contains(t, s, "[noisy]\n")
	assert.Contains(t, s, "  line one\n  line two\n")
	assert.Contains(t, s, "FAILED: noisy")
	assert.Contains(t, s, "DEBUG [")
	assert.Contains(t, s, "value was 3")
}

func TestPrintResults(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	PrintResults(&out, Results{Tests: []TestResult{{TestID: TestID{Path: []string{"a"}}}}})
	assert.Equal(t, "All 1 tests passed\n", out.String())

	out.Reset()
	failed := TestResult{
		TestID: TestID{Path: []string{"b"}},
		Errors: []error{failure.New(failure.MessageMismatch, "m")},
	}
	PrintResults(&out, Results{Tests: []TestResult{failed}, Failures: []TestResult{failed}})
	assert.Contains(t, out.String(), "FAILED TESTS (1 of 1):\n  b\n")
	assert.Contains(t, out.String(), "MessageMismatch: 1")
}

func TestTestFailureString(t *testing.T) {
	f := TestFailure{ID: TestID{Path: []string{"a", "b"}}, Err: errors.New("x")}
	assert.Equal(t, "[a/b]: x", f.Error())
}
