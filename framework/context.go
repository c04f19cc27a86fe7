package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"

	"golang.org/x/sync/errgroup"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
	lock       sync.Mutex
}

func (e *environment) addResult(result TestResult, failed bool) {
	e.lock.Lock()
	e.results.Tests = append(e.results.Tests, result)
	if failed {
		e.results.Failures = append(e.results.Failures, result)
	}
	e.lock.Unlock()
}

// Context is used like *testing.T when test chains run outside of the Go test runner. It
// satisfies the TestingT interface of the chain and report packages, and testify's
// require.TestingT, and it receives typed assertion failures through RecordFailure.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	lock        sync.Mutex
}

// NamedAction is a subtest for RunParallel.
type NamedAction struct {
	Name   string
	Action func(*Context)
}

func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if c.isSkipped() {
				return
			}
			var addError error
			if _, ok := r.(*Context); ok {
				if len(c.Errors()) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.addError(addError)
			}
			c.setFailed()
		}
		c.env.addResult(TestResult{TestID: c.id, Errors: c.Errors()}, c.Failed())
	}()

	action(c)
}

func (c *Context) ID() TestID {
	return c.id
}

func (c *Context) Run(name string, action func(*Context)) {
	c.runChild(name, action)
}

// runChild runs a subtest and returns its context, or nil if the filter excluded it.
func (c *Context) runChild(name string, action func(*Context)) *Context {
	path := make([]string, 0, len(c.id.Path)+1)
	id := TestID{Path: append(append(path, c.id.Path...), name)}

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return nil
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.isSkipped() {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.Failed(), c1.debugLogger.Output())
	}
	return c1
}

// RunParallel runs subtests concurrently, at most limit at a time (no limit if limit <= 0),
// and returns when all of them have finished. A failed subtest does not stop the others; the
// returned error is a TestFailure for the first one that failed.
func (c *Context) RunParallel(limit int, actions ...NamedAction) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, a := range actions {
		a := a
		g.Go(func() error {
			c1 := c.runChild(a.Name, a.Action)
			if c1 == nil || !c1.Failed() {
				return nil
			}
			return TestFailure{ID: c1.id, Err: errors.Join(c1.Errors()...)}
		})
	}
	return g.Wait()
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.addError(fmt.Errorf(format, args...))
}

// RecordFailure records a typed assertion failure. The caller is still responsible for
// calling FailNow.
func (c *Context) RecordFailure(f *failure.Failure) {
	c.addError(f)
}

func (c *Context) addError(err error) {
	c.lock.Lock()
	c.failed = true
	c.errors = append(c.errors, err)
	c.lock.Unlock()
	c.env.testLogger.TestError(c.id, err)
}

func (c *Context) Errors() []error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]error(nil), c.errors...)
}

func (c *Context) Failed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.failed
}

func (c *Context) setFailed() {
	c.lock.Lock()
	c.failed = true
	c.lock.Unlock()
}

func (c *Context) isSkipped() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.skipped
}

// Helper exists for compatibility with *testing.T.
func (c *Context) Helper() {}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.lock.Lock()
	c.skipped = true
	c.lock.Unlock()
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
