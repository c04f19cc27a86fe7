// Package spy provides a TestingT that records failures instead of reporting them, so that
// assertions can themselves be tested.
package spy

import (
	"fmt"
	"sync"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
)

// T records everything an assertion tells it. FailNow stops the calling goroutine's
// assertion by panicking with the T, which Capture recovers.
type T struct {
	Failures []*failure.Failure
	Messages []string
	Stopped  bool
	lock     sync.Mutex
}

func (t *T) Helper() {}

func (t *T) Errorf(format string, args ...interface{}) {
	t.lock.Lock()
	t.Messages = append(t.Messages, fmt.Sprintf(format, args...))
	t.lock.Unlock()
}

func (t *T) RecordFailure(f *failure.Failure) {
	t.lock.Lock()
	t.Failures = append(t.Failures, f)
	t.Messages = append(t.Messages, f.Error())
	t.lock.Unlock()
}

func (t *T) FailNow() {
	t.lock.Lock()
	t.Stopped = true
	t.lock.Unlock()
	panic(t)
}

// Last returns the most recent typed failure, or nil.
func (t *T) Last() *failure.Failure {
	t.lock.Lock()
	defer t.lock.Unlock()
	if len(t.Failures) == 0 {
		return nil
	}
	return t.Failures[len(t.Failures)-1]
}

// Capture runs action with a fresh T and returns the failure that stopped it, or nil if the
// action completed. Panics other than FailNow are propagated.
func Capture(action func(t *T)) (f *failure.Failure) {
	t := &T{}
	defer func() {
		if r := recover(); r != nil {
			if r != t {
				panic(r)
			}
			f = t.Last()
			if f == nil {
				f = failure.New(0, "%v", t.Messages)
			}
		}
	}()
	action(t)
	return nil
}
