// Package outcome holds the captured result of invoking a unit under test.
package outcome

import (
	"sync"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
)

// Outcome is either a produced value or a returned error. The zero value is unresolved.
//
// Only the first call to Complete or Fail has any effect; the outcome is permanent after that.
type Outcome struct {
	value    interface{}
	err      error
	resolved bool
	lock     sync.Mutex
}

// Complete records a produced value. It reports whether the call resolved the outcome.
func (o *Outcome) Complete(value interface{}) bool {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.resolved {
		return false
	}
	o.value = value
	o.resolved = true
	return true
}

// Fail records an error. A nil error is the same as Complete(nil).
func (o *Outcome) Fail(err error) bool {
	if err == nil {
		return o.Complete(nil)
	}
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.resolved {
		return false
	}
	o.err = err
	o.resolved = true
	return true
}

func (o *Outcome) IsResolved() bool {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.resolved
}

func (o *Outcome) Value() interface{} {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.value
}

func (o *Outcome) Err() error {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.err
}

// RequireNoError returns an UnexpectedError failure if the outcome holds an error.
func (o *Outcome) RequireNoError() *failure.Failure {
	o.lock.Lock()
	defer o.lock.Unlock()
	if !o.resolved {
		return unresolved()
	}
	if o.err != nil {
		return failure.New(failure.UnexpectedError,
			"expected no error, but %s was returned", failure.DescribeError(o.err))
	}
	return nil
}

// RequireError returns the captured error, or an ExpectedErrorMissing failure if there is none.
func (o *Outcome) RequireError() (error, *failure.Failure) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if !o.resolved {
		return nil, unresolved()
	}
	if o.err == nil {
		return nil, failure.New(failure.ExpectedErrorMissing,
			"expected an error, but none was returned")
	}
	return o.err, nil
}

func unresolved() *failure.Failure {
	return failure.New(failure.MissingContextValue, "the unit under test has not been invoked yet")
}
