package invoke

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/framework"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/lazy"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/outcome"

	"github.com/google/uuid"
)

// Call describes the invocation that is about to happen. Deferred arrangements receive it so
// that they can resolve state that depends on the call target.
type Call struct {
	Action      string
	SubjectType string
	Context     *lazy.Context
}

// Deferred is an arrangement that can only be applied once the call target is known.
type Deferred func(Call) error

// Unit is the work under test.
type Unit[S any] func(ctx context.Context, subject S) (interface{}, error)

// PanicError is returned in place of a panic raised by the unit under test.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// SubjectError is captured when the subject could not be resolved, so the unit never ran.
type SubjectError struct {
	SubjectType string
	Err         error
}

func (s *SubjectError) Error() string {
	return fmt.Sprintf("resolving %s: %s", s.SubjectType, s.Err)
}

func (s *SubjectError) Unwrap() error { return s.Err }

// Runner invokes units of work and captures their outcomes. It performs no assertions.
type Runner struct {
	deferred []Deferred
	logger   framework.Logger
	lock     sync.Mutex
}

func NewRunner(logger framework.Logger) *Runner {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Runner{logger: logger}
}

// Defer registers an arrangement to apply, in registration order, just before every
// invocation.
func (r *Runner) Defer(d Deferred) {
	r.lock.Lock()
	r.deferred = append(r.deferred, d)
	r.lock.Unlock()
}

func (r *Runner) applyDeferred(call Call) error {
	r.lock.Lock()
	pending := append([]Deferred(nil), r.deferred...)
	r.lock.Unlock()
	for _, d := range pending {
		if err := d(call); err != nil {
			return fmt.Errorf("applying arrangement for %s: %w", call.Action, err)
		}
	}
	return nil
}

// Invoke applies deferred arrangements, resolves the subject, runs the unit, waits for it if
// it is asynchronous, and captures the value or error. A single-error aggregate is captured
// as its inner error.
func Invoke[S any](
	ctx context.Context,
	r *Runner,
	call Call,
	subject func() (S, error),
	unit Unit[S],
) *outcome.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	id := uuid.New().String()
	o := &outcome.Outcome{}
	r.logger.Printf("invocation %s: calling %s on %s", id, call.Action, call.SubjectType)

	if err := r.applyDeferred(call); err != nil {
		r.logger.Printf("invocation %s: %s", id, err)
		o.Fail(err)
		return o
	}

	s, err := subject()
	if err != nil {
		err = &SubjectError{SubjectType: call.SubjectType, Err: err}
		r.logger.Printf("invocation %s: %s", id, err)
		o.Fail(err)
		return o
	}

	value, err := runUnit(ctx, s, unit)
	if err == nil {
		if p, ok := value.(Pending); ok {
			r.logger.Printf("invocation %s: awaiting asynchronous result", id)
			value, err = await(ctx, p)
		}
	}
	if err != nil {
		err = failure.Unwrap(err)
		r.logger.Printf("invocation %s: returned error %s", id, failure.DescribeError(err))
		o.Fail(err)
		return o
	}
	r.logger.Printf("invocation %s: returned %s", id, failure.TypeName(value))
	o.Complete(value)
	return o
}

func runUnit[S any](ctx context.Context, s S, unit Unit[S]) (value interface{}, err error) {
	defer func() {
		if p := recover(); p != nil {
			value, err = nil, &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	return unit(ctx, s)
}

func await(ctx context.Context, p Pending) (value interface{}, err error) {
	defer func() {
		if x := recover(); x != nil {
			value, err = nil, &PanicError{Value: x, Stack: debug.Stack()}
		}
	}()
	return p.Await(ctx)
}
