package invoke

import (
	"context"
	"runtime/debug"
	"sync"
)

// Pending is a value that is still being computed. A unit of work that returns a Pending is
// treated as asynchronous: the runner waits for it before the outcome is resolved.
type Pending interface {
	Await(ctx context.Context) (interface{}, error)
}

// Result is the settled state of an asynchronous computation.
type Result struct {
	Value interface{}
	Err   error
}

// Future is a Pending that is settled exactly once by Resolve or Reject.
type Future struct {
	done   chan struct{}
	result Result
	once   sync.Once
}

func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Go runs fn in a new goroutine and settles the returned Future with its result. A panic in
// fn rejects the Future with a *PanicError.
func Go(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) *Future {
	f := NewFuture()
	go func() {
		defer func() {
			if p := recover(); p != nil {
				f.Reject(&PanicError{Value: p, Stack: debug.Stack()})
			}
		}()
		v, err := fn(ctx)
		f.settle(Result{Value: v, Err: err})
	}()
	return f
}

func (f *Future) Resolve(value interface{}) { f.settle(Result{Value: value}) }

func (f *Future) Reject(err error) { f.settle(Result{Err: err}) }

func (f *Future) settle(r Result) {
	f.once.Do(func() {
		f.result = r
		close(f.done)
	})
}

func (f *Future) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type channelPending <-chan Result

func (c channelPending) Await(ctx context.Context) (interface{}, error) {
	select {
	case r, ok := <-c:
		if !ok {
			return nil, nil
		}
		return r.Value, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FromChannel adapts a channel that delivers a single Result.
func FromChannel(ch <-chan Result) Pending {
	return channelPending(ch)
}
