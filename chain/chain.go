package chain

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/framework"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/invoke"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/lazy"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/outcome"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/report"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/store"

	"github.com/google/go-cmp/cmp"
)

var (
	// OutcomeKey holds the captured outcome once the unit under test has run.
	OutcomeKey = lazy.NewKey[*outcome.Outcome]("outcome")
	// ResultKey holds the value the unit under test produced, if it did not fail.
	ResultKey = lazy.NewKey[interface{}]("result")
	// ErrorKey holds the error the unit under test returned, if any.
	ErrorKey = lazy.NewKey[error]("error")
)

// SubjectKey is the context key of the subject of a chain over S.
func SubjectKey[S any]() lazy.Key[S] {
	return lazy.NewKey[S]("subject")
}

// ValueKey is the context key of an ambient value arranged with WithValue.
func ValueKey(name string) lazy.Key[interface{}] {
	return lazy.NewKey[interface{}]("value:" + name)
}

type settings struct {
	ctx         context.Context
	logger      framework.Logger
	options     []cmp.Option
	subjectName string
}

type Option func(*settings)

// WithContext passes ctx to the unit under test. The chain itself does not interpret it.
func WithContext(ctx context.Context) Option {
	return func(s *settings) { s.ctx = ctx }
}

// WithLogger receives debug output about context assembly and invocation. When the
// TestingT is a *framework.Context its debug logger is used by default.
func WithLogger(logger framework.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithCompareOptions adds go-cmp options to every deep comparison in the chain.
func WithCompareOptions(opts ...cmp.Option) Option {
	return func(s *settings) { s.options = append(s.options, opts...) }
}

// WithSubjectName overrides the subject description used in failure messages.
func WithSubjectName(name string) Option {
	return func(s *settings) { s.subjectName = name }
}

// Arrange is the first stage of a chain: the subject and its ambient state are set up.
type Arrange[S any] struct {
	t        report.TestingT
	context  *lazy.Context
	runner   *invoke.Runner
	settings settings
}

// New starts a chain whose subject is of type S.
func New[S any](t report.TestingT, opts ...Option) *Arrange[S] {
	s := settings{ctx: context.Background()}
	if dl, ok := t.(interface{ DebugLogger() framework.Logger }); ok {
		s.logger = dl.DebugLogger()
	}
	for _, o := range opts {
		o(&s)
	}
	if s.logger == nil {
		s.logger = framework.NullLogger()
	}
	if s.subjectName == "" {
		s.subjectName = reflect.TypeOf((*S)(nil)).Elem().String()
	}
	return &Arrange[S]{
		t:        t,
		context:  lazy.New(lazy.WithLogger(s.logger)),
		runner:   invoke.NewRunner(s.logger),
		settings: s,
	}
}

// Context returns the lazy context the chain assembles its state in.
func (a *Arrange[S]) Context() *lazy.Context { return a.context }

func (a *Arrange[S]) WithSubject(subject S) *Arrange[S] {
	lazy.Set(a.context, SubjectKey[S](), subject)
	return a
}

// WithSubjectFactory constructs the subject on first use. The factory may read any other
// arranged state, including state resolved by deferred arrangements.
func (a *Arrange[S]) WithSubjectFactory(factory func(*lazy.Context) (S, error)) *Arrange[S] {
	lazy.Register(a.context, SubjectKey[S](), factory)
	return a
}

// WithStore makes a side-effect store available to the subject and to ShouldHave.
func (a *Arrange[S]) WithStore(name string, s store.Store) *Arrange[S] {
	lazy.Set(a.context, store.Key(name), s)
	return a
}

// WithValue arranges an ambient named value.
func (a *Arrange[S]) WithValue(name string, value interface{}) *Arrange[S] {
	lazy.Set(a.context, ValueKey(name), value)
	return a
}

// Deferred registers an arrangement that is applied just before the unit runs, when the
// name of the action is known.
func (a *Arrange[S]) Deferred(d invoke.Deferred) *Arrange[S] {
	a.runner.Defer(d)
	return a
}

// Calling selects the unit under test. Nothing runs until an assertion stage is entered.
func (a *Arrange[S]) Calling(action string, unit func(S) (interface{}, error)) *Acting[S] {
	return a.CallingContext(action, func(_ context.Context, s S) (interface{}, error) {
		return unit(s)
	})
}

// CallingContext is like Calling for units that take a context or return an invoke.Pending.
func (a *Arrange[S]) CallingContext(action string, unit invoke.Unit[S]) *Acting[S] {
	lazy.Reset(a.context, OutcomeKey)
	lazy.Reset(a.context, ResultKey)
	lazy.Reset(a.context, ErrorKey)
	return &Acting[S]{arrange: a, action: action, unit: unit}
}

// Acting is a chain whose unit under test is known. Entering any assertion stage invokes
// the unit once; later stages reuse the captured outcome.
type Acting[S any] struct {
	arrange *Arrange[S]
	action  string
	unit    invoke.Unit[S]
}

// Outcome invokes the unit if necessary and returns the captured outcome without asserting.
func (a *Acting[S]) Outcome() *outcome.Outcome {
	a.arrange.t.Helper()
	return a.resolve().outcome
}

// ShouldReturn asserts that the unit did not fail and begins assertions about its result.
func (a *Acting[S]) ShouldReturn() *Returns {
	a.arrange.t.Helper()
	return newReturns(a.resolve())
}

// ShouldThrow asserts that the unit failed and begins assertions about its error.
func (a *Acting[S]) ShouldThrow() *Throws {
	a.arrange.t.Helper()
	return newThrows(a.resolve())
}

// ShouldHave begins assertions about side effects, regardless of the result.
func (a *Acting[S]) ShouldHave() *Has {
	a.arrange.t.Helper()
	return &Has{base{a.resolve()}}
}

func (a *Acting[S]) resolve() *state {
	ar := a.arrange
	o, err := lazy.GetOrCompute(ar.context, OutcomeKey, func(c *lazy.Context) (*outcome.Outcome, error) {
		call := invoke.Call{Action: a.action, SubjectType: ar.settings.subjectName, Context: c}
		subject := func() (S, error) { return lazy.Get(c, SubjectKey[S]()) }
		o := invoke.Invoke(ar.settings.ctx, ar.runner, call, subject, a.unit)
		lazy.Set(c, ErrorKey, o.Err())
		lazy.Set(c, ResultKey, o.Value())
		return o, nil
	})
	st := &state{
		t:       ar.t,
		context: ar.context,
		outcome: o,
		prefix:  fmt.Sprintf("When calling %s on %s", a.action, ar.settings.subjectName),
		options: ar.settings.options,
	}
	if err != nil {
		st.raiseError(err)
		return st
	}
	// A subject that could not be resolved is a broken arrangement, not an error of the unit.
	var se *invoke.SubjectError
	var f *failure.Failure
	if errors.As(o.Err(), &se) && errors.As(se.Err, &f) {
		st.raise(f)
	}
	return st
}

// state is what every assertion stage closes over.
type state struct {
	t       report.TestingT
	context *lazy.Context
	outcome *outcome.Outcome
	prefix  string
	options []cmp.Option
}

func (s *state) reporter(subject string) report.Reporter {
	return report.Reporter{T: s.t, Prefix: s.prefix, Subject: subject, Options: s.options}
}

// raise reports a failure produced outside the reporter, adding the call prefix.
func (s *state) raise(f *failure.Failure) {
	s.t.Helper()
	msg := f.Message
	if s.prefix != "" {
		msg = s.prefix + " " + msg
	}
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	s.reporter("").Fail(failure.New(f.Kind, "%s", msg))
}

func (s *state) raiseError(err error) {
	s.t.Helper()
	var f *failure.Failure
	if errors.As(err, &f) {
		s.raise(f)
		return
	}
	s.raise(failure.New(failure.MissingContextValue, "%s", err))
}

// base is embedded in every assertion stage. It provides the crossings between stages,
// none of which invoke the unit again.
type base struct {
	st *state
}

func (b base) chainState() *state { return b.st }

// Context returns the lazy context of the chain.
func (b base) Context() *lazy.Context { return b.st.context }

// ShouldReturn switches to assertions about the result.
func (b base) ShouldReturn() *Returns {
	b.st.t.Helper()
	return newReturns(b.st)
}

// ShouldThrow switches to assertions about the error.
func (b base) ShouldThrow() *Throws {
	b.st.t.Helper()
	return newThrows(b.st)
}

// ShouldHave switches to assertions about side effects.
func (b base) ShouldHave() *Has {
	return &Has{b}
}
