package chain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Throws asserts on the error the unit under test returned.
type Throws struct {
	base
	err error
}

func newThrows(st *state) *Throws {
	st.t.Helper()
	err, f := st.outcome.RequireError()
	if f != nil {
		st.raise(f)
	}
	return &Throws{base: base{st}, err: err}
}

func (t *Throws) AndAlso() *Throws { return t }

// Err returns the error under assertion. After OfType it is the matched error.
func (t *Throws) Err() error { return t.err }

// OfType asserts that the error, or an error it wraps, can be assigned to *target, the way
// errors.As does. On success *target is set and later assertions apply to that error.
func (t *Throws) OfType(target interface{}) *Throws {
	t.st.t.Helper()
	tv := reflect.ValueOf(target)
	if target == nil || tv.Kind() != reflect.Ptr || tv.IsNil() {
		panic("chain: OfType target must be a non-nil pointer")
	}
	want := tv.Type().Elem()
	if want.Kind() != reflect.Interface && !want.Implements(errorType) {
		panic("chain: OfType target must point to an interface or to a type implementing error")
	}
	if !errors.As(t.err, target) {
		t.st.reporter("error").Failf(failure.WrongErrorType, "to be", want.String(),
			"in fact found "+failure.TypeName(t.err))
	}
	if matched, ok := tv.Elem().Interface().(error); ok && matched != nil {
		t.err = matched
	}
	return t
}

// Is asserts that target is in the error's chain, as errors.Is reports it.
func (t *Throws) Is(target error) *Throws {
	t.st.t.Helper()
	t.st.reporter("error").ExpectTrue(failure.WrongErrorType, errors.Is(t.err, target),
		"to wrap", failure.DescribeError(target), "in fact found "+failure.DescribeError(t.err))
	return t
}

// Passing asserts that predicate holds for the error.
func (t *Throws) Passing(predicate func(error) bool) *Throws {
	t.st.t.Helper()
	t.st.reporter("error").ExpectTrue(failure.CustomPredicateFailed, predicate(t.err),
		"to pass", "the given predicate", "it failed")
	return t
}

// WithMessage begins assertions about the text of the error.
func (t *Throws) WithMessage() *Message {
	return &Message{throws: t}
}

// Message asserts on the text of an error. Each check returns the originating Throws.
type Message struct {
	throws *Throws
}

func (m *Message) check(ok bool, description, expected string) *Throws {
	st := m.throws.st
	st.t.Helper()
	st.reporter("error message").ExpectTrue(failure.MessageMismatch, ok, description,
		fmt.Sprintf("%q", expected), fmt.Sprintf("in fact it was %q", m.throws.err.Error()))
	return m.throws
}

func (m *Message) ThatEquals(text string) *Throws {
	m.throws.st.t.Helper()
	return m.check(m.throws.err.Error() == text, "to be", text)
}

func (m *Message) BeginningWith(prefix string) *Throws {
	m.throws.st.t.Helper()
	return m.check(strings.HasPrefix(m.throws.err.Error(), prefix), "to begin with", prefix)
}

func (m *Message) EndingWith(suffix string) *Throws {
	m.throws.st.t.Helper()
	return m.check(strings.HasSuffix(m.throws.err.Error(), suffix), "to end with", suffix)
}

func (m *Message) Containing(text string) *Throws {
	m.throws.st.t.Helper()
	return m.check(strings.Contains(m.throws.err.Error(), text), "to contain", text)
}

// Matching asserts that the message matches a regular expression. An invalid pattern is
// reported as a mismatch.
func (m *Message) Matching(pattern string) *Throws {
	m.throws.st.t.Helper()
	re, err := regexp.Compile(pattern)
	if err != nil {
		m.throws.st.reporter("error message").Failf(failure.MessageMismatch, "to match",
			fmt.Sprintf("%q", pattern), fmt.Sprintf("the pattern is invalid: %s", err))
	}
	return m.check(re.MatchString(m.throws.err.Error()), "to match", pattern)
}
