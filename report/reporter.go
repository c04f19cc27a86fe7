package report

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// TestingT is the part of *testing.T that assertions need. *testing.T, testify's
// require.TestingT implementations, and framework.Context all satisfy it.
type TestingT interface {
	Helper()
	Errorf(format string, args ...interface{})
	FailNow()
}

// FailureRecorder is implemented by a TestingT that wants typed failures rather than
// formatted messages.
type FailureRecorder interface {
	RecordFailure(f *failure.Failure)
}

// Reporter compares expected and actual values and raises failures through a TestingT.
//
// Messages have the form "<Prefix> expected <Subject> <description> <expected>, but <actual>."
type Reporter struct {
	T       TestingT
	Prefix  string
	Subject string
	Options []cmp.Option
}

// Fail raises f: the typed failure is recorded (or formatted into Errorf) and the test stops.
func (r Reporter) Fail(f *failure.Failure) {
	r.T.Helper()
	if rec, ok := r.T.(FailureRecorder); ok {
		rec.RecordFailure(f)
	} else {
		r.T.Errorf("%s", f)
	}
	r.T.FailNow()
}

// Failf raises a failure with the standard message template.
func (r Reporter) Failf(kind failure.Kind, description, expected, actual string) {
	r.T.Helper()
	r.Fail(failure.New(kind, "%s", r.Message(description, expected, actual)))
}

// Message builds the standard failure message.
func (r Reporter) Message(description, expected, actual string) string {
	var b strings.Builder
	if r.Prefix != "" {
		b.WriteString(r.Prefix)
		b.WriteString(" expected ")
	} else {
		b.WriteString("Expected ")
	}
	for _, part := range []string{r.Subject, description, expected} {
		if part != "" {
			b.WriteString(part)
			b.WriteByte(' ')
		}
	}
	msg := strings.TrimSuffix(b.String(), " ")
	return fmt.Sprintf("%s, but %s.", msg, actual)
}

// Expect raises a failure of the given kind unless expected and actual are deeply equal.
func (r Reporter) Expect(kind failure.Kind, description string, expected, actual interface{}) {
	r.T.Helper()
	if Equal(expected, actual, r.Options...) {
		return
	}
	exp, act := Render(expected), Render(actual)
	actualText := "in fact found " + act
	if exp == act {
		actualText += fmt.Sprintf(" (difference: %s)", strings.TrimSpace(cmp.Diff(expected, actual, compareOptions(r.Options)...)))
	}
	r.Failf(kind, description, exp, actualText)
}

// ExpectTrue raises a failure with the given renderings unless ok is true.
func (r Reporter) ExpectTrue(kind failure.Kind, ok bool, description, expected, actual string) {
	r.T.Helper()
	if !ok {
		r.Failf(kind, description, expected, actual)
	}
}

// WithSubject returns a copy of r describing a different subject.
func (r Reporter) WithSubject(subject string) Reporter {
	r.Subject = subject
	return r
}

// Equal reports whether a and b are structurally equal. Only exported data is compared;
// unexported fields are treated as plumbing, so types whose state is unexported need an
// Equal method (which go-cmp uses) or a comparer option. Cyclic values are handled.
func Equal(a, b interface{}, opts ...cmp.Option) bool {
	if isNil(a) && isNil(b) {
		return true
	}
	return cmp.Equal(a, b, compareOptions(opts)...)
}

func compareOptions(extra []cmp.Option) []cmp.Option {
	return append([]cmp.Option{
		ignoreUnexported,
		cmp.Comparer(func(a, b ldvalue.OptionalInt) bool { return a == b }),
		cmp.Comparer(func(a, b ldvalue.OptionalString) bool { return a == b }),
	}, extra...)
}

var ignoreUnexported = cmp.FilterPath(func(p cmp.Path) bool {
	sf, ok := p.Last().(cmp.StructField)
	if !ok {
		return false
	}
	r, _ := utf8.DecodeRuneInString(sf.Name())
	return !unicode.IsUpper(r)
}, cmp.Ignore())

// Render formats a value for a failure message. Nil values render as "null".
func Render(v interface{}) string {
	if isNil(v) {
		return "null"
	}
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case error:
		return failure.DescribeError(x)
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && rv.Elem().Kind() == reflect.Struct {
		return fmt.Sprintf("&%+v", rv.Elem().Interface())
	}
	return fmt.Sprintf("%+v", v)
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
