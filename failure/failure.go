package failure

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Kind identifies a category of assertion failure.
type Kind int

const (
	// UnexpectedError means a result assertion was attempted but the invocation returned an error.
	UnexpectedError Kind = iota + 1
	// ExpectedErrorMissing means an error assertion was attempted but the invocation succeeded.
	ExpectedErrorMissing
	WrongErrorType
	WrongResultShape
	MessageMismatch
	CustomPredicateFailed
	MissingContextValue
	// ValueMismatch is raised by plain expected/actual comparisons.
	ValueMismatch
	// SideEffectMismatch is raised by assertions over side-effect stores.
	SideEffectMismatch
)

var kindNames = map[Kind]string{
	UnexpectedError:       "UnexpectedError",
	ExpectedErrorMissing:  "ExpectedErrorMissing",
	WrongErrorType:        "WrongErrorType",
	WrongResultShape:      "WrongResultShape",
	MessageMismatch:       "MessageMismatch",
	CustomPredicateFailed: "CustomPredicateFailed",
	MissingContextValue:   "MissingContextValue",
	ValueMismatch:         "ValueMismatch",
	SideEffectMismatch:    "SideEffectMismatch",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Failure is an assertion failure. It carries only a kind and a human-readable message.
type Failure struct {
	Kind    Kind
	Message string
}

// Sentinels for use with errors.Is; any Failure of the same kind matches.
var (
	ErrUnexpectedError       = &Failure{Kind: UnexpectedError}
	ErrExpectedErrorMissing  = &Failure{Kind: ExpectedErrorMissing}
	ErrWrongErrorType        = &Failure{Kind: WrongErrorType}
	ErrWrongResultShape      = &Failure{Kind: WrongResultShape}
	ErrMessageMismatch       = &Failure{Kind: MessageMismatch}
	ErrCustomPredicateFailed = &Failure{Kind: CustomPredicateFailed}
	ErrMissingContextValue   = &Failure{Kind: MissingContextValue}
	ErrValueMismatch         = &Failure{Kind: ValueMismatch}
	ErrSideEffectMismatch    = &Failure{Kind: SideEffectMismatch}
)

func New(kind Kind, format string, args ...interface{}) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	return ok && t.Kind == f.Kind
}

// KindOf returns the kind of the first Failure in err's chain.
func KindOf(err error) (Kind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return 0, false
}

type multiUnwrapper interface {
	Unwrap() []error
}

// Unwrap returns the sole inner error of a single-child aggregate, and err otherwise.
func Unwrap(err error) error {
	if agg, ok := err.(multiUnwrapper); ok {
		inner := nonNil(agg.Unwrap())
		if len(inner) == 1 {
			return Unwrap(inner[0])
		}
	}
	return err
}

// DescribeError renders an error as `<type> with "<message>" message`. Aggregates of more
// than one error list each inner error as `(containing a, b)`.
func DescribeError(err error) string {
	if err == nil {
		return "null"
	}
	err = Unwrap(err)
	if agg, ok := err.(multiUnwrapper); ok {
		inner := nonNil(agg.Unwrap())
		if len(inner) > 1 {
			parts := make([]string, 0, len(inner))
			for _, e := range inner {
				parts = append(parts, DescribeError(e))
			}
			return fmt.Sprintf("%s (containing %s)", TypeName(err), strings.Join(parts, ", "))
		}
	}
	return fmt.Sprintf("%s with %q message", TypeName(err), err.Error())
}

// TypeName is the Go type of v as written in source, e.g. "*errors.errorString".
func TypeName(v interface{}) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}

func nonNil(errs []error) []error {
	ret := make([]error, 0, len(errs))
	for _, e := range errs {
		if e != nil {
			ret = append(ret, e)
		}
	}
	return ret
}
