package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nullReferenceError struct{ msg string }

func (e *nullReferenceError) Error() string { return e.msg }

func TestFailureMatchesSentinelOfSameKind(t *testing.T) {
	f := New(WrongErrorType, "expected %s", "x")
	assert.True(t, errors.Is(f, ErrWrongErrorType))
	assert.False(t, errors.Is(f, ErrMessageMismatch))
	assert.Equal(t, "WrongErrorType: expected x", f.Error())
}

func TestKindOfWrappedFailure(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(MissingContextValue, "no key"))
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, MissingContextValue, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "UnexpectedError", UnexpectedError.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestDescribeError(t *testing.T) {
	err := &nullReferenceError{msg: "boom"}
	assert.Equal(t, `*failure.nullReferenceError with "boom" message`, DescribeError(err))
	assert.Equal(t, "null", DescribeError(nil))
}

func TestDescribeSingleErrorAggregateAsInnerError(t *testing.T) {
	inner := &nullReferenceError{msg: "boom"}
	assert.Equal(t, DescribeError(inner), DescribeError(errors.Join(inner)))
	assert.Equal(t, DescribeError(inner), DescribeError(errors.Join(nil, inner)))
	assert.Same(t, inner, Unwrap(errors.Join(inner)))
}

func TestDescribeMultiErrorAggregate(t *testing.T) {
	e1 := &nullReferenceError{msg: "first"}
	e2 := errors.New("second")
	agg := errors.Join(e1, e2)

	desc := DescribeError(agg)
	assert.Contains(t, desc, "(containing "+DescribeError(e1)+", "+DescribeError(e2)+")")
	assert.Equal(t, agg, Unwrap(agg))
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "null", TypeName(nil))
	assert.Equal(t, "int", TypeName(3))
	assert.Equal(t, "*failure.nullReferenceError", TypeName(&nullReferenceError{}))
}
