package chain

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/report"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/results"

	"github.com/expr-lang/expr"
)

// Returns asserts on the value the unit under test produced.
type Returns struct {
	base
	value interface{}
}

func newReturns(st *state) *Returns {
	st.t.Helper()
	if f := st.outcome.RequireNoError(); f != nil {
		st.raise(f)
	}
	return &Returns{base: base{st}, value: st.outcome.Value()}
}

func (r *Returns) reporter() report.Reporter { return r.st.reporter("result") }

// Actual returns the produced value.
func (r *Returns) Actual() interface{} { return r.value }

// AndAlso returns r unchanged.
func (r *Returns) AndAlso() *Returns { return r }

func (r *Returns) narrow(kind results.Kind) results.Result {
	r.st.t.Helper()
	res, ok := results.AsResult(r.value)
	if !ok || res.ResultKind() != kind {
		r.reporter().Failf(failure.WrongResultShape, "to be", string(kind),
			"in fact it was "+results.KindOf(r.value))
	}
	return res
}

// Status asserts that the value is a result standing for the given HTTP status code.
func (r *Returns) Status(code int) *Returns {
	r.st.t.Helper()
	res, ok := results.AsResult(r.value)
	if !ok {
		r.reporter().Failf(failure.WrongResultShape, "to have status code", fmt.Sprint(code),
			"in fact it was "+results.KindOf(r.value))
	}
	actual := results.StatusCodeOf(res)
	r.reporter().ExpectTrue(failure.WrongResultShape, actual == code, "to have status code", fmt.Sprint(code),
		fmt.Sprintf("in fact it had %d", actual))
	return r
}

func (r *Returns) NotFound() *Returns  { return r.Status(http.StatusNotFound) }
func (r *Returns) NoContent() *Returns { return r.Status(http.StatusNoContent) }

// BadRequest asserts a 400 result. The payload, if any, can be checked with Satisfying.
func (r *Returns) BadRequest() *Returns { return r.Status(http.StatusBadRequest) }

func (r *Returns) OK() *OKResult {
	r.st.t.Helper()
	return &OKResult{base: r.base, result: r.narrow(results.KindOK).(results.OK)}
}

func (r *Returns) View() *ViewResult {
	r.st.t.Helper()
	return &ViewResult{base: r.base, result: r.narrow(results.KindView).(results.View)}
}

func (r *Returns) JSON() *JSONResult {
	r.st.t.Helper()
	return &JSONResult{base: r.base, result: r.narrow(results.KindJSON).(results.JSON)}
}

func (r *Returns) Redirect() *RedirectResult {
	r.st.t.Helper()
	return &RedirectResult{base: r.base, result: r.narrow(results.KindRedirect).(results.Redirect)}
}

func (r *Returns) Content() *ContentResult {
	r.st.t.Helper()
	return &ContentResult{base: r.base, result: r.narrow(results.KindContent).(results.Content)}
}

func (r *Returns) Empty() *Returns {
	r.st.t.Helper()
	r.narrow(results.KindEmpty)
	return r
}

// Nil asserts that the unit produced no value.
func (r *Returns) Nil() *Returns {
	r.st.t.Helper()
	r.reporter().Expect(failure.ValueMismatch, "to be", nil, r.value)
	return r
}

// Value asserts that the produced value deeply equals expected.
func (r *Returns) Value(expected interface{}) *Returns {
	r.st.t.Helper()
	r.reporter().Expect(failure.ValueMismatch, "to equal", expected, r.value)
	return r
}

// OfType asserts that the produced value has exactly the dynamic type of sample.
func (r *Returns) OfType(sample interface{}) *Returns {
	r.st.t.Helper()
	want, got := reflect.TypeOf(sample), reflect.TypeOf(r.value)
	if want != got {
		r.reporter().Failf(failure.WrongResultShape, "to be of type", failure.TypeName(sample),
			"in fact it was "+failure.TypeName(r.value))
	}
	return r
}

// Passing asserts that predicate holds for the produced value.
func (r *Returns) Passing(predicate func(interface{}) bool) *Returns {
	r.st.t.Helper()
	r.reporter().ExpectTrue(failure.CustomPredicateFailed, predicate(r.value),
		"to pass", "the given predicate", "it failed")
	return r
}

// Satisfying evaluates a boolean expr-lang expression against the produced value. The
// expression sees Value (the produced value), Kind (its shape name), and Status (the HTTP
// status code, for results).
func (r *Returns) Satisfying(expression string) *Returns {
	r.st.t.Helper()
	r.reporter().ExpectTrue(failure.CustomPredicateFailed, evaluate(r.reporter(), expression, r.value),
		"to satisfy", fmt.Sprintf("`%s`", expression), "it did not")
	return r
}

func evaluate(rep report.Reporter, expression string, value interface{}) bool {
	rep.T.Helper()
	env := map[string]interface{}{
		"Value":  value,
		"Kind":   results.KindOf(value),
		"Status": 0,
	}
	if res, ok := results.AsResult(value); ok {
		env["Value"] = res
		env["Status"] = results.StatusCodeOf(res)
	}
	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		rep.Failf(failure.CustomPredicateFailed, "to satisfy", fmt.Sprintf("`%s`", expression),
			fmt.Sprintf("the expression is invalid: %s", err))
	}
	out, err := expr.Run(program, env)
	if err != nil {
		rep.Failf(failure.CustomPredicateFailed, "to satisfy", fmt.Sprintf("`%s`", expression),
			fmt.Sprintf("evaluating it failed: %s", err))
	}
	ok, _ := out.(bool)
	return ok
}

// ValueAs returns the produced value as a T, raising a WrongResultShape failure otherwise.
func ValueAs[T any](r *Returns) T {
	r.st.t.Helper()
	v, ok := r.value.(T)
	if !ok {
		r.reporter().Failf(failure.WrongResultShape, "to be of type", typeName[T](),
			"in fact it was "+failure.TypeName(r.value))
	}
	return v
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
