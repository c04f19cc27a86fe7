package chain

import (
	"fmt"
	"strings"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/results"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// OKResult asserts on an OK result.
type OKResult struct {
	base
	result results.OK
}

func (o *OKResult) AndAlso() *OKResult { return o }

// Value returns the payload of the result.
func (o *OKResult) Value() interface{} { return o.result.Value }

// WithValue asserts that the payload deeply equals expected.
func (o *OKResult) WithValue(expected interface{}) *OKResult {
	o.st.t.Helper()
	o.st.reporter("OK result value").Expect(failure.ValueMismatch, "to equal", expected, o.result.Value)
	return o
}

// WithNoValue asserts that the result carries no payload.
func (o *OKResult) WithNoValue() *OKResult {
	o.st.t.Helper()
	o.st.reporter("OK result value").Expect(failure.ValueMismatch, "to be", nil, o.result.Value)
	return o
}

// WithValueOfType asserts that the payload has exactly the dynamic type of sample.
func (o *OKResult) WithValueOfType(sample interface{}) *OKResult {
	o.st.t.Helper()
	want, got := failure.TypeName(sample), failure.TypeName(o.result.Value)
	o.st.reporter("OK result value").ExpectTrue(failure.WrongResultShape, want == got,
		"to be of type", want, "in fact it was "+got)
	return o
}

// Passing asserts that predicate holds for the payload.
func (o *OKResult) Passing(predicate func(interface{}) bool) *OKResult {
	o.st.t.Helper()
	o.st.reporter("OK result value").ExpectTrue(failure.CustomPredicateFailed, predicate(o.result.Value),
		"to pass", "the given predicate", "it failed")
	return o
}

// PayloadAs returns the payload of an OK result as a T.
func PayloadAs[T any](o *OKResult) T {
	o.st.t.Helper()
	v, ok := o.result.Value.(T)
	if !ok {
		o.st.reporter("OK result value").Failf(failure.WrongResultShape, "to be of type", typeName[T](),
			"in fact it was "+failure.TypeName(o.result.Value))
	}
	return v
}

// ViewResult asserts on a View result.
type ViewResult struct {
	base
	result results.View
}

func (v *ViewResult) AndAlso() *ViewResult { return v }

func (v *ViewResult) Name() string { return v.result.Name }

func (v *ViewResult) Model() interface{} { return v.result.Model }

func (v *ViewResult) WithName(name string) *ViewResult {
	v.st.t.Helper()
	v.st.reporter("view name").Expect(failure.ValueMismatch, "to be", name, v.result.Name)
	return v
}

// WithDefaultName asserts that the view was not named, so the action's default view applies.
func (v *ViewResult) WithDefaultName() *ViewResult {
	v.st.t.Helper()
	v.st.reporter("view").ExpectTrue(failure.ValueMismatch, v.result.Name == "",
		"to be", "the default view", fmt.Sprintf("in fact it was %q", v.result.Name))
	return v
}

func (v *ViewResult) WithModel(expected interface{}) *ViewResult {
	v.st.t.Helper()
	v.st.reporter("view model").Expect(failure.ValueMismatch, "to equal", expected, v.result.Model)
	return v
}

func (v *ViewResult) WithNoModel() *ViewResult {
	v.st.t.Helper()
	v.st.reporter("view model").Expect(failure.ValueMismatch, "to be", nil, v.result.Model)
	return v
}

func (v *ViewResult) WithModelOfType(sample interface{}) *ViewResult {
	v.st.t.Helper()
	want, got := failure.TypeName(sample), failure.TypeName(v.result.Model)
	v.st.reporter("view model").ExpectTrue(failure.WrongResultShape, want == got,
		"to be of type", want, "in fact it was "+got)
	return v
}

func (v *ViewResult) ModelPassing(predicate func(interface{}) bool) *ViewResult {
	v.st.t.Helper()
	v.st.reporter("view model").ExpectTrue(failure.CustomPredicateFailed, predicate(v.result.Model),
		"to pass", "the given predicate", "it failed")
	return v
}

// JSONResult asserts on a JSON result.
type JSONResult struct {
	base
	result results.JSON
}

func (j *JSONResult) AndAlso() *JSONResult { return j }

func (j *JSONResult) Value() ldvalue.Value { return j.result.Value }

func (j *JSONResult) WithValue(expected ldvalue.Value) *JSONResult {
	j.st.t.Helper()
	j.st.reporter("JSON value").Expect(failure.ValueMismatch, "to equal", expected, j.result.Value)
	return j
}

// WithJSON compares the result with a JSON document. Key order and whitespace do not matter.
func (j *JSONResult) WithJSON(document string) *JSONResult {
	j.st.t.Helper()
	return j.WithValue(results.ParseJSON([]byte(document)))
}

// WithValueFrom compares the result with the JSON representation of v.
func (j *JSONResult) WithValueFrom(v interface{}) *JSONResult {
	j.st.t.Helper()
	return j.WithValue(results.ValueOf(v))
}

// WithProperty asserts on a single top-level property of a JSON object.
func (j *JSONResult) WithProperty(name string, expected ldvalue.Value) *JSONResult {
	j.st.t.Helper()
	rep := j.st.reporter(fmt.Sprintf("JSON property %q", name))
	actual, found := j.result.Value.TryGetByKey(name)
	rep.ExpectTrue(failure.ValueMismatch, found, "to be", expected.JSONString(), "it was not present")
	rep.Expect(failure.ValueMismatch, "to be", expected, actual)
	return j
}

func (j *JSONResult) WithStatusCode(code int) *JSONResult {
	j.st.t.Helper()
	actual := results.StatusCodeOf(j.result)
	j.st.reporter("JSON result").ExpectTrue(failure.WrongResultShape, actual == code,
		"to have status code", fmt.Sprint(code), fmt.Sprintf("in fact it had %d", actual))
	return j
}

// RedirectResult asserts on a Redirect result.
type RedirectResult struct {
	base
	result results.Redirect
}

func (r *RedirectResult) AndAlso() *RedirectResult { return r }

func (r *RedirectResult) URL() string { return r.result.URL }

func (r *RedirectResult) To(url string) *RedirectResult {
	r.st.t.Helper()
	r.st.reporter("redirect location").Expect(failure.ValueMismatch, "to be", url, r.result.URL)
	return r
}

func (r *RedirectResult) Permanent() *RedirectResult {
	r.st.t.Helper()
	r.st.reporter("redirect").ExpectTrue(failure.ValueMismatch, r.result.Permanent,
		"to be", "permanent", "in fact it was temporary")
	return r
}

func (r *RedirectResult) Temporary() *RedirectResult {
	r.st.t.Helper()
	r.st.reporter("redirect").ExpectTrue(failure.ValueMismatch, !r.result.Permanent,
		"to be", "temporary", "in fact it was permanent")
	return r
}

// ContentResult asserts on a Content result.
type ContentResult struct {
	base
	result results.Content
}

func (c *ContentResult) AndAlso() *ContentResult { return c }

func (c *ContentResult) Body() string { return c.result.Body }

func (c *ContentResult) WithBody(body string) *ContentResult {
	c.st.t.Helper()
	c.st.reporter("content").Expect(failure.ValueMismatch, "to be", body, c.result.Body)
	return c
}

func (c *ContentResult) Containing(text string) *ContentResult {
	c.st.t.Helper()
	c.st.reporter("content").ExpectTrue(failure.ValueMismatch, strings.Contains(c.result.Body, text),
		"to contain", fmt.Sprintf("%q", text), fmt.Sprintf("in fact it was %q", c.result.Body))
	return c
}

// WithContentType compares media types, ignoring parameters such as charset.
func (c *ContentResult) WithContentType(contentType string) *ContentResult {
	c.st.t.Helper()
	actual, _, _ := strings.Cut(c.result.ContentType, ";")
	c.st.reporter("content type").Expect(failure.ValueMismatch, "to be",
		strings.TrimSpace(contentType), strings.TrimSpace(actual))
	return c
}
