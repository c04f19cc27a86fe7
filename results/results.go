// Package results defines the result shapes a unit under test can produce. Assertions
// narrow a captured value to one of these shapes by its Kind.
package results

import (
	"encoding/json"
	"net/http"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type Kind string

const (
	KindOK       Kind = "OK"
	KindStatus   Kind = "Status"
	KindView     Kind = "View"
	KindJSON     Kind = "JSON"
	KindRedirect Kind = "Redirect"
	KindContent  Kind = "Content"
	KindEmpty    Kind = "Empty"
)

// Result is implemented by every result shape.
type Result interface {
	ResultKind() Kind
}

// OK is a successful result carrying an optional payload.
type OK struct {
	Value interface{}
}

// Status is a result identified by its HTTP status code, with an optional payload.
type Status struct {
	Code  int
	Value interface{}
}

// View renders a named template. An empty Name means the default view for the action.
type View struct {
	Name  string
	Model interface{}
}

// JSON is a serialized payload. StatusCode is undefined when the default (200) applies.
type JSON struct {
	Value      ldvalue.Value
	StatusCode ldvalue.OptionalInt
}

type Redirect struct {
	URL       string
	Permanent bool
}

type Content struct {
	Body        string
	ContentType string
	StatusCode  int
}

// Empty is a result with no body and a 200 status.
type Empty struct{}

func (OK) ResultKind() Kind       { return KindOK }
func (Status) ResultKind() Kind   { return KindStatus }
func (View) ResultKind() Kind     { return KindView }
func (JSON) ResultKind() Kind     { return KindJSON }
func (Redirect) ResultKind() Kind { return KindRedirect }
func (Content) ResultKind() Kind  { return KindContent }
func (Empty) ResultKind() Kind    { return KindEmpty }

func NotFound() Status                    { return Status{Code: http.StatusNotFound} }
func NoContent() Status                   { return Status{Code: http.StatusNoContent} }
func Unauthorized() Status                { return Status{Code: http.StatusUnauthorized} }
func BadRequest(value interface{}) Status { return Status{Code: http.StatusBadRequest, Value: value} }

// JSONOf builds a JSON result from any value that can be marshaled.
func JSONOf(value interface{}) JSON {
	return JSON{Value: ValueOf(value)}
}

// ValueOf converts v to its JSON representation. A value that cannot be marshaled is null.
func ValueOf(v interface{}) ldvalue.Value {
	data, err := json.Marshal(v)
	if err != nil {
		return ldvalue.Null()
	}
	return ldvalue.Parse(data)
}

// ParseJSON parses a JSON document. A document that is not valid JSON is null.
func ParseJSON(data []byte) ldvalue.Value {
	return ldvalue.Parse(data)
}

// KindOf names the shape of v: its Kind for results, its Go type otherwise, or "null".
func KindOf(v interface{}) string {
	if r, ok := AsResult(v); ok {
		return string(r.ResultKind())
	}
	return failure.TypeName(v)
}

// AsResult returns v as a Result, dereferencing pointers to result values.
func AsResult(v interface{}) (Result, bool) {
	switch r := v.(type) {
	case nil:
		return nil, false
	case *OK:
		return derefResult(r)
	case *Status:
		return derefResult(r)
	case *View:
		return derefResult(r)
	case *JSON:
		return derefResult(r)
	case *Redirect:
		return derefResult(r)
	case *Content:
		return derefResult(r)
	case Result:
		return r, true
	}
	return nil, false
}

func derefResult[R Result](r *R) (Result, bool) {
	if r == nil {
		return nil, false
	}
	return *r, true
}

// StatusCodeOf returns the HTTP status code a result stands for.
func StatusCodeOf(r Result) int {
	switch x := r.(type) {
	case Status:
		return x.Code
	case JSON:
		return x.StatusCode.OrElse(http.StatusOK)
	case Redirect:
		if x.Permanent {
			return http.StatusMovedPermanently
		}
		return http.StatusFound
	case Content:
		if x.StatusCode == 0 {
			return http.StatusOK
		}
		return x.StatusCode
	}
	return http.StatusOK
}
