package httpmvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/chain"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/invoke"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/lazy"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/report"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/results"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/store"
)

// Names of the stores a served request leaves behind.
const (
	HeadersStore = "headers"
	CookiesStore = "cookies"
)

var (
	methodKey  = lazy.NewKey[string]("method")
	pathKey    = lazy.NewKey[string]("path")
	bodyKey    = lazy.NewKey[[]byte]("body")
	headerKey  = lazy.NewKey[http.Header]("header")
	queryKey   = lazy.NewKey[url.Values]("query")
	cookiesKey = lazy.NewKey[[]*http.Cookie]("cookies")

	// RequestKey holds the *http.Request that was served, in the "request" child context.
	RequestKey = lazy.NewKey[*http.Request]("served")
	// ResponseKey holds the recorded response, in the chain's root context.
	ResponseKey = lazy.NewKey[*httptest.ResponseRecorder]("response")
)

// Request arranges an HTTP request to an http.Handler. Every part of the request is optional:
// the method defaults to GET and the path to "/<action>".
type Request struct {
	arrange      *chain.Arrange[http.Handler]
	request      *lazy.Context
	explicitPath bool
}

// Handler starts a chain whose subject is h.
func Handler(t report.TestingT, h http.Handler, opts ...chain.Option) *Request {
	t.Helper()
	opts = append([]chain.Option{chain.WithSubjectName(failure.TypeName(h))}, opts...)
	a := chain.New[http.Handler](t, opts...).WithSubject(h)
	req := a.Context().Child("request")
	lazy.Register(req, methodKey, func(*lazy.Context) (string, error) { return http.MethodGet, nil })
	lazy.Register(req, headerKey, func(*lazy.Context) (http.Header, error) { return make(http.Header), nil })
	lazy.Register(req, queryKey, func(*lazy.Context) (url.Values, error) { return make(url.Values), nil })
	lazy.Register(req, bodyKey, func(*lazy.Context) ([]byte, error) { return nil, nil })
	lazy.Register(req, cookiesKey, func(*lazy.Context) ([]*http.Cookie, error) { return nil, nil })
	r := &Request{arrange: a, request: req}
	a.Deferred(func(call invoke.Call) error {
		if !r.explicitPath {
			lazy.Set(req, pathKey, "/"+call.Action)
		}
		return nil
	})
	return r
}

// Arrange gives access to the underlying chain, for stores and values the handler reads.
func (r *Request) Arrange() *chain.Arrange[http.Handler] { return r.arrange }

func (r *Request) WithMethod(method string) *Request {
	lazy.Set(r.request, methodKey, method)
	return r
}

// WithPath sets the request path for every later call, replacing the "/<action>" default.
func (r *Request) WithPath(path string) *Request {
	lazy.Set(r.request, pathKey, path)
	r.explicitPath = true
	return r
}

func (r *Request) WithHeader(name, value string) *Request {
	h, _ := lazy.Get(r.request, headerKey)
	h.Add(name, value)
	return r
}

func (r *Request) WithQuery(name, value string) *Request {
	q, _ := lazy.Get(r.request, queryKey)
	q.Add(name, value)
	return r
}

func (r *Request) WithBody(body string) *Request {
	lazy.Set(r.request, bodyKey, []byte(body))
	return r
}

// WithJSONBody sets the body to the JSON representation of v and the content type to
// application/json.
func (r *Request) WithJSONBody(v interface{}) *Request {
	lazy.Set(r.request, bodyKey, []byte(results.ValueOf(v).JSONString()))
	return r.WithHeader("Content-Type", "application/json")
}

func (r *Request) WithCookie(name, value string) *Request {
	cookies, _ := lazy.Get(r.request, cookiesKey)
	lazy.Set(r.request, cookiesKey, append(cookies, &http.Cookie{Name: name, Value: value}))
	return r
}

// Calling selects the action to request. The handler is served when the first assertion
// stage is entered.
func (r *Request) Calling(action string) *chain.Acting[http.Handler] {
	return r.arrange.CallingContext(action, r.serve)
}

func (r *Request) serve(ctx context.Context, h http.Handler) (interface{}, error) {
	req, err := r.build(ctx)
	if err != nil {
		return nil, err
	}
	lazy.Set(r.request, RequestKey, req)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	root := r.arrange.Context()
	lazy.Set(root, ResponseKey, rec)
	resp := rec.Result()
	lazy.Set(root, store.Key(HeadersStore), store.HeaderStore(resp.Header))
	cookies := store.NewMapStore()
	for _, c := range resp.Cookies() {
		cookies.Set(c.Name, c.Value)
	}
	lazy.Set[store.Store](root, store.Key(CookiesStore), cookies)
	return ResultOf(rec), nil
}

func (r *Request) build(ctx context.Context) (*http.Request, error) {
	method, err := lazy.Get(r.request, methodKey)
	if err != nil {
		return nil, err
	}
	path, err := lazy.Get(r.request, pathKey)
	if err != nil {
		return nil, err
	}
	body, err := lazy.Get(r.request, bodyKey)
	if err != nil {
		return nil, err
	}
	target := &url.URL{Scheme: "http", Host: "example.com"}
	if target, err = target.Parse(path); err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	q, _ := lazy.Get(r.request, queryKey)
	if len(q) > 0 {
		merged := target.Query()
		for k, vs := range q {
			merged[k] = append(merged[k], vs...)
		}
		target.RawQuery = merged.Encode()
	}

	var reader io.Reader = http.NoBody
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, err
	}
	req.RemoteAddr = "192.0.2.1:1234"
	h, _ := lazy.Get(r.request, headerKey)
	for k, vs := range h {
		req.Header[k] = append([]string(nil), vs...)
	}
	cookies, _ := lazy.Get(r.request, cookiesKey)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req, nil
}
