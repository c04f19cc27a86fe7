package httpmvc

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/internal/spy"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/invoke"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/lazy"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/results"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestDefaultRequestUsesActionAsPath(t *testing.T) {
	h, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(204))
	Handler(t, h).Calling("Index").ShouldReturn().NoContent()

	r := <-requestsCh
	assert.Equal(t, "GET", r.Request.Method)
	assert.Equal(t, "/Index", r.Request.URL.Path)
	assert.Empty(t, r.Body)
}

func TestEachCallRequestsItsOwnAction(t *testing.T) {
	echoPath := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	})
	req := Handler(t, echoPath)
	req.Calling("First").ShouldReturn().Content().WithBody("/First")
	req.Calling("Second").ShouldReturn().Content().WithBody("/Second")

	req.WithPath("/fixed")
	req.Calling("Third").ShouldReturn().Content().WithBody("/fixed")
	req.Calling("Fourth").ShouldReturn().Content().WithBody("/fixed")
}

func TestArrangedRequest(t *testing.T) {
	h, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	returns := Handler(t, h).
		WithMethod("POST").
		WithPath("/products/create?draft=1").
		WithQuery("tag", "hot").
		WithHeader("X-Request-Id", "abc").
		WithCookie("session", "s1").
		WithJSONBody(map[string]string{"name": "Tea"}).
		Calling("Create").
		ShouldReturn().Empty()

	r := <-requestsCh
	assert.Equal(t, "POST", r.Request.Method)
	assert.Equal(t, "/products/create", r.Request.URL.Path)
	assert.Equal(t, "1", r.Request.URL.Query().Get("draft"))
	assert.Equal(t, "hot", r.Request.URL.Query().Get("tag"))
	assert.Equal(t, "abc", r.Request.Header.Get("X-Request-Id"))
	assert.Equal(t, "application/json", r.Request.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"name":"Tea"}`, string(r.Body))
	c, err := r.Request.Cookie("session")
	require.NoError(t, err)
	assert.Equal(t, "s1", c.Value)

	served, err := lazy.Get(returns.Context().Child("request"), RequestKey)
	require.NoError(t, err)
	assert.Equal(t, "POST", served.Method)
}

func TestNotFound(t *testing.T) {
	Handler(t, httphelpers.HandlerWithStatus(404)).Calling("Details").ShouldReturn().NotFound()

	f := spy.Capture(func(st *spy.T) {
		Handler(st, httphelpers.HandlerWithStatus(404)).Calling("Details").ShouldReturn().OK()
	})
	require.NotNil(t, f)
	assert.Equal(t, failure.WrongResultShape, f.Kind)
	assert.Contains(t, f.Message, "When calling Details on ")
	assert.Contains(t, f.Message, " expected result to be OK, but in fact it was Status.")
}

func TestJSONResponse(t *testing.T) {
	h := httphelpers.HandlerWithJSONResponse(map[string]interface{}{"id": 1, "name": "Tea"}, nil)
	Handler(t, h).Calling("Api").
		ShouldReturn().JSON().
		WithJSON(`{"name":"Tea","id":1}`).
		WithProperty("id", ldvalue.Int(1)).
		WithStatusCode(200).
		ShouldHave().Store(HeadersStore).ContainingKey("Content-Type")
}

func TestRedirectResponse(t *testing.T) {
	h := httphelpers.HandlerWithResponse(302, http.Header{"Location": {"/login"}}, nil)
	Handler(t, h).Calling("Secret").ShouldReturn().Redirect().To("/login").Temporary()

	h = httphelpers.HandlerWithResponse(301, http.Header{"Location": {"/new"}}, nil)
	Handler(t, h).Calling("Old").ShouldReturn().Redirect().To("/new").Permanent()
}

func TestContentResponse(t *testing.T) {
	h := httphelpers.HandlerWithResponse(200, http.Header{"Content-Type": {"text/plain; charset=utf-8"}}, []byte("hello"))
	Handler(t, h).Calling("Hello").
		ShouldReturn().Content().WithBody("hello").WithContentType("text/plain").
		ShouldHave().Store(HeadersStore).ContainingEntry("Content-Type", "text/plain; charset=utf-8")
}

func TestErrorStatusCarriesBody(t *testing.T) {
	h := httphelpers.HandlerWithResponse(400, nil, []byte("bad id"))
	r := Handler(t, h).Calling("Details").ShouldReturn().BadRequest()
	assert.Equal(t, results.Status{Code: 400, Value: "bad id"}, r.Actual())
}

func TestCookiesStore(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "cart", Value: "3"})
		http.SetCookie(w, &http.Cookie{Name: "theme", Value: "dark"})
	})
	Handler(t, h).Calling("AddToCart").
		ShouldHave().Store(CookiesStore).WithCount(2).ContainingEntry("cart", "3").ContainingEntry("theme", "dark")

	f := spy.Capture(func(st *spy.T) {
		Handler(st, h).Calling("AddToCart").ShouldHave().Store(CookiesStore).WithCount(3)
	})
	require.NotNil(t, f)
	assert.Equal(t, failure.SideEffectMismatch, f.Kind)
	assert.Contains(t, f.Message, "expected cookies store to have 3 entries, but in fact contained 2.")
}

func TestHandlerPanicIsCaptured(t *testing.T) {
	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("handler exploded") })
	var target *invoke.PanicError
	Handler(t, h).Calling("Index").ShouldThrow().OfType(&target).WithMessage().Containing("handler exploded")
}

func TestInvalidPathFailsOutcome(t *testing.T) {
	Handler(t, httphelpers.HandlerWithStatus(200)).WithPath("%zz").Calling("Index").
		ShouldThrow().WithMessage().BeginningWith(`invalid request path "%zz"`)
}

func TestResultOf(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("Content-Type", "application/problem+json")
	rec.WriteHeader(422)
	_, _ = rec.WriteString(`{"title":"invalid"}`)
	j, ok := ResultOf(rec).(results.JSON)
	require.True(t, ok)
	assert.Equal(t, 422, results.StatusCodeOf(j))
	assert.Equal(t, "invalid", j.Value.GetByKey("title").StringValue())

	rec = httptest.NewRecorder()
	rec.WriteHeader(201)
	_, _ = rec.WriteString("created")
	assert.Equal(t, results.Content{Body: "created", StatusCode: 201}, ResultOf(rec))

	rec = httptest.NewRecorder()
	rec.WriteHeader(401)
	assert.Equal(t, results.Unauthorized(), ResultOf(rec))
}
