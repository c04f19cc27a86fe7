// Package scenarios is the self-check suite of the library: sample controllers and
// handlers, and named end-to-end scenarios that exercise every assertion stage. Scenarios
// that check a failing assertion run it against a recording TestingT and then assert on the
// kind and text of the failure it raised.
package scenarios

import (
	"context"
	"net/http"
	"time"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/chain"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/framework"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/httpmvc"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/internal/spy"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/report"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/store"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Scenario is one named end-to-end check.
type Scenario struct {
	Name string
	Run  func(c *framework.Context, opts ...chain.Option)
}

// All returns every scenario, in a stable order.
func All() []Scenario {
	return []Scenario{
		{"A/ok-with-payload", okWithPayload},
		{"A/wrong-shape", wrongShape},
		{"A/view-model", viewModel},
		{"B/typed-error", typedError},
		{"B/wrong-error-type", wrongErrorType},
		{"C/store-count", storeCount},
		{"C/store-count-mismatch", storeCountMismatch},
		{"D/unexpected-error", unexpectedError},
		{"async/search", asyncSearch},
		{"http/text", httpText},
		{"http/json", httpJSON},
		{"http/not-found", httpNotFound},
		{"http/cart-cookie", httpCartCookie},
		{"http/permanent-redirect", httpPermanentRedirect},
	}
}

// RunAll runs every scenario as a subtest of c, at most parallelism at a time. Each
// scenario gets its own context, cancelled after timeout if timeout is positive. Chain
// debug output goes to the scenario's debug log and, if logger is not nil, to logger. The
// error names the first scenario that failed; every failure is also in c's results.
func RunAll(c *framework.Context, parallelism int, timeout time.Duration, logger framework.Logger, opts ...chain.Option) error {
	var actions []framework.NamedAction
	for _, s := range All() {
		s := s
		actions = append(actions, framework.NamedAction{
			Name: s.Name,
			Action: func(c *framework.Context) {
				ctx, cancel := context.Background(), context.CancelFunc(func() {})
				if timeout > 0 {
					ctx, cancel = context.WithTimeout(ctx, timeout)
				}
				defer cancel()
				scenarioOpts := []chain.Option{chain.WithContext(ctx)}
				if logger != nil {
					scenarioOpts = append(scenarioOpts, chain.WithLogger(framework.TeeLogger(c.DebugLogger(), logger)))
				}
				s.Run(c, append(scenarioOpts, opts...)...)
			},
		})
	}
	return c.RunParallel(parallelism, actions...)
}

// expectFailure runs action against a recording TestingT and requires that it raised a
// failure of the given kind whose message contains text.
func expectFailure(c *framework.Context, kind failure.Kind, text string, action func(t *spy.T)) {
	f := spy.Capture(action)
	require.NotNil(c, f, "expected a %s failure, but the assertion passed", kind)
	c.Debug("raised: %s", f)
	require.Equal(c, kind, f.Kind)
	require.Contains(c, f.Message, text)
}

func newController() *ProductsController {
	return &ProductsController{Catalog: DefaultCatalog(), Session: store.NewMapStore()}
}

func okWithPayload(c *framework.Context, opts ...chain.Option) {
	ok := chain.New[*ProductsController](c, opts...).
		WithSubject(newController()).
		Calling("Details", func(pc *ProductsController) (interface{}, error) { return pc.Details(1) }).
		ShouldReturn().OK()
	ok.WithValue(Product{ID: 1, Name: "Tea", Price: 3.5})
	require.Equal(c, "Tea", chain.PayloadAs[Product](ok).Name)
}

func wrongShape(c *framework.Context, opts ...chain.Option) {
	expectFailure(c, failure.WrongResultShape,
		"When calling Details on *scenarios.ProductsController expected result to be View, but in fact it was OK.",
		func(t *spy.T) {
			chain.New[*ProductsController](t, opts...).
				WithSubject(newController()).
				Calling("Details", func(pc *ProductsController) (interface{}, error) { return pc.Details(1) }).
				ShouldReturn().View()
		})
}

func viewModel(c *framework.Context, opts ...chain.Option) {
	chain.New[*ProductsController](c, opts...).
		WithSubject(newController()).
		Calling("Index", (*ProductsController).Index).
		ShouldReturn().View().
		WithDefaultName().
		AndAlso().
		WithModel(DefaultCatalog().Sorted()).
		ShouldReturn().
		Satisfying(`Kind == "View" && len(Value.Model) == 3`)
}

func typedError(c *framework.Context, opts ...chain.Option) {
	var target *NullReferenceError
	chain.New[*ProductsController](c, opts...).
		WithSubject(&ProductsController{}).
		Calling("Delete", func(pc *ProductsController) (interface{}, error) { return pc.Delete(1) }).
		ShouldThrow().
		OfType(&target).
		WithMessage().ThatEquals("boom")
}

func wrongErrorType(c *framework.Context, opts ...chain.Option) {
	expectFailure(c, failure.WrongErrorType,
		"expected error to be *scenarios.InvalidOperationError, but in fact found *scenarios.NullReferenceError.",
		func(t *spy.T) {
			var target *InvalidOperationError
			chain.New[*ProductsController](t, opts...).
				WithSubject(&ProductsController{}).
				Calling("Delete", func(pc *ProductsController) (interface{}, error) { return pc.Delete(1) }).
				ShouldThrow().
				OfType(&target)
		})
}

func addTwoToCart(t report.TestingT, opts []chain.Option) *chain.Has {
	pc := newController()
	return chain.New[*ProductsController](t, opts...).
		WithSubject(pc).
		WithStore("session", pc.Session).
		Calling("AddToCart", func(pc *ProductsController) (interface{}, error) { return pc.AddToCart(1, 2) }).
		ShouldHave()
}

func storeCount(c *framework.Context, opts ...chain.Option) {
	addTwoToCart(c, opts).
		Session().
		WithCount(2).
		ContainingEntry("cart:1", "Tea").
		ContainingEntry("cart:2", "Coffee").
		ShouldReturn().Redirect().To("/cart")
}

func storeCountMismatch(c *framework.Context, opts ...chain.Option) {
	expectFailure(c, failure.SideEffectMismatch,
		"expected session store to have 3 entries, but in fact contained 2.",
		func(t *spy.T) {
			addTwoToCart(t, opts).Session().WithCount(3)
		})
}

func unexpectedError(c *framework.Context, opts ...chain.Option) {
	expectFailure(c, failure.UnexpectedError,
		`expected no error, but *scenarios.NullReferenceError with "boom" message was returned.`,
		func(t *spy.T) {
			chain.New[*ProductsController](t, opts...).
				WithSubject(&ProductsController{}).
				Calling("Delete", func(pc *ProductsController) (interface{}, error) { return pc.Delete(1) }).
				ShouldReturn().
				OK()
		})
}

func asyncSearch(c *framework.Context, opts ...chain.Option) {
	chain.New[*ProductsController](c, opts...).
		WithSubject(newController()).
		CallingContext("Search", func(ctx context.Context, pc *ProductsController) (interface{}, error) {
			return pc.Search(ctx, "co")
		}).
		ShouldReturn().JSON().
		WithJSON(`[{"ID":2,"Name":"Coffee","Price":4},{"ID":3,"Name":"Cocoa","Price":4.25}]`)
}

func httpText(c *framework.Context, opts ...chain.Option) {
	httpmvc.Handler(c, NewRouter(DefaultCatalog()), opts...).
		Calling("Index").
		ShouldReturn().Content().
		WithContentType("text/plain").
		Containing("2 Coffee")
}

func httpJSON(c *framework.Context, opts ...chain.Option) {
	httpmvc.Handler(c, NewRouter(DefaultCatalog()), opts...).
		WithPath("/products/3").
		Calling("Details").
		ShouldReturn().JSON().
		WithProperty("Name", ldvalue.String("Cocoa")).
		WithStatusCode(http.StatusOK)
}

func httpNotFound(c *framework.Context, opts ...chain.Option) {
	httpmvc.Handler(c, NewRouter(DefaultCatalog()), opts...).
		WithPath("/products/42").
		Calling("Details").
		ShouldReturn().NotFound()
}

func httpCartCookie(c *framework.Context, opts ...chain.Option) {
	httpmvc.Handler(c, NewRouter(DefaultCatalog()), opts...).
		WithMethod(http.MethodPost).
		WithQuery("id", "2").
		Calling("Cart").
		ShouldHave().
		Store(httpmvc.CookiesStore).WithCount(1).ContainingEntry("cart", "2").
		ShouldReturn().Redirect().To("/cart").Temporary()
}

func httpPermanentRedirect(c *framework.Context, opts ...chain.Option) {
	httpmvc.Handler(c, NewRouter(DefaultCatalog()), opts...).
		Calling("Legacy").
		ShouldReturn().Redirect().Permanent().To("/Index")
}
