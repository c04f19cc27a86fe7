// Package chain is the fluent Arrange, Act and Assert surface of the library.
//
// A chain starts with New, which takes anything that looks like *testing.T. The subject and
// any ambient state are arranged on the returned Arrange, the unit under test is selected
// with Calling, and then one of ShouldReturn, ShouldThrow or ShouldHave begins assertions:
//
//	chain.New[*HomeController](t).
//		WithSubject(controller).
//		Calling("Details", func(c *HomeController) (interface{}, error) { return c.Details(1) }).
//		ShouldReturn().OK().WithValue(expected)
//
// The unit runs at most once per chain, when the first assertion stage is entered. A failed
// assertion stops the test through FailNow; it never returns an error.
package chain
