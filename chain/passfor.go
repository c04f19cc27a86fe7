package chain

import (
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/lazy"
)

// Stage is any assertion stage of a chain.
type Stage interface {
	chainState() *state
}

// PassFor asserts that predicate holds for the value held under key in the chain's
// context, computing it if necessary, and returns stage so the chain can continue.
//
//	chain.PassFor(returns, chain.SubjectKey[*Cart](), func(c *Cart) bool { return c.Total > 0 })
func PassFor[T any, B Stage](stage B, key lazy.Key[T], predicate func(T) bool) B {
	st := stage.chainState()
	st.t.Helper()
	v, err := lazy.Get(st.context, key)
	if err != nil {
		st.raiseError(err)
	}
	st.reporter(typeName[T]()).ExpectTrue(failure.CustomPredicateFailed, predicate(v),
		"to pass", "the given predicate", "it failed")
	return stage
}
