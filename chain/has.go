package chain

import (
	"fmt"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/lazy"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/store"
)

// Has asserts on side effects the unit under test left in the chain's context.
type Has struct {
	base
}

func (h *Has) AndAlso() *Has { return h }

// Store begins assertions about the named store. The store must have been arranged or
// produced by a registered factory.
func (h *Has) Store(name string) *StoreAssertions {
	h.st.t.Helper()
	s, err := store.From(h.st.context, name)
	if err != nil {
		h.st.raiseError(err)
	}
	return &StoreAssertions{base: h.base, name: name, store: s}
}

// Session is shorthand for Store("session").
func (h *Has) Session() *StoreAssertions {
	h.st.t.Helper()
	return h.Store("session")
}

// Value asserts that the ambient value arranged under name now deeply equals expected.
func (h *Has) Value(name string, expected interface{}) *Has {
	h.st.t.Helper()
	actual, err := lazy.Get(h.st.context, ValueKey(name))
	if err != nil {
		h.st.raiseError(err)
	}
	h.st.reporter(fmt.Sprintf("value %q", name)).Expect(failure.SideEffectMismatch, "to equal", expected, actual)
	return h
}

// StoreAssertions asserts on the contents of one store.
type StoreAssertions struct {
	base
	name  string
	store store.Store
}

func (s *StoreAssertions) AndAlso() *StoreAssertions { return s }

// Entries returns the current contents of the store.
func (s *StoreAssertions) Entries() []store.Entry { return s.store.Entries() }

func (s *StoreAssertions) subject() string { return s.name + " store" }

func (s *StoreAssertions) WithCount(n int) *StoreAssertions {
	s.st.t.Helper()
	count := s.store.Count()
	s.st.reporter(s.subject()).ExpectTrue(failure.SideEffectMismatch, count == n,
		"to have", entries(n), fmt.Sprintf("in fact contained %d", count))
	return s
}

func (s *StoreAssertions) WithNoEntries() *StoreAssertions {
	s.st.t.Helper()
	count := s.store.Count()
	s.st.reporter(s.subject()).ExpectTrue(failure.SideEffectMismatch, count == 0,
		"to have", "no entries", fmt.Sprintf("in fact contained %d", count))
	return s
}

func (s *StoreAssertions) ContainingKey(key string) *StoreAssertions {
	s.st.t.Helper()
	s.st.reporter(s.subject()).ExpectTrue(failure.SideEffectMismatch, s.store.ContainsKey(key),
		"to contain entry with key", fmt.Sprintf("%q", key), "in fact no such entry was found")
	return s
}

// ContainingEntry asserts that key is present and its value deeply equals value.
func (s *StoreAssertions) ContainingEntry(key string, value interface{}) *StoreAssertions {
	s.st.t.Helper()
	actual, found := s.store.TryGetValue(key)
	rep := s.st.reporter(s.subject())
	rep.ExpectTrue(failure.SideEffectMismatch, found,
		"to contain entry with key", fmt.Sprintf("%q", key), "in fact no such entry was found")
	rep.Expect(failure.SideEffectMismatch, fmt.Sprintf("to contain entry with key %q and value", key), value, actual)
	return s
}

// Passing asserts that predicate holds for the store.
func (s *StoreAssertions) Passing(predicate func(store.Store) bool) *StoreAssertions {
	s.st.t.Helper()
	s.st.reporter(s.subject()).ExpectTrue(failure.CustomPredicateFailed, predicate(s.store),
		"to pass", "the given predicate", "it failed")
	return s
}

func entries(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}
