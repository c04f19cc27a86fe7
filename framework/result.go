package framework

import (
	"fmt"
	"strings"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/failure"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// CountByKind counts the assertion failures of each kind across all failed tests. Errors
// that are not assertion failures, such as unexpected panics, are not counted.
func (r Results) CountByKind() map[failure.Kind]int {
	ret := make(map[failure.Kind]int)
	for _, f := range r.Failures {
		for _, err := range f.Errors {
			if kind, ok := failure.KindOf(err); ok {
				ret[kind]++
			}
		}
	}
	return ret
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
