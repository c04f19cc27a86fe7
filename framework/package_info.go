// Package framework contains the test runtime that lets test chains run outside of the Go
// test runner.
//
// The general model is:
//
// 1. A Context is similar to Go's *testing.T. It associates a piece of test logic with a
// test identifier, accumulates failures, and supports subtests, which may run in parallel.
//
// 2. A TestLogger is told when tests start, fail, finish, or are skipped.
//
// 3. Each test has its own capturing debug logger, whose output is passed to the TestLogger
// when the test finishes.
//
// Tests written with the chain package run unchanged under either *testing.T or a Context.
package framework
