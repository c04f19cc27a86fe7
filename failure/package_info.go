// Package failure defines the assertion failures raised by test chains.
//
// Errors returned by the code under test are data: they are captured in an outcome and
// inspected by assertions. A Failure is the only thing an assertion raises, and each one
// belongs to exactly one Kind so that callers can tell "the code returned an error" apart
// from "the code returned the wrong kind of result".
package failure
