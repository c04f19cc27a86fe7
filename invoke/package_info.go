// Package invoke runs the unit under test and captures what it produced.
//
// Arrangements that depend on the call target are registered with Runner.Defer while a test
// is being arranged, and applied in order immediately before the unit runs. A unit may
// return a Pending value, in which case the runner waits for it, so assertions always see a
// settled outcome.
package invoke
