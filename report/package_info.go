// Package report decides whether an assertion passed and, if not, raises a categorized
// failure with a message of the form
//
//	When calling Index on *HomeController expected result to be View, but in fact it was OK.
//
// Values are compared structurally with go-cmp, ignoring unexported fields.
package report
