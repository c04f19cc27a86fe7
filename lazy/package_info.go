// Package lazy provides the property bag that a test chain assembles its state in.
//
// Every piece of state a test needs (the subject, the request, the captured outcome) lives
// in a slot that is computed on first read from an explicitly registered factory. Arrange
// methods override slots with Set; later reads see the override and the default factory
// never runs.
package lazy
