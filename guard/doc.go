// Package guard asserts that a code location runs at most a given number of
// times over the life of the process.
//
// A call site is identified by the raw return addresses of the call chain that
// reaches AtMost, so no counter variable has to be declared next to it:
//
//	func loadSchema() *Schema {
//	    guard.AtMost(1) // panics the second time loadSchema runs from here
//	    ...
//	}
//
// Exceeding the limit panics with *FrequencyExceeded. The panic is meant to
// surface a bug, not to be handled: let it fail the test or crash the process.
//
// Recursion: by default the whole chain is captured, so the same line reached
// at two recursion depths counts as two call sites. Use WithDepth(1) on a
// dedicated Guard to count the line once regardless of depth.
package guard
