// Package expect contains the response assertions used by test cases and scenario steps.
//
// Each Expectation checks one property of a *client.Response: its status, headers, elapsed
// time, or a value found by path inside the JSON body. A failed check returns an
// *AssertionError; nothing in this package panics or stops the caller, so that a test can
// evaluate every expectation and report all of the failures together.
package expect
