// Package usertests contains the contract tests for the user-management API and the
// fixtures they send.
//
// The generic parts of the harness, such as the HTTP client, assertions, and the scenario
// runner, are in lower-level packages; this package only declares what to test.
package usertests
