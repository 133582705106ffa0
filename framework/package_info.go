// Package framework contains the low-level implementation of test harness infrastructure
// that is not specific to any one REST API.
//
// The general model is:
//
// 1. There is a notion of a test context which is similar to Go's *testing.T, allowing
// pieces of test logic to be associated with a hierarchical test identifier and to
// accumulate success/failure results. A failed assertion is recorded and the test keeps
// going, unless the test asks to stop with FailNow.
//
// 2. Each test captures its own debug output, which the test logger can show only for
// failed tests or for all tests.
//
// 3. Tests can be selected or excluded with regular expressions, and independent tests
// can run in parallel.
//
// The domain-specific code that knows what is being tested is responsible for issuing the
// HTTP requests and deciding what the responses should look like.
package framework
