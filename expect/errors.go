package expect

import (
	"fmt"
	"strings"

	"github.com/restcontract/api-contract-tests/client"
)

// AssertionError describes why a response did not satisfy an Expectation, including the
// literal expected and actual values where they apply.
type AssertionError struct {
	Expectation string
	Expected    string
	Actual      string
	Missing     []string
	Detail      string
}

func (e *AssertionError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("%s: missing %s", e.Expectation, strings.Join(e.Missing, ", "))
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Expectation, e.Detail)
	default:
		return fmt.Sprintf("%s: expected %s, got %s", e.Expectation, e.Expected, e.Actual)
	}
}

func mismatch(desc, expected, actual string) *AssertionError {
	return &AssertionError{Expectation: desc, Expected: expected, Actual: actual}
}

// Outcome is the result of checking one Expectation.
type Outcome struct {
	Expectation string
	Err         error
}

func (o Outcome) Passed() bool {
	return o.Err == nil
}

// Evaluate checks every expectation against the response and returns all of the outcomes,
// in the same order, whether or not they passed.
func Evaluate(resp *client.Response, expectations ...Expectation) []Outcome {
	ret := make([]Outcome, 0, len(expectations))
	for _, e := range expectations {
		ret = append(ret, Outcome{Expectation: e.String(), Err: e.Check(resp)})
	}
	return ret
}

// Failures returns the errors of the outcomes that did not pass.
func Failures(outcomes []Outcome) []error {
	var ret []error
	for _, o := range outcomes {
		if o.Err != nil {
			ret = append(ret, o.Err)
		}
	}
	return ret
}
