package scenario

import (
	"fmt"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/restcontract/api-contract-tests/client"
	"github.com/restcontract/api-contract-tests/expect"
)

// Scenario is an ordered list of steps that together exercise one workflow, such as
// creating a resource and then reading, updating, and deleting it.
type Scenario struct {
	Name string

	// Variables are copied into the variable table at the start of each run, before any
	// values are captured.
	Variables map[string]ldvalue.Value

	Steps []Step
}

// Step is one HTTP call within a scenario. Path, header values, and any strings in Body may
// contain {{name}} references to variables.
type Step struct {
	Name    string
	Method  client.Method
	Path    string
	Body    interface{}
	Headers map[string]string
	Expect  []expect.Expectation
	Capture []Capture

	// Critical means that if this step fails in any way, the remaining steps of the
	// scenario are not executed.
	Critical bool
}

// Capture copies the value at a path in a step's response body into a variable.
type Capture struct {
	Var  string
	Path string
}

// DisplayName returns the step name, or a description of its request if it has no name.
func (s Step) DisplayName(index int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("step %d: %s %s", index+1, s.Method, s.Path)
}

// Result describes the outcome of one run of a scenario.
type Result struct {
	Scenario string
	Steps    []StepResult

	// Aborted is true if a critical step failed or was excluded, in which case every later
	// step has Skipped set. AbortedBy is the name of that step.
	Aborted   bool
	AbortedBy string

	// Variables is the variable table as it was at the end of the run.
	Variables map[string]ldvalue.Value
}

// Passed returns true if every step ran and passed.
func (r Result) Passed() bool {
	if r.Aborted {
		return false
	}
	for _, s := range r.Steps {
		if !s.Passed() {
			return false
		}
	}
	return true
}

// StepResult describes what happened in one step.
type StepResult struct {
	Name string

	// Request is the request after variable substitution.
	Request client.Request

	// Response is nil if the request was never sent or no response was received.
	Response *client.Response

	// Outcomes has one entry per expectation, in the order they were declared. A timeout
	// is reported as a failed outcome.
	Outcomes []expect.Outcome

	// Err is set for a failure that is not an expectation: a transport error, an
	// unresolvable variable, or a capture that found nothing.
	Err error

	Skipped bool

	// Excluded means the step was not run because the runner's step filter rejected it.
	// Excluded steps also have Skipped set.
	Excluded bool
}

// Passed returns true if the step was executed without error and all expectations passed.
func (s StepResult) Passed() bool {
	return !s.Skipped && len(s.Errors()) == 0
}

// Errors returns every failure recorded for the step.
func (s StepResult) Errors() []error {
	var ret []error
	if s.Err != nil {
		ret = append(ret, s.Err)
	}
	return append(ret, expect.Failures(s.Outcomes)...)
}
