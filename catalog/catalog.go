package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/restcontract/api-contract-tests/client"
	"github.com/restcontract/api-contract-tests/expect"
	"github.com/restcontract/api-contract-tests/framework"
	"github.com/restcontract/api-contract-tests/scenario"
)

// Case is an independent test consisting of a single HTTP call and the expectations for its
// response. Path, header values, and body strings may use {{env.NAME}} references.
type Case struct {
	Name    string
	Method  client.Method
	Path    string
	Body    interface{}
	Headers map[string]string
	Expect  []expect.Expectation
}

// Parametrized describes a family of cases that differ only in one input. Build is called
// once for each of Params.
type Parametrized struct {
	Name   string
	Params []interface{}
	Build  func(param interface{}) Case
}

// ParamName returns the name used for the variant of a parametrized case with this input.
// Slashes separate the levels of a test path, so any slash in the parameter is written as
// "%2F".
func ParamName(param interface{}) string {
	return strings.ReplaceAll(fmt.Sprint(param), "/", "%2F")
}

// Expand returns one Case per parameter, in order, each named "<name>/<param>".
func (p Parametrized) Expand() []Case {
	ret := make([]Case, 0, len(p.Params))
	for _, param := range p.Params {
		c := p.Build(param)
		c.Name = p.Name + "/" + ParamName(param)
		ret = append(ret, c)
	}
	return ret
}

// Catalog is a named collection of test cases and scenarios.
type Catalog struct {
	Name         string
	Cases        []Case
	Parametrized []Parametrized
	Scenarios    []scenario.Scenario
}

// AllCases returns the plain cases followed by the expansion of every parametrized case.
func (c Catalog) AllCases() []Case {
	ret := append([]Case(nil), c.Cases...)
	for _, p := range c.Parametrized {
		ret = append(ret, p.Expand()...)
	}
	return ret
}

// Run registers every case and scenario of the catalog as a subtest. If the catalog has a
// name, they are grouped under a test with that name.
//
// Cases, parametrized variants, and whole scenarios are independent of each other, so up to
// parallelism of them run at once; the steps within a scenario always run in order. Each
// parametrized variant is reported as its own test, under a group named after the
// Parametrized.
func (c Catalog) Run(t *framework.Context, runner *scenario.Runner, parallelism int) {
	if c.Name == "" {
		c.run(t, runner, parallelism)
		return
	}
	t.Run(c.Name, func(t *framework.Context) {
		c.run(t, runner, parallelism)
	})
}

func (c Catalog) run(t *framework.Context, runner *scenario.Runner, parallelism int) {
	var subtests []framework.Subtest
	for _, tc := range c.Cases {
		subtests = append(subtests, caseSubtest(tc.Name, tc, runner))
	}
	for _, p := range c.Parametrized {
		p := p
		subtests = append(subtests, framework.Subtest{
			Name: p.Name,
			Action: func(t *framework.Context) {
				var variants []framework.Subtest
				for _, param := range p.Params {
					variants = append(variants, caseSubtest(ParamName(param), p.Build(param), runner))
				}
				t.RunParallel(parallelism, variants)
			},
		})
	}
	for _, s := range c.Scenarios {
		s := s
		subtests = append(subtests, framework.Subtest{
			Name:   s.Name,
			Action: func(t *framework.Context) { RunScenario(t, runner, s) },
		})
	}
	t.RunParallel(parallelism, subtests)
}

func caseSubtest(name string, tc Case, runner *scenario.Runner) framework.Subtest {
	return framework.Subtest{
		Name:   name,
		Action: func(t *framework.Context) { RunCase(t, runner, tc) },
	}
}

// RunCase executes a single case in the current test, recording a failure for every
// expectation that does not pass.
func RunCase(t *framework.Context, runner *scenario.Runner, tc Case) {
	s := scenario.Scenario{
		Name: tc.Name,
		Steps: []scenario.Step{{
			Name:    tc.Name,
			Method:  tc.Method,
			Path:    tc.Path,
			Body:    tc.Body,
			Headers: tc.Headers,
			Expect:  tc.Expect,
		}},
	}
	result := runner.WithLogger(t.DebugLogger()).Run(context.Background(), s)
	reportStep(t, result.Steps[0])
}

// RunScenario executes a scenario in the current test. Each step is reported as a subtest.
// Steps excluded by the test filter are never sent, and steps that were not executed
// because a critical step failed or was excluded are reported as skipped.
func RunScenario(t *framework.Context, runner *scenario.Runner, s scenario.Scenario) scenario.Result {
	result := runner.WithLogger(t.DebugLogger()).WithStepFilter(t.Selected).Run(context.Background(), s)
	for _, sr := range result.Steps {
		sr := sr
		t.Run(sr.Name, func(t *framework.Context) {
			if sr.Skipped {
				t.SkipWithReason(fmt.Sprintf("critical step %q did not pass", result.AbortedBy))
			}
			reportStep(t, sr)
		})
	}
	return result
}

func reportStep(t *framework.Context, sr scenario.StepResult) {
	t.Debug("Request: %s", sr.Request)
	if sr.Response != nil {
		t.Debug("Response: %s", sr.Response)
	}
	for _, o := range sr.Outcomes {
		if o.Passed() {
			t.Debug("ok: %s", o.Expectation)
		}
	}
	for _, err := range sr.Errors() {
		t.Error(err)
	}
}
