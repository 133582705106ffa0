package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/restcontract/api-contract-tests/client"
	"github.com/restcontract/api-contract-tests/expect"
	"github.com/restcontract/api-contract-tests/framework"
)

// CaptureError means that a capture rule could not find its path in the response body.
type CaptureError struct {
	Var  string
	Path string
	Err  error
}

func (e *CaptureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not capture %q from %q: %s", e.Var, e.Path, e.Err)
	}
	return fmt.Sprintf("could not capture %q: response body has no %q", e.Var, e.Path)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// Runner executes scenarios against one service. It holds no per-run state, so the same
// Runner can execute any number of scenarios concurrently.
type Runner struct {
	client   *client.Client
	logger   framework.Logger
	selected func(stepName string) bool
}

func NewRunner(c *client.Client, logger framework.Logger) *Runner {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Runner{client: c, logger: logger}
}

// WithLogger returns a Runner that sends its output, and the client's, to another logger as
// well as to the current one.
func (r *Runner) WithLogger(logger framework.Logger) *Runner {
	combined := framework.MultiLogger(r.logger, logger)
	return &Runner{client: r.client.WithLogger(combined), logger: combined, selected: r.selected}
}

// WithStepFilter returns a Runner that only executes the steps for which selected returns
// true. A step that is not selected sends no request and is recorded as skipped; if it is
// critical, the rest of the scenario is skipped too, since later steps may depend on it.
func (r *Runner) WithStepFilter(selected func(stepName string) bool) *Runner {
	return &Runner{client: r.client, logger: r.logger, selected: selected}
}

// Run executes the steps of a scenario in order. Every expectation of a step is evaluated
// even if an earlier one fails. If a critical step fails, the rest of the steps are
// recorded as skipped without being executed.
func (r *Runner) Run(ctx context.Context, s Scenario) Result {
	vars := make(map[string]ldvalue.Value, len(s.Variables))
	for k, v := range s.Variables {
		vars[k] = v
	}
	result := Result{Scenario: s.Name, Variables: vars}

	r.logger.Printf("Starting scenario %q", s.Name)
	for i, step := range s.Steps {
		name := step.DisplayName(i)
		if result.Aborted {
			result.Steps = append(result.Steps, StepResult{Name: name, Skipped: true})
			continue
		}
		if r.selected != nil && !r.selected(name) {
			r.logger.Printf("Step %q is excluded, not sending its request", name)
			result.Steps = append(result.Steps, StepResult{Name: name, Skipped: true, Excluded: true})
			if step.Critical {
				result.Aborted = true
				result.AbortedBy = name
			}
			continue
		}
		sr := r.runStep(ctx, step, vars)
		sr.Name = name
		result.Steps = append(result.Steps, sr)
		if sr.Passed() {
			r.logger.Printf("Step %q passed", name)
			continue
		}
		for _, err := range sr.Errors() {
			r.logger.Printf("Step %q failed: %s", name, err)
		}
		if step.Critical {
			r.logger.Printf("Critical step %q failed, skipping remaining steps of %q", name, s.Name)
			result.Aborted = true
			result.AbortedBy = name
		}
	}
	return result
}

func (r *Runner) runStep(ctx context.Context, step Step, vars map[string]ldvalue.Value) StepResult {
	var sr StepResult

	req, err := resolveRequest(step, vars)
	sr.Request = req
	if err != nil {
		sr.Err = err
		return sr
	}

	resp, err := r.client.Send(ctx, req)
	if err != nil {
		var te *client.TimeoutError
		if errors.As(err, &te) {
			sr.Outcomes = []expect.Outcome{{
				Expectation: fmt.Sprintf("response within %s", te.Timeout),
				Err:         err,
			}}
		} else {
			sr.Err = err
		}
		return sr
	}
	sr.Response = resp
	sr.Outcomes = expect.Evaluate(resp, step.Expect...)

	for _, c := range step.Capture {
		value, err := capture(resp, c)
		if err != nil {
			sr.Err = err
			break
		}
		vars[c.Var] = value
		r.logger.Printf("Captured %s = %s", c.Var, value.JSONString())
	}
	return sr
}

func resolveRequest(step Step, vars map[string]ldvalue.Value) (client.Request, error) {
	req := client.Request{Method: step.Method, Path: step.Path}
	path, err := expandString(step.Path, vars)
	if err != nil {
		return req, fmt.Errorf("request path: %w", err)
	}
	req.Path = path
	if len(step.Headers) > 0 {
		req.Headers = make(map[string]string, len(step.Headers))
		for k, v := range step.Headers {
			hv, err := expandString(v, vars)
			if err != nil {
				return req, fmt.Errorf("header %q: %w", k, err)
			}
			req.Headers[k] = hv
		}
	}
	body, err := expandBody(step.Body, vars)
	if err != nil {
		return req, fmt.Errorf("request body: %w", err)
	}
	req.Body = body
	return req, nil
}

func capture(resp *client.Response, c Capture) (ldvalue.Value, error) {
	doc, err := resp.JSON()
	if err != nil {
		return ldvalue.Null(), &CaptureError{Var: c.Var, Path: c.Path, Err: err}
	}
	v, found, err := expect.Lookup(doc, c.Path)
	if err != nil {
		return ldvalue.Null(), &CaptureError{Var: c.Var, Path: c.Path, Err: err}
	}
	if !found {
		return ldvalue.Null(), &CaptureError{Var: c.Var, Path: c.Path}
	}
	return ldvalue.CopyArbitraryValue(v), nil
}
