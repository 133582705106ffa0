package framework

import "strings"

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Passed returns the number of tests that ran and did not fail.
func (r Results) Passed() int {
	n := 0
	for _, t := range r.Tests {
		if !t.Skipped && len(t.Errors) == 0 {
			n++
		}
	}
	return n
}

func (r Results) Skipped() int {
	n := 0
	for _, t := range r.Tests {
		if t.Skipped {
			n++
		}
	}
	return n
}

type TestID struct {
	Path []string
}

// Plus returns a new TestID for a subtest. The receiver is never modified.
func (t TestID) Plus(name string) TestID {
	path := make([]string, 0, len(t.Path)+1)
	path = append(path, t.Path...)
	return TestID{Path: append(path, name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}
