package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
	lock       sync.Mutex
}

// Context is the state of a single test or group of tests. It is used similarly to Go's
// *testing.T, and implements the TestingT interfaces of testify's assert and require
// packages, so assertions can be made against it directly.
//
// Calling Errorf marks the test as failed but lets it keep going; calling FailNow marks it
// as failed and exits the test immediately. Subtests started with Run or RunParallel each
// get their own Context, so a failure in one never stops its siblings.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	deferred    []func()

	// workerSlots is shared by every RunParallel call nested within the first one, so that
	// nesting never raises the number of tests running at once. holdsSlot is true if this
	// test is running in one of those slots.
	workerSlots chan struct{}
	holdsSlot   bool
}

// Subtest is a named test action, for use with RunParallel.
type Subtest struct {
	Name   string
	Action func(*Context)
}

func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		for i := len(c.deferred) - 1; i >= 0; i-- {
			c.deferred[i]()
		}
		if r := recover(); r != nil {
			if !c.skipped {
				c.failed = true
				var addError error
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						addError = errors.New("test failed with no failure message")
					}
				} else {
					addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					c.errors = append(c.errors, addError)
					c.env.testLogger.TestError(c.id, addError)
				}
			}
		}
		if len(c.id.Path) == 0 {
			return // the root context is only a container
		}
		result := TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped}
		c.env.lock.Lock()
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
		c.env.lock.Unlock()
	}()

	action(c)
}

func (c *Context) ID() TestID {
	return c.id
}

// Selected returns false if a subtest with this name would be excluded by the filter, so
// that work belonging to it can be avoided entirely.
func (c *Context) Selected(name string) bool {
	return c.env.filter == nil || c.env.filter(c.id.Plus(name))
}

// Run runs a subtest synchronously. It returns false if the subtest failed.
func (c *Context) Run(name string, action func(*Context)) bool {
	return c.runSubtest(name, action, c.workerSlots, c.holdsSlot)
}

func (c *Context) runSubtest(name string, action func(*Context), workerSlots chan struct{}, holdsSlot bool) bool {
	id := c.id.Plus(name)

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return true
	}
	c1 := &Context{
		id:          id,
		env:         c.env,
		workerSlots: workerSlots,
		holdsSlot:   holdsSlot,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
	return !c1.failed
}

// RunParallel runs independent subtests using at most the specified number of workers.
// With one worker or fewer, it is equivalent to calling Run for each subtest in order.
// The subtests must not depend on each other; the order in which they start is not
// guaranteed when workers > 1.
//
// If this test is itself running within a RunParallel call, the subtests share the
// workers of the outermost call, and the workers argument only matters if it is 1 or less.
func (c *Context) RunParallel(workers int, subtests []Subtest) {
	if workers <= 1 || len(subtests) <= 1 {
		for _, s := range subtests {
			c.Run(s.Name, s.Action)
		}
		return
	}

	sem := c.workerSlots
	if sem == nil {
		sem = make(chan struct{}, workers)
	} else if c.holdsSlot {
		// give up this test's slot while it only waits for its subtests
		<-sem
		defer func() { sem <- struct{}{} }()
	}

	var wg sync.WaitGroup
	for _, s := range subtests {
		s := s
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			c.runSubtest(s.Name, s.Action, sem, true)
		}()
	}
	wg.Wait()
}

// Defer schedules a function to be called when the current test exits, whether it
// passed or failed. Deferred functions run in reverse order.
func (c *Context) Defer(fn func()) {
	c.deferred = append(c.deferred, fn)
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

// Error records an error value as a test failure without formatting it.
func (c *Context) Error(err error) {
	c.failed = true
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
