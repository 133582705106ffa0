package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/restcontract/api-contract-tests/framework"
)

var (
	testNameColor = color.New(color.Bold)
	failedColor   = color.New(color.FgRed)
	skippedColor  = color.New(color.FgYellow)
)

// ConsoleTestLogger prints test progress. Tests may run in parallel, so each notification is
// written while holding a lock; a test's lines are therefore never split, though tests can
// finish in any order.
type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	lock                 sync.Mutex
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	c.lock.Lock()
	defer c.lock.Unlock()
	testNameColor.Fprintf(c.Out, "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Out, "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if failed {
		failedColor.Fprintf(c.Out, "  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if reason == "" {
		skippedColor.Fprintf(c.Out, "  SKIPPED: %s\n", id)
	} else {
		skippedColor.Fprintf(c.Out, "  SKIPPED: %s (%s)\n", id, reason)
	}
}
