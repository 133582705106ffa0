package framework

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	failColor = color.New(color.FgRed, color.Bold)
	passColor = color.New(color.FgGreen)
)

// PrintResults writes a summary of the test run, listing every failed test with each of
// its errors. Output is colourised unless color.NoColor is set.
func PrintResults(out io.Writer, results Results) {
	writeSummary(out, results, true)
}

// WriteReport writes a plain-text report of the test run to a file: one line per test with
// its status, followed by the same failure details as PrintResults.
func WriteReport(path string, results Results) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	for _, t := range results.Tests {
		status := "PASS"
		switch {
		case t.Skipped:
			status = "SKIP"
		case len(t.Errors) != 0:
			status = "FAIL"
		}
		fmt.Fprintf(f, "%s  %s\n", status, t.TestID)
	}
	fmt.Fprintln(f)
	writeSummary(f, results, false)
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report file: %w", err)
	}
	return nil
}

func writeSummary(out io.Writer, results Results, colorize bool) {
	sprint := func(c *color.Color, s string) string {
		if colorize {
			return c.Sprint(s)
		}
		return s
	}
	if results.OK() {
		fmt.Fprintln(out, sprint(passColor, fmt.Sprintf("All tests passed (%d passed, %d skipped)",
			results.Passed(), results.Skipped())))
		return
	}
	fmt.Fprintln(out, sprint(failColor, fmt.Sprintf("FAILED TESTS (%d of %d):",
		len(results.Failures), len(results.Tests)-results.Skipped())))
	for _, f := range results.Failures {
		fmt.Fprintf(out, "* %s\n", f.TestID)
		for _, e := range f.Errors {
			for _, line := range strings.Split(e.Error(), "\n") {
				fmt.Fprintf(out, "    %s\n", line)
			}
		}
	}
}
