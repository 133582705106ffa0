package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alessio/shellescape"
	"github.com/joho/godotenv"

	"github.com/restcontract/api-contract-tests/client"
	"github.com/restcontract/api-contract-tests/framework"
)

const (
	defaultBaseURL = "https://jsonplaceholder.typicode.com"

	baseURLEnvVar = "API_BASE_URL"
	timeoutEnvVar = "API_TIMEOUT"
)

type commandParams struct {
	baseURL      string
	filters      framework.RegexFilters
	debug        bool
	debugAll     bool
	timeout      time.Duration
	parallel     int
	scenariosDir string
	reportPath   string
	noColor      bool
}

// loadEnvFile reads a .env file in the working directory, if there is one. Variables that
// are already set in the environment take precedence.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

func (c *commandParams) Read(args []string, usageOut io.Writer) error {
	defaultURL := defaultBaseURL
	if v := os.Getenv(baseURLEnvVar); v != "" {
		defaultURL = v
	}
	defaultTimeout := client.DefaultTimeout
	if v := os.Getenv(timeoutEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", timeoutEnvVar, err)
		}
		defaultTimeout = d
	}

	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(usageOut)
	flags.StringVar(&c.baseURL, "url", defaultURL, "base URL of the service under test (or set "+baseURLEnvVar+")")
	flags.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	flags.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	flags.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	flags.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	flags.DurationVar(&c.timeout, "timeout", defaultTimeout, "time limit for each HTTP call")
	flags.IntVar(&c.parallel, "parallel", 1, "number of independent tests to run at once")
	flags.StringVar(&c.scenariosDir, "scenarios", "", "directory of additional YAML scenario files")
	flags.StringVar(&c.reportPath, "report", "", "file to write a plain-text test report to")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")

	if err := flags.Parse(args[1:]); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}
	if c.timeout <= 0 {
		return fmt.Errorf("-timeout must be positive")
	}
	if c.parallel < 1 {
		return fmt.Errorf("-parallel must be at least 1")
	}
	return nil
}

// rerunCommand returns a shell command line that runs the same tests again with the same
// settings, limited to the ones that failed.
func (c *commandParams) rerunCommand(program string, failures []framework.TestResult) string {
	var b commandBuilder
	b.add(program, "-url", c.baseURL)
	if c.timeout != client.DefaultTimeout {
		b.add("-timeout", c.timeout.String())
	}
	if c.scenariosDir != "" {
		b.add("-scenarios", c.scenariosDir)
	}
	if c.parallel > 1 {
		b.add("-parallel", strconv.Itoa(c.parallel))
	}
	if c.reportPath != "" {
		b.add("-report", c.reportPath)
	}
	switch {
	case c.debugAll:
		b.add("-debug-all")
	case c.debug:
		b.add("-debug")
	}
	if c.noColor {
		b.add("-no-color")
	}
	for _, pattern := range c.filters.MustNotMatch.Patterns() {
		b.add("-skip", pattern)
	}
	for _, f := range failures {
		b.add("-run", exactPathPattern(f.TestID))
	}
	return b.String()
}

func exactPathPattern(id framework.TestID) string {
	levels := make([]string, 0, len(id.Path))
	for _, name := range id.Path {
		levels = append(levels, "^"+regexp.QuoteMeta(name)+"$")
	}
	return strings.Join(levels, "/")
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
