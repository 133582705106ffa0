package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"

	"github.com/restcontract/api-contract-tests/client"
	"github.com/restcontract/api-contract-tests/framework"
	"github.com/restcontract/api-contract-tests/scenario"
	"github.com/restcontract/api-contract-tests/usertests"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if err := loadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var params commandParams
	if err := params.Read(args, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Invalid parameters: %s\n", err)
		return 1
	}
	if params.noColor {
		color.NoColor = true
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	c, err := client.New(client.Config{
		BaseURL: params.baseURL,
		Timeout: params.timeout,
		Logger:  mainDebugLogger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var extraScenarios []scenario.Scenario
	if params.scenariosDir != "" {
		extraScenarios, err = scenario.LoadDir(params.scenariosDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	fmt.Printf("Testing %s\n\n", c.BaseURL())
	framework.PrintFilterDescription(os.Stdout, params.filters)

	fmt.Println("Running test suite")

	testLogger := &ConsoleTestLogger{
		Out:                  os.Stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := usertests.RunTestSuite(c, params.filters.AsFilter, testLogger, usertests.SuiteOptions{
		Parallelism:    params.parallel,
		ExtraScenarios: extraScenarios,
		Logger:         mainDebugLogger,
	})

	fmt.Println()
	framework.PrintResults(os.Stdout, results)

	if params.reportPath != "" {
		if err := framework.WriteReport(params.reportPath, results); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if !results.OK() {
		fmt.Println()
		fmt.Println("To run only the failed tests again:")
		fmt.Printf("  %s\n", params.rerunCommand(args[0], results.Failures))
		return 1
	}
	return 0
}
