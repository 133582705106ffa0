package usertests

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/restcontract/api-contract-tests/client"
	"github.com/restcontract/api-contract-tests/expect"
	"github.com/restcontract/api-contract-tests/fakeusers"
	"github.com/restcontract/api-contract-tests/framework"
	"github.com/restcontract/api-contract-tests/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSuite(t *testing.T, service *fakeusers.Service, filter framework.Filter, options SuiteOptions) framework.Results {
	var results framework.Results
	httphelpers.WithServer(service.Handler(), func(server *httptest.Server) {
		c, err := client.New(client.Config{BaseURL: server.URL, Timeout: time.Second * 5})
		require.NoError(t, err)
		results = RunTestSuite(c, filter, nil, options)
	})
	return results
}

func testIDs(tests []framework.TestResult) []string {
	var ret []string
	for _, r := range tests {
		ret = append(ret, r.TestID.String())
	}
	return ret
}

func TestSuitePassesAgainstConformingService(t *testing.T) {
	for _, parallelism := range []int{1, 4} {
		results := runSuite(t, fakeusers.New(), nil, SuiteOptions{Parallelism: parallelism})
		for _, f := range results.Failures {
			t.Errorf("unexpected failure in %s: %v", f.TestID, f.Errors)
		}
		ids := testIDs(results.Tests)
		for _, expected := range []string{
			"users/get user",
			"users/list users",
			"users/create user",
			"users/update user",
			"users/delete user",
			"users/response time",
			"users/get user by id/1",
			"users/get user by id/2",
			"users/get user by id/3",
			"integration/user lifecycle/create",
			"integration/user lifecycle/read",
			"integration/user lifecycle/rename",
			"integration/user lifecycle/delete",
			"fixtures/created user echoes unique identity",
			"fixtures/partial payload is accepted",
		} {
			assert.Contains(t, ids, expected)
		}
	}
}

func TestSuiteReportsWrongListSize(t *testing.T) {
	service := fakeusers.New()
	service.ListSize = 9
	results := runSuite(t, service, nil, SuiteOptions{Parallelism: 2})

	assert.Equal(t, []string{"users/list users"}, testIDs(results.Failures))
	require.Len(t, results.Failures[0].Errors, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "expected 10, got 9")
}

func TestSuiteRunsExtraScenarios(t *testing.T) {
	extra := scenario.Scenario{
		Name: "read second user",
		Steps: []scenario.Step{{
			Name:   "read",
			Method: client.MethodGet,
			Path:   "/users/2",
			Expect: []expect.Expectation{expect.FieldEquals("name", "User 2")},
		}},
	}
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("scenarios"))
	results := runSuite(t, fakeusers.New(), filters.AsFilter, SuiteOptions{ExtraScenarios: []scenario.Scenario{extra}})

	assert.True(t, results.OK(), "%v", results.Failures)
	assert.Equal(t, []string{"scenarios/read second user/read", "scenarios/read second user", "scenarios"},
		testIDs(results.Tests))
}

func TestUserLifecycleStopsWhenCreateFails(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		c, err := client.New(client.Config{BaseURL: server.URL})
		require.NoError(t, err)
		var filters framework.RegexFilters
		require.NoError(t, filters.MustMatch.Set("integration"))
		results := RunTestSuite(c, filters.AsFilter, nil, SuiteOptions{})

		assert.Equal(t, []string{"integration/user lifecycle/create"}, testIDs(results.Failures))
		assert.Equal(t, 3, results.Skipped())
	})
}
