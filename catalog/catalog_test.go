package catalog

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/restcontract/api-contract-tests/client"
	"github.com/restcontract/api-contract-tests/expect"
	"github.com/restcontract/api-contract-tests/framework"
	"github.com/restcontract/api-contract-tests/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userService answers GET /users/{id} with that id, except that user 2 comes back with the
// wrong id.
func userService() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		id := strings.TrimPrefix(r.URL.Path, "/users/")
		switch {
		case r.Method == "POST":
			w.WriteHeader(500)
			_, _ = w.Write([]byte(`{}`))
		case id == "2":
			_, _ = w.Write([]byte(`{"id":99}`))
		default:
			_, _ = fmt.Fprintf(w, `{"id":%s}`, id)
		}
	})
}

func userByID() Parametrized {
	return Parametrized{
		Name:   "get user by id",
		Params: []interface{}{1, 2, 3},
		Build: func(param interface{}) Case {
			return Case{
				Method: client.MethodGet,
				Path:   fmt.Sprintf("/users/%v", param),
				Expect: []expect.Expectation{expect.StatusEquals(200), expect.FieldEquals("id", param)},
			}
		},
	}
}

func runCatalog(t *testing.T, c Catalog, filter framework.Filter, parallelism int) framework.Results {
	var results framework.Results
	httphelpers.WithServer(userService(), func(server *httptest.Server) {
		cl, err := client.New(client.Config{BaseURL: server.URL, Timeout: time.Second})
		require.NoError(t, err)
		runner := scenario.NewRunner(cl, nil)
		results = framework.Run(filter, nil, func(ctx *framework.Context) {
			c.Run(ctx, runner, parallelism)
		})
	})
	return results
}

func drain(ch <-chan httphelpers.HTTPRequestInfo) []httphelpers.HTTPRequestInfo {
	var ret []httphelpers.HTTPRequestInfo
	for {
		select {
		case r := <-ch:
			ret = append(ret, r)
		default:
			return ret
		}
	}
}

func testIDs(tests []framework.TestResult) []string {
	var ret []string
	for _, t := range tests {
		ret = append(ret, t.TestID.String())
	}
	return ret
}

func TestExpandNamesEachVariant(t *testing.T) {
	cases := userByID().Expand()
	require.Len(t, cases, 3)
	assert.Equal(t, "get user by id/1", cases[0].Name)
	assert.Equal(t, "get user by id/3", cases[2].Name)
	assert.Equal(t, "/users/2", cases[1].Path)
}

func TestAllCasesIncludesExpandedVariants(t *testing.T) {
	c := Catalog{
		Cases:        []Case{{Name: "list", Method: client.MethodGet, Path: "/users"}},
		Parametrized: []Parametrized{userByID()},
	}
	var names []string
	for _, tc := range c.AllCases() {
		names = append(names, tc.Name)
	}
	assert.Equal(t, []string{"list", "get user by id/1", "get user by id/2", "get user by id/3"}, names)
}

func TestFailingVariantDoesNotAffectOthers(t *testing.T) {
	for _, parallelism := range []int{1, 3} {
		t.Run(fmt.Sprintf("parallelism %d", parallelism), func(t *testing.T) {
			results := runCatalog(t, Catalog{Name: "users", Parametrized: []Parametrized{userByID()}}, nil, parallelism)

			assert.Equal(t, []string{"users/get user by id/2"}, testIDs(results.Failures))
			assert.ElementsMatch(t, []string{
				"users/get user by id/1",
				"users/get user by id/2",
				"users/get user by id/3",
				"users/get user by id",
				"users",
			}, testIDs(results.Tests))
			require.Len(t, results.Failures[0].Errors, 1)
			assert.Contains(t, results.Failures[0].Errors[0].Error(), "expected 2, got 99")
		})
	}
}

func TestEveryCaseIsRecordedWithParallelWorkers(t *testing.T) {
	var cases []Case
	for i := 1; i <= 8; i++ {
		cases = append(cases, Case{
			Name:   fmt.Sprintf("case %d", i),
			Method: client.MethodGet,
			Path:   fmt.Sprintf("/users/%d", i+10),
			Expect: []expect.Expectation{expect.StatusEquals(200)},
		})
	}
	results := runCatalog(t, Catalog{Cases: cases}, nil, 4)
	assert.True(t, results.OK())
	assert.Len(t, results.Tests, 8)
}

func TestScenarioStepsAreReportedAsSubtests(t *testing.T) {
	s := scenario.Scenario{
		Name: "lifecycle",
		Steps: []scenario.Step{
			{Name: "read", Method: client.MethodGet, Path: "/users/1", Expect: []expect.Expectation{expect.StatusEquals(200)}},
			{Name: "create", Method: client.MethodPost, Path: "/users", Critical: true,
				Expect: []expect.Expectation{expect.StatusEquals(201)}},
			{Name: "read again", Method: client.MethodGet, Path: "/users/1"},
		},
	}
	results := runCatalog(t, Catalog{Scenarios: []scenario.Scenario{s}}, nil, 2)

	assert.Equal(t, []string{"lifecycle/create"}, testIDs(results.Failures))
	var skipped []string
	for _, r := range results.Tests {
		if r.Skipped {
			skipped = append(skipped, r.TestID.String())
		}
	}
	assert.Equal(t, []string{"lifecycle/read again"}, skipped)
	assert.Equal(t, 2, results.Passed()) // "read" and the scenario group
}

func TestFilterSelectsSingleVariant(t *testing.T) {
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("users/get user by id/3"))
	results := runCatalog(t, Catalog{Name: "users", Parametrized: []Parametrized{userByID()}}, filters.AsFilter, 1)

	assert.True(t, results.OK())
	assert.Contains(t, testIDs(results.Tests), "users/get user by id/3")
	assert.NotContains(t, testIDs(results.Tests), "users/get user by id/2")
}

func TestRunCaseUsesEnvironmentReferences(t *testing.T) {
	t.Setenv("CATALOG_TEST_USER", "7")
	results := runCatalog(t, Catalog{Cases: []Case{{
		Name:   "from env",
		Method: client.MethodGet,
		Path:   "/users/{{env.CATALOG_TEST_USER}}",
		Expect: []expect.Expectation{expect.FieldEquals("id", 7)},
	}}}, nil, 1)
	assert.True(t, results.OK(), "%v", results.Failures)
}

func TestSkippedScenarioStepSendsNoRequest(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithJSONResponse(map[string]interface{}{"id": 11}, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		cl, err := client.New(client.Config{BaseURL: server.URL, Timeout: time.Second})
		require.NoError(t, err)
		s := scenario.Scenario{
			Name: "lifecycle",
			Steps: []scenario.Step{
				{Name: "read", Method: client.MethodGet, Path: "/users/11"},
				{Name: "delete", Method: client.MethodDelete, Path: "/users/11"},
			},
		}
		var filters framework.RegexFilters
		require.NoError(t, filters.MustNotMatch.Set("lifecycle/delete"))
		results := framework.Run(filters.AsFilter, nil, func(ctx *framework.Context) {
			Catalog{Scenarios: []scenario.Scenario{s}}.Run(ctx, scenario.NewRunner(cl, nil), 1)
		})

		assert.True(t, results.OK())
		assert.NotContains(t, testIDs(results.Tests), "lifecycle/delete")
		reqs := drain(requestsCh)
		require.Len(t, reqs, 1)
		assert.Equal(t, "GET", reqs[0].Request.Method)
	})
}

func TestExcludedCriticalStepSkipsLaterSteps(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(201))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		cl, err := client.New(client.Config{BaseURL: server.URL, Timeout: time.Second})
		require.NoError(t, err)
		s := scenario.Scenario{
			Name: "lifecycle",
			Steps: []scenario.Step{
				{Name: "create", Method: client.MethodPost, Path: "/users", Critical: true},
				{Name: "read", Method: client.MethodGet, Path: "/users/11"},
			},
		}
		var filters framework.RegexFilters
		require.NoError(t, filters.MustMatch.Set("lifecycle/read"))
		results := framework.Run(filters.AsFilter, nil, func(ctx *framework.Context) {
			Catalog{Scenarios: []scenario.Scenario{s}}.Run(ctx, scenario.NewRunner(cl, nil), 1)
		})

		assert.True(t, results.OK())
		assert.Equal(t, 1, results.Skipped())
		assert.Len(t, drain(requestsCh), 0)
	})
}

func TestParamNameEscapesSlash(t *testing.T) {
	assert.Equal(t, "2", ParamName(2))
	assert.Equal(t, "a%2Fb", ParamName("a/b"))

	p := Parametrized{
		Name:   "get by path",
		Params: []interface{}{"1/2"},
		Build:  func(param interface{}) Case { return Case{Method: client.MethodGet, Path: "/users/1"} },
	}
	assert.Equal(t, "get by path/1%2F2", p.Expand()[0].Name)

	results := runCatalog(t, Catalog{Name: "users", Parametrized: []Parametrized{p}}, nil, 1)
	assert.Contains(t, testIDs(results.Tests), "users/get by path/1%2F2")
	for _, r := range results.Tests {
		assert.LessOrEqual(t, len(r.TestID.Path), 3)
	}
}
