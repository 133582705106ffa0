package usertests

import (
	"context"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restcontract/api-contract-tests/catalog"
	"github.com/restcontract/api-contract-tests/client"
	"github.com/restcontract/api-contract-tests/framework"
	"github.com/restcontract/api-contract-tests/scenario"
	"github.com/restcontract/api-contract-tests/servicedef"
)

// SuiteOptions control how the suite is run.
type SuiteOptions struct {
	// Parallelism is the number of independent tests that may run at once.
	Parallelism int

	// ExtraScenarios are run after the built-in tests, for instance scenarios loaded from
	// YAML files.
	ExtraScenarios []scenario.Scenario

	// Logger receives messages that are not specific to one test.
	Logger framework.Logger
}

func RunTestSuite(
	c *client.Client,
	filter framework.Filter,
	testLogger framework.TestLogger,
	options SuiteOptions,
) framework.Results {
	runner := scenario.NewRunner(c, options.Logger)

	return framework.Run(filter, testLogger, func(t *framework.Context) {
		UsersCatalog().Run(t, runner, options.Parallelism)

		catalog.Catalog{
			Name:      "integration",
			Scenarios: []scenario.Scenario{UserLifecycleScenario()},
		}.Run(t, runner, options.Parallelism)

		t.Run("fixtures", func(t *framework.Context) {
			DoFixtureTests(t, c)
		})

		if len(options.ExtraScenarios) > 0 {
			catalog.Catalog{
				Name:      "scenarios",
				Scenarios: options.ExtraScenarios,
			}.Run(t, runner, options.Parallelism)
		}
	})
}

// DoFixtureTests checks that the service echoes back what it is sent, using payloads that
// differ on every run.
func DoFixtureTests(t *framework.Context, c *client.Client) {
	t.Run("created user echoes unique identity", func(t *framework.Context) {
		user := NewUserBuilder().WithUniqueIdentity().Build()
		resp, err := c.WithLogger(t.DebugLogger()).Post(context.Background(), servicedef.UsersPath, user)
		require.NoError(t, err)
		require.Equal(t, 201, resp.Status)

		created := resp.Value()
		assert.Equal(t, user.GetByKey(servicedef.FieldUsername), created.GetByKey(servicedef.FieldUsername))
		assert.Equal(t, user.GetByKey(servicedef.FieldEmail), created.GetByKey(servicedef.FieldEmail))
		assert.True(t, created.GetByKey(servicedef.FieldID).IsInt(), "created user should have an integer id")
	})

	t.Run("partial payload is accepted", func(t *framework.Context) {
		user := NewUserBuilder().Without(servicedef.FieldAddress).Without(servicedef.FieldCompany).Build()
		resp, err := c.WithLogger(t.DebugLogger()).Post(context.Background(), servicedef.UsersPath, user)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.Status)
		assert.Equal(t, user.GetByKey(servicedef.FieldName), resp.Value().GetByKey(servicedef.FieldName))
	})
}
