package usertests

import (
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/restcontract/api-contract-tests/catalog"
	"github.com/restcontract/api-contract-tests/client"
	"github.com/restcontract/api-contract-tests/expect"
	"github.com/restcontract/api-contract-tests/scenario"
	"github.com/restcontract/api-contract-tests/servicedef"
)

const responseTimeLimit = time.Second * 2

// UsersCatalog returns the single-call tests of the users endpoints.
func UsersCatalog() catalog.Catalog {
	newUser := NewUserBuilder().Build()
	updatedUser := NewUserBuilder().WithName("Updated Name").Build()

	return catalog.Catalog{
		Name: "users",
		Cases: []catalog.Case{
			{
				Name:   "get user",
				Method: client.MethodGet,
				Path:   servicedef.UserPath(1),
				Expect: []expect.Expectation{
					expect.StatusEquals(200),
					expect.HeaderContains("Content-Type", "application/json"),
					expect.HasFields(servicedef.RequiredUserFields...),
					expect.FieldEquals(servicedef.FieldID, 1),
					expect.FieldContains(servicedef.FieldEmail, "@"),
					expect.FieldIsType(servicedef.FieldAddress, ldvalue.ObjectType),
					expect.MatchesSchema(servicedef.UserSchema()),
				},
			},
			{
				Name:   "list users",
				Method: client.MethodGet,
				Path:   servicedef.UsersPath,
				Expect: []expect.Expectation{
					expect.StatusEquals(200),
					expect.IsSequenceOfLength(servicedef.SeededUserCount),
					expect.AllUnique(servicedef.FieldID),
				},
			},
			{
				Name:   "create user",
				Method: client.MethodPost,
				Path:   servicedef.UsersPath,
				Body:   newUser,
				Expect: []expect.Expectation{
					expect.StatusEquals(201),
					expect.FieldEquals(servicedef.FieldID, servicedef.CreatedUserID),
					expect.FieldEquals(servicedef.FieldName, newUser.GetByKey(servicedef.FieldName)),
					expect.FieldEquals(servicedef.FieldEmail, newUser.GetByKey(servicedef.FieldEmail)),
				},
			},
			{
				Name:   "update user",
				Method: client.MethodPut,
				Path:   servicedef.UserPath(1),
				Body:   updatedUser,
				Expect: []expect.Expectation{
					expect.StatusEquals(200),
					expect.FieldEquals(servicedef.FieldID, 1),
					expect.FieldEquals(servicedef.FieldName, "Updated Name"),
				},
			},
			{
				Name:   "delete user",
				Method: client.MethodDelete,
				Path:   servicedef.UserPath(1),
				Expect: []expect.Expectation{expect.StatusIn(200, 204)},
			},
			{
				Name:   "response time",
				Method: client.MethodGet,
				Path:   servicedef.UserPath(1),
				Expect: []expect.Expectation{
					expect.StatusEquals(200),
					expect.ElapsedUnder(responseTimeLimit),
				},
			},
		},
		Parametrized: []catalog.Parametrized{
			{
				Name:   "get user by id",
				Params: []interface{}{1, 2, 3},
				Build: func(id interface{}) catalog.Case {
					return catalog.Case{
						Method: client.MethodGet,
						Path:   servicedef.UserPath(id),
						Expect: []expect.Expectation{
							expect.StatusEquals(200),
							expect.FieldEquals(servicedef.FieldID, id),
						},
					}
				},
			},
		},
	}
}

// UserLifecycleScenario creates a user, then reads, renames, and deletes it using the ID the
// service assigned.
func UserLifecycleScenario() scenario.Scenario {
	const renamed = "Updated Integration User"
	userPath := servicedef.UsersPath + "/{{id}}"
	return scenario.Scenario{
		Name: "user lifecycle",
		Steps: []scenario.Step{
			{
				Name:   "create",
				Method: client.MethodPost,
				Path:   servicedef.UsersPath,
				Body: ldvalue.ObjectBuild().
					Set(servicedef.FieldName, ldvalue.String("Integration User")).
					Set(servicedef.FieldEmail, ldvalue.String("integration@test.com")).
					Set(servicedef.FieldUsername, ldvalue.String("integration")).
					Build(),
				Expect: []expect.Expectation{
					expect.StatusEquals(201),
					expect.FieldExists(servicedef.FieldID),
				},
				Capture:  []scenario.Capture{{Var: "id", Path: servicedef.FieldID}},
				Critical: true,
			},
			{
				Name:   "read",
				Method: client.MethodGet,
				Path:   userPath,
				Expect: []expect.Expectation{expect.StatusEquals(200)},
			},
			{
				Name:   "rename",
				Method: client.MethodPatch,
				Path:   userPath,
				Body:   ldvalue.ObjectBuild().Set(servicedef.FieldName, ldvalue.String(renamed)).Build(),
				Expect: []expect.Expectation{
					expect.StatusEquals(200),
					expect.FieldEquals(servicedef.FieldName, renamed),
				},
			},
			{
				Name:   "delete",
				Method: client.MethodDelete,
				Path:   userPath,
				Expect: []expect.Expectation{expect.StatusIn(200, 204)},
			},
		},
	}
}
