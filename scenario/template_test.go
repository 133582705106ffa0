package scenario

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testVars = map[string]ldvalue.Value{
	"id":    ldvalue.Int(11),
	"name":  ldvalue.String("Test User"),
	"ratio": ldvalue.Float64(0.5),
	"tags":  ldvalue.ArrayOf(ldvalue.String("a"), ldvalue.String("b")),
}

func TestExpandString(t *testing.T) {
	for _, p := range []struct{ in, out string }{
		{"/users/{{id}}", "/users/11"},
		{"/users/{{ id }}/posts", "/users/11/posts"},
		{"{{name}} #{{id}}", "Test User #11"},
		{"r={{ratio}}", "r=0.5"},
		{"t={{tags}}", `t=["a","b"]`},
		{"no references", "no references"},
	} {
		t.Run(p.in, func(t *testing.T) {
			out, err := expandString(p.in, testVars)
			require.NoError(t, err)
			assert.Equal(t, p.out, out)
		})
	}
}

func TestExpandStringDoesNotReexpandValues(t *testing.T) {
	vars := map[string]ldvalue.Value{"a": ldvalue.String("{{b}}")}
	out, err := expandString("x{{a}}y", vars)
	require.NoError(t, err)
	assert.Equal(t, "x{{b}}y", out)
}

func TestExpandStringErrors(t *testing.T) {
	_, err := expandString("/users/{{nope}}", testVars)
	var ue *UnresolvedVariableError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "nope", ue.Name)

	_, err = expandString("/users/{{id", testVars)
	assert.Error(t, err)
}

func TestExpandStringFromEnvironment(t *testing.T) {
	t.Setenv("SCENARIO_TEST_TOKEN", "secret")
	out, err := expandString("Bearer {{env.SCENARIO_TEST_TOKEN}}", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", out)

	_, err = expandString("{{env.SCENARIO_TEST_UNSET_VARIABLE}}", nil)
	assert.Error(t, err)
}

func TestExpandBodyKeepsTypeOfWholeReference(t *testing.T) {
	body := map[string]interface{}{
		"id":     "{{id}}",
		"label":  "user {{id}}",
		"tags":   "{{tags}}",
		"nested": []interface{}{map[string]interface{}{"who": "{{name}}"}, true},
	}
	out, err := expandBody(body, testVars)
	require.NoError(t, err)
	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":11,"label":"user 11","tags":["a","b"],"nested":[{"who":"Test User"},true]}`, string(data))

	assert.Equal(t, "{{id}}", body["id"])
}

func TestExpandBodyAcceptsValuesAndStructs(t *testing.T) {
	fixture := ldvalue.ObjectBuild().Set("userId", ldvalue.String("{{id}}")).Build()
	out, err := expandBody(fixture, testVars)
	require.NoError(t, err)
	data, _ := json.Marshal(out)
	assert.JSONEq(t, `{"userId":11}`, string(data))

	type payload struct {
		Name string `json:"name"`
	}
	out, err = expandBody(payload{Name: "{{name}}"}, testVars)
	require.NoError(t, err)
	data, _ = json.Marshal(out)
	assert.JSONEq(t, `{"name":"Test User"}`, string(data))

	out, err = expandBody([]byte(`{"id":{{id}}}`), testVars)
	require.NoError(t, err)
	assert.Equal(t, `{"id":11}`, string(out.([]byte)))

	out, err = expandBody(nil, testVars)
	require.NoError(t, err)
	assert.Nil(t, out)
}
