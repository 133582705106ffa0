package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(path ...string) TestID { return TestID{Path: path} }

func TestRegexFiltersMustMatchByLevel(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustMatch.Set("users/get multiple"))

	assert.True(t, f.AsFilter(id("users")))
	assert.True(t, f.AsFilter(id("users", "get multiple users")))
	assert.True(t, f.AsFilter(id("users", "get multiple users", "1")))
	assert.False(t, f.AsFilter(id("users", "create user")))
	assert.False(t, f.AsFilter(id("posts")))
}

func TestRegexFiltersMustNotMatch(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustNotMatch.Set("performance"))

	assert.True(t, f.AsFilter(id("users", "get user")))
	assert.False(t, f.AsFilter(id("users", "response performance")))
}

func TestRegexFiltersNoPatternsMatchesEverything(t *testing.T) {
	var f RegexFilters
	assert.True(t, f.AsFilter(id("anything", "at all")))
}

func TestRegexListRejectsBadPattern(t *testing.T) {
	var r RegexList
	assert.Error(t, r.Set("("))
	assert.False(t, r.IsDefined())
}

func TestRegexListString(t *testing.T) {
	var r RegexList
	require.NoError(t, r.Set("a"))
	require.NoError(t, r.Set("b"))
	assert.Equal(t, `"a" or "b"`, r.String())
	assert.Equal(t, []string{"a", "b"}, r.Patterns())
}
