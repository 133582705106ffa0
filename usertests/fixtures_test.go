package usertests

import (
	"testing"

	"github.com/restcontract/api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
)

func TestUserBuilderDefaults(t *testing.T) {
	user := NewUserBuilder().Build()
	assert.Equal(t, "Test User", user.GetByKey("name").StringValue())
	assert.Equal(t, "test.user@example.com", user.GetByKey("email").StringValue())
	assert.Equal(t, "Test City", user.GetByKey("address").GetByKey("city").StringValue())
	assert.Equal(t, "0", user.GetByKey("address").GetByKey("geo").GetByKey("lat").StringValue())
	assert.Equal(t, "Test Company", user.GetByKey("company").GetByKey("name").StringValue())
	assert.True(t, user.GetByKey("id").IsNull())
}

func TestUserBuilderProducesIndependentValues(t *testing.T) {
	b := NewUserBuilder()
	first := b.Build()
	second := b.WithName("Updated Name").Build()

	assert.Equal(t, "Test User", first.GetByKey("name").StringValue())
	assert.Equal(t, "Updated Name", second.GetByKey("name").StringValue())
	assert.True(t, NewUserBuilder().Build().Equal(NewUserBuilder().Build()))
}

func TestUserBuilderUniqueIdentity(t *testing.T) {
	a := NewUserBuilder().WithUniqueIdentity().Build()
	b := NewUserBuilder().WithUniqueIdentity().Build()
	assert.NotEqual(t, a.GetByKey("email").StringValue(), b.GetByKey("email").StringValue())
	assert.NotEqual(t, a.GetByKey("username").StringValue(), b.GetByKey("username").StringValue())
	assert.Contains(t, a.GetByKey("email").StringValue(), "@example.com")
	assert.Equal(t, "Test User", a.GetByKey("name").StringValue())
}

func TestUserBuilderWithout(t *testing.T) {
	user := NewUserBuilder().Without(servicedef.FieldCompany).Build()
	assert.True(t, user.GetByKey("company").IsNull())
	assert.Equal(t, "Test User", user.GetByKey("name").StringValue())
}

func TestUserBuilderIdentityFields(t *testing.T) {
	user := NewUserBuilder().WithUsername("jdoe").WithEmail("jdoe@example.org").Build()
	assert.Equal(t, "jdoe", user.GetByKey(servicedef.FieldUsername).StringValue())
	assert.Equal(t, "jdoe@example.org", user.GetByKey(servicedef.FieldEmail).StringValue())
	assert.Equal(t, "Test User", user.GetByKey(servicedef.FieldName).StringValue())
}
