package usertests

import (
	"github.com/google/uuid"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/restcontract/api-contract-tests/servicedef"
)

// UserBuilder produces request payloads for creating or replacing a user. Every call to
// Build returns a new immutable value, so a payload used by one test can never be changed
// by another.
type UserBuilder struct {
	name     string
	username string
	email    string
	phone    string
	website  string
	address  ldvalue.Value
	company  ldvalue.Value
	omit     map[string]bool
}

// NewUserBuilder returns a builder preloaded with a complete, valid user.
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		name:     "Test User",
		username: "testuser",
		email:    "test.user@example.com",
		phone:    "1-234-567-8900",
		website:  "testuser.com",
		address: ldvalue.ObjectBuild().
			Set("street", ldvalue.String("Test Street")).
			Set("suite", ldvalue.String("Apt. 100")).
			Set("city", ldvalue.String("Test City")).
			Set("zipcode", ldvalue.String("12345")).
			Set("geo", ldvalue.ObjectBuild().
				Set("lat", ldvalue.String("0")).
				Set("lng", ldvalue.String("0")).
				Build()).
			Build(),
		company: ldvalue.ObjectBuild().
			Set("name", ldvalue.String("Test Company")).
			Set("catchPhrase", ldvalue.String("Test phrase")).
			Set("bs", ldvalue.String("Test business")).
			Build(),
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithUniqueIdentity replaces the username and email with values containing a random UUID,
// so that users created by different runs can be told apart.
func (b *UserBuilder) WithUniqueIdentity() *UserBuilder {
	id := uuid.New().String()
	return b.WithUsername("user-" + id).WithEmail("user-" + id + "@example.com")
}

// Without leaves a field out of the payload.
func (b *UserBuilder) Without(field string) *UserBuilder {
	if b.omit == nil {
		b.omit = make(map[string]bool)
	}
	b.omit[field] = true
	return b
}

func (b *UserBuilder) Build() ldvalue.Value {
	fields := []struct {
		name  string
		value ldvalue.Value
	}{
		{servicedef.FieldName, ldvalue.String(b.name)},
		{servicedef.FieldUsername, ldvalue.String(b.username)},
		{servicedef.FieldEmail, ldvalue.String(b.email)},
		{servicedef.FieldAddress, b.address},
		{servicedef.FieldPhone, ldvalue.String(b.phone)},
		{servicedef.FieldWebsite, ldvalue.String(b.website)},
		{servicedef.FieldCompany, b.company},
	}
	ob := ldvalue.ObjectBuild()
	for _, f := range fields {
		if !b.omit[f.name] {
			ob.Set(f.name, f.value)
		}
	}
	return ob.Build()
}
