package servicedef

import (
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

const (
	UsersPath = "/users"

	// The service has ten users, so the first user it creates is always number 11.
	SeededUserCount = 10
	CreatedUserID   = SeededUserCount + 1

	FieldID       = "id"
	FieldName     = "name"
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldAddress  = "address"
	FieldPhone    = "phone"
	FieldWebsite  = "website"
	FieldCompany  = "company"
)

// RequiredUserFields are the properties that every user returned by the service has.
var RequiredUserFields = []string{
	FieldID, FieldName, FieldUsername, FieldEmail, FieldAddress, FieldPhone, FieldWebsite, FieldCompany,
}

// User is the resource representation used by the users endpoints. ID is assigned by the
// service and is absent from creation requests.
type User struct {
	ID       ldvalue.OptionalInt `json:"id"`
	Name     string              `json:"name"`
	Username string              `json:"username"`
	Email    string              `json:"email"`
	Address  *Address            `json:"address,omitempty"`
	Phone    string              `json:"phone,omitempty"`
	Website  string              `json:"website,omitempty"`
	Company  *Company            `json:"company,omitempty"`
}

type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     Geo    `json:"geo"`
}

type Geo struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

// UserPath returns the path of a single user, for instance "/users/1".
func UserPath(id interface{}) string {
	v := ldvalue.CopyArbitraryValue(id)
	if v.Type() == ldvalue.StringType {
		return UsersPath + "/" + v.StringValue()
	}
	return UsersPath + "/" + v.JSONString()
}

// UserSchema returns the OpenAPI schema of a user as returned by the service. A new schema
// is built on every call, so callers may modify it.
func UserSchema() *openapi3.Schema {
	geo := openapi3.NewObjectSchema().
		WithProperty("lat", openapi3.NewStringSchema()).
		WithProperty("lng", openapi3.NewStringSchema())
	geo.Required = []string{"lat", "lng"}

	address := openapi3.NewObjectSchema().
		WithProperty("street", openapi3.NewStringSchema()).
		WithProperty("suite", openapi3.NewStringSchema()).
		WithProperty("city", openapi3.NewStringSchema()).
		WithProperty("zipcode", openapi3.NewStringSchema()).
		WithProperty("geo", geo)
	address.Required = []string{"street", "city"}

	company := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("catchPhrase", openapi3.NewStringSchema()).
		WithProperty("bs", openapi3.NewStringSchema())
	company.Required = []string{"name"}

	user := openapi3.NewObjectSchema().
		WithProperty(FieldID, openapi3.NewIntegerSchema().WithMin(1)).
		WithProperty(FieldName, openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty(FieldUsername, openapi3.NewStringSchema()).
		WithProperty(FieldEmail, openapi3.NewStringSchema().WithPattern("@")).
		WithProperty(FieldAddress, address).
		WithProperty(FieldPhone, openapi3.NewStringSchema()).
		WithProperty(FieldWebsite, openapi3.NewStringSchema()).
		WithProperty(FieldCompany, company)
	user.Required = append([]string(nil), RequiredUserFields...)
	user.Title = "user"
	return user
}
