// Package servicedef describes the resources of the user-management service under test.
package servicedef
