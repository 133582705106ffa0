// Package catalog declares test cases and scenarios as data and runs them as framework
// tests.
package catalog
