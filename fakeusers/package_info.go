// Package fakeusers provides an in-memory implementation of the users API, for testing the
// test suite itself without a network connection.
package fakeusers
