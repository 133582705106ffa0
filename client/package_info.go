// Package client is a thin HTTP client for JSON REST APIs under test. It issues exactly one
// attempt per call, measures how long each call took, and distinguishes transport failures
// and timeouts from ordinary HTTP responses.
package client
