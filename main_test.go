package main

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/restcontract/api-contract-tests/fakeusers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restoreColor undoes the global change made by -no-color when the test ends.
func restoreColor(t *testing.T) {
	noColor := color.NoColor
	t.Cleanup(func() { color.NoColor = noColor })
}

func TestRunExitsZeroWhenAllTestsPass(t *testing.T) {
	t.Setenv(timeoutEnvVar, "")
	restoreColor(t)
	httphelpers.WithServer(fakeusers.New().Handler(), func(server *httptest.Server) {
		assert.Equal(t, 0, run([]string{"api-tests", "-url", server.URL, "-no-color"}))
	})
}

func TestRunExitsNonZeroWhenAnyTestFails(t *testing.T) {
	t.Setenv(timeoutEnvVar, "")
	restoreColor(t)
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		assert.Equal(t, 1, run([]string{"api-tests", "-url", server.URL, "-no-color"}))
	})
}

func TestRunRejectsBadBaseURLBeforeSendingRequests(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		assert.Equal(t, 1, run([]string{"api-tests", "-url", "ftp://x"}))
		select {
		case r := <-requestsCh:
			t.Errorf("unexpected request: %s %s", r.Request.Method, r.Request.URL)
		default:
		}
	})
}

func TestRunWritesReport(t *testing.T) {
	t.Setenv(timeoutEnvVar, "")
	restoreColor(t)
	path := filepath.Join(t.TempDir(), "report.txt")
	service := fakeusers.New()
	service.ListSize = 9
	httphelpers.WithServer(service.Handler(), func(server *httptest.Server) {
		require.Equal(t, 1, run([]string{"api-tests", "-url", server.URL, "-no-color", "-report", path}))
	})
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FAIL  users/list users\n")
	assert.Contains(t, string(data), "PASS  users/get user\n")
}

func TestRunHelpExitsZero(t *testing.T) {
	assert.Equal(t, 0, run([]string{"api-tests", "-h"}))
}
