package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atlasServer(t *testing.T, status int, body string) {
	t.Helper()
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/measurement/1234/latest/") {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	t.Setenv("ATLAS_API_URL", s.URL)
	t.Setenv("ATLAS_TIMEOUT", "")
	t.Setenv("ATLAS_LOG_LEVEL", "")
}

func runArgs(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestPingOK(t *testing.T) {
	now := time.Now().Unix()
	atlasServer(t, http.StatusOK, fmt.Sprintf(`[
		[1, 1001, 0, 0, 0, [12.5, %d]],
		[1, 1002, 0, 0, 0, [20.1, %d]]
	]`, now, now))

	code, stdout, _ := runArgs("ping", "--rtt_avg", "50", "1234")
	assert.Equal(t, 0, code)
	assert.Equal(t, "OK: 2\n", stdout)
}

func TestHTTPCritical(t *testing.T) {
	now := time.Now().Unix()
	atlasServer(t, http.StatusOK, fmt.Sprintf(`[
		[1, 1001, 0, 0, 0, [0, %d, [{"res": 503}]]],
		[1, 1002, 0, 0, 0, null]
	]`, now))

	code, stdout, _ := runArgs("http", "-v", "1234")
	assert.Equal(t, 2, code)
	assert.True(t, strings.HasPrefix(stdout, "ERROR: 2: 1002: [No data], 1001: [desired (200), real (503) (HTTP Status Code)]"), stdout)
}

func TestDNSMissingRecord(t *testing.T) {
	now := time.Now().Unix()
	atlasServer(t, http.StatusOK, fmt.Sprintf(`[
		[1, 1001, 0, 0, 0, [0, %d, {"question": "example.com. IN A", "rcode": "NOERROR", "flags": "qr rd ra", "authority": [], "additional": [], "answer": ["www.example.com. 60 IN CNAME example.com."]}]]
	]`, now))

	code, stdout, _ := runArgs("dns", "A", "--a-record", "192.0.2.1", "--rcode", "noerror", "-vv", "1234")
	assert.Equal(t, 2, code)
	assert.Contains(t, stdout, "No A Records Found")
	assert.Contains(t, stdout, "OK: 1: 1001: [measurement fresh")
}

func TestFetchFailureIsUnknown(t *testing.T) {
	atlasServer(t, http.StatusInternalServerError, "")

	code, stdout, _ := runArgs("ssl", "1234")
	assert.Equal(t, 3, code)
	assert.True(t, strings.HasPrefix(stdout, "UNKNOWN: "), stdout)
}

func TestUsageErrorsAreUnknown(t *testing.T) {
	atlasServer(t, http.StatusOK, "[]")

	code, _, _ := runArgs("ping")
	assert.Equal(t, 3, code)

	code, stdout, _ := runArgs("dns")
	assert.Equal(t, 3, code)
	assert.Contains(t, stdout, "record type is required")

	code, stdout, _ = runArgs("dns", "SOA", "--rcode", "BOGUS", "1234")
	assert.Equal(t, 3, code)
	assert.Contains(t, stdout, "unknown rcode")
}

func TestNegativeThresholdsAreRejected(t *testing.T) {
	atlasServer(t, http.StatusOK, "[]")

	for _, args := range [][]string{
		{"ping", "--rtt_avg=-1", "1234"},
		{"ping", "--rtt_min=-0.5", "1234"},
		{"ping", "--rtt_max=-10", "1234"},
		{"http", "--max_measurement_age=-60", "1234"},
	} {
		code, stdout, _ := runArgs(args...)
		assert.Equal(t, 3, code, args)
		assert.Contains(t, stdout, "must not be negative", args)
	}
}

func TestMetricsFile(t *testing.T) {
	now := time.Now().Unix()
	atlasServer(t, http.StatusOK, fmt.Sprintf(`[[1, 1001, 0, 0, 0, [12.5, %d]]]`, now))

	path := filepath.Join(t.TempDir(), "atlas.prom")
	code, _, _ := runArgs("ping", "--metrics-file", path, "1234")
	require.Equal(t, 0, code)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `atlas_check_status{kind="ping",measurement_id="1234"} 0`)
	assert.Contains(t, string(b), `atlas_check_probes{kind="ping",measurement_id="1234",state="ok"} 1`)
}
