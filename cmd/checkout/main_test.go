package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/checkout/internal/cli"
	"github.com/stretchr/testify/require"
)

func newOptimizer(t *testing.T, replies map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		reply, ok := replies[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newSlowOptimizer answers {"cost": 100, "price": 100} after delay, except on
// the endpoints listed in fast. It reports which endpoints were called.
func newSlowOptimizer(t *testing.T, delay time.Duration, fast ...string) (*httptest.Server, *sync.Map) {
	t.Helper()
	calls := &sync.Map{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		endpoint := strings.TrimPrefix(r.URL.Path, "/")
		calls.Store(endpoint, true)
		if !slices.Contains(fast, endpoint) {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		_, _ = io.WriteString(w, `{"cost": 100, "price": 100}`)
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func argsFor(t *testing.T, basketPath, serviceURL string) []string {
	t.Helper()
	return []string{
		"--json_path", basketPath,
		"--service_url", serviceURL,
		"--radius", "1000",
		"--exchange", "1",
		"--lat", "59.93",
		"--lon", "30.33",
		"--env-file", filepath.Join(t.TempDir(), "absent.env"),
	}
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	srv := newOptimizer(t, map[string]string{
		"products":        `{"cost": 80, "price": 150}`,
		"nearby-products": `{"cost": 100, "price": 200}`,
	})
	basketPath := filepath.Join(t.TempDir(), "basket.json")
	require.NoError(t, os.WriteFile(basketPath, []byte(`{"products": []}`), 0600))
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(out, errOut, argsFor(t, basketPath, srv.URL))

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "cost savings, %: 20.0")
	require.Contains(t, out.String(), "price savings, %: 25.0")
	require.Contains(t, errOut.String(), "Pricing basket.", "logs go to the error writer")
}

func TestRun_MissingBasketExitsWithOne(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	missing := filepath.Join(t.TempDir(), "missing.json")
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(out, errOut, argsFor(t, missing, "http://127.0.0.1:1"))

	// --- Assert ---
	require.Error(t, err)
	exitErr := cli.Exit(err)
	require.Equal(t, 1, exitErr.Code)
	require.Contains(t, exitErr.Message, missing)
}

func TestRun_InvalidJSONExitsWithOne(t *testing.T) {
	t.Parallel()

	basketPath := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(basketPath, []byte(`{"products": `), 0600))

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, argsFor(t, basketPath, "http://127.0.0.1:1"))

	require.Error(t, err)
	require.Equal(t, 1, cli.Exit(err).Code)
}

func TestRun_AggregationFailureExitsWithThree(t *testing.T) {
	t.Parallel()

	// Only nearby-products answers; products returns 404 with a plain body.
	srv := newOptimizer(t, map[string]string{
		"nearby-products": `{"cost": 100, "price": 200}`,
	})
	basketPath := filepath.Join(t.TempDir(), "basket.json")
	require.NoError(t, os.WriteFile(basketPath, []byte(`{}`), 0600))
	out := &bytes.Buffer{}

	err := run(out, &bytes.Buffer{}, argsFor(t, basketPath, srv.URL))

	require.Error(t, err)
	require.Equal(t, cli.CodeReport, cli.Exit(err).Code)
	require.Contains(t, out.String(), "/products -> 404")
	require.Contains(t, out.String(), "/nearby-products -> 200")
}

func TestRun_TimeoutExitsWithThree(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	srv, calls := newSlowOptimizer(t, 5*time.Second, "nearby-products")
	basketPath := filepath.Join(t.TempDir(), "basket.json")
	require.NoError(t, os.WriteFile(basketPath, []byte(`{}`), 0600))
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, append(argsFor(t, basketPath, srv.URL), "--timeout", "50ms"))

	// --- Assert ---
	require.Error(t, err)
	require.Equal(t, cli.CodeReport, cli.Exit(err).Code)
	require.Contains(t, out.String(), "POST "+srv.URL+"/products failed:")
	_, nearbyCalled := calls.Load("nearby-products")
	require.True(t, nearbyCalled, "nearby-products must still be called")
}

func TestRun_ExplicitZeroTimeoutBeatsProfile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Both endpoints answer after 200ms, past the profile's 50ms.
	srv, _ := newSlowOptimizer(t, 200*time.Millisecond)
	dir := t.TempDir()
	basketPath := filepath.Join(dir, "basket.json")
	profilePath := filepath.Join(dir, "run.hcl")
	require.NoError(t, os.WriteFile(basketPath, []byte(`{}`), 0600))
	require.NoError(t, os.WriteFile(profilePath, []byte(`timeout = "50ms"`), 0600))
	out := &bytes.Buffer{}

	// --- Act ---
	args := append(argsFor(t, basketPath, srv.URL), "--timeout", "0", "--profile", profilePath)
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err, out.String())
	require.NotContains(t, out.String(), "failed:")
	require.Contains(t, out.String(), "cost savings, %: 0.0")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}

	// --- Act ---
	err := run(&bytes.Buffer{}, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
	require.Equal(t, cli.CodeUsage, cli.Exit(err).Code)
}
