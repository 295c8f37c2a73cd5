package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// setupAppTest creates a new app instance with captured stdout and logs.
func setupAppTest(t *testing.T, cfg *Config, opts ...Option) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	out := &SafeBuffer{}
	logs := &SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(out, logs, cfg, opts...)
	t.Cleanup(func() {
		_ = testApp.Close()
		if os.Getenv("CHECKOUT_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return testApp, out, logs
}

// optimizerStub is a fake optimizer service that records request bodies.
type optimizerStub struct {
	mu      sync.Mutex
	bodies  map[string][]map[string]any
	replies map[string]string
}

func newOptimizerStub(t *testing.T, replies map[string]string) (*optimizerStub, *httptest.Server) {
	t.Helper()
	stub := &optimizerStub{bodies: map[string][]map[string]any{}, replies: replies}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := strings.TrimPrefix(r.URL.Path, "/")
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		stub.mu.Lock()
		stub.bodies[endpoint] = append(stub.bodies[endpoint], body)
		stub.mu.Unlock()

		reply, ok := stub.replies[endpoint]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return stub, srv
}

func (s *optimizerStub) received(endpoint string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.bodies[endpoint]...)
}

// slowOptimizer answers {"cost": 100, "price": 100} on every endpoint, holding
// the endpoints listed in slow for delay first. It counts calls per endpoint.
type slowOptimizer struct {
	products atomic.Int32
	nearby   atomic.Int32
}

func newSlowOptimizer(t *testing.T, delay time.Duration, slow ...string) (*slowOptimizer, *httptest.Server) {
	t.Helper()
	stub := &slowOptimizer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		endpoint := strings.TrimPrefix(r.URL.Path, "/")
		switch endpoint {
		case "products":
			stub.products.Add(1)
		case "nearby-products":
			stub.nearby.Add(1)
		}
		for _, s := range slow {
			if s != endpoint {
				continue
			}
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		_, _ = io.WriteString(w, `{"cost": 100, "price": 100}`)
	}))
	t.Cleanup(srv.Close)
	return stub, srv
}

func writeBasket(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0600))
	return p
}
