package health

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedState struct {
	t  time.Time
	ok bool
}

func (f fixedState) LastCheck() (time.Time, bool) { return f.t, f.ok }

func newTestServer(state StatusSource) *Server {
	s := NewServer("127.0.0.1:0", time.Second, state, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.startedAt = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return s.startedAt.Add(90 * time.Second) }
	return s
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestServer(nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, LivenessText, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		state     StatusSource
		wantCheck *string
	}{
		{name: "no state", state: nil},
		{name: "never checked", state: fixedState{}},
		{
			name:      "checked",
			state:     fixedState{t: time.Date(2026, 10, 18, 17, 30, 0, 0, time.FixedZone("IST", 19800)), ok: true},
			wantCheck: ptr("2026-10-18T12:00:00Z"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			newTestServer(tt.state).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var raw map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
			assert.Contains(t, raw, "lastScheduledCheck")

			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "ok", resp.Status)
			assert.InDelta(t, 90.0, resp.Uptime, 0.001)
			assert.Equal(t, "2026-10-18T12:01:30Z", resp.Timestamp)
			assert.Equal(t, tt.wantCheck, resp.LastScheduledCheck)
		})
	}
}

func TestMetricsAndUnknownPaths(t *testing.T) {
	t.Parallel()

	h := newTestServer(nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServe_GracefulShutdown(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := newTestServer(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_ListenError(t *testing.T) {
	t.Parallel()

	s := NewServer("256.0.0.1:bad", time.Second, nil, nil)
	assert.Error(t, s.Run(context.Background()))
}

func ptr(s string) *string { return &s }
