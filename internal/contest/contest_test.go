package contest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/contestbot/internal/resilience"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSourceConfig(endpoint, base string) SourceConfig {
	return SourceConfig{
		Endpoint:       endpoint,
		ContestBaseURL: base,
		Timeout:        2 * time.Second,
		Now:            func() time.Time { return fixedNow },
	}
}

func TestLeetCodeSource_Fetch(t *testing.T) {
	t.Parallel()

	now := fixedNow.Unix()
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req leetCodeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotQuery = req.Query

		_, _ = io.WriteString(w, `{"data":{"topTwoContests":[
			{"title":"Weekly Contest 300","titleSlug":"weekly-contest-300","startTime":`+itoa(now+3600)+`,"duration":5400},
			{"title":"Biweekly Contest 99","titleSlug":"biweekly-contest-99","startTime":`+itoa(now-60)+`,"duration":5400},
			{"title":"Exactly Now","titleSlug":"exactly-now","startTime":`+itoa(now)+`,"duration":5400}
		]}}`)
	}))
	defer srv.Close()

	src := NewLeetCodeSource(testSourceConfig(srv.URL, "https://leetcode.com/contest"), discardLogger())
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)

	want := []Record{{
		Title:           "Weekly Contest 300",
		StartTime:       now + 3600,
		DurationMinutes: 90,
		URL:             "https://leetcode.com/contest/weekly-contest-300/",
	}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, gotQuery, "topTwoContests")
	assert.Equal(t, PlatformLeetCode, src.Platform())
}

func TestLeetCodeSource_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "missing top-level field", status: 200, body: `{"data":{}}`, wantErr: ErrMalformedPayload},
		{name: "missing data", status: 200, body: `{}`, wantErr: ErrMalformedPayload},
		{name: "graphql errors", status: 200, body: `{"errors":[{"message":"rate limited"}]}`, wantErr: ErrMalformedPayload},
		{name: "not json", status: 200, body: `<html>blocked</html>`, wantErr: ErrMalformedPayload},
		{name: "server error", status: 502, body: `bad gateway`, wantErr: ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			src := NewLeetCodeSource(testSourceConfig(srv.URL, "https://leetcode.com/contest"), discardLogger())
			_, err := src.Fetch(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLeetCodeSource_EmptyListIsNotAnError(t *testing.T) {
	t.Parallel()

	src := NewLeetCodeSource(testSourceConfig("", ""), discardLogger())
	records, err := src.parse([]byte(`{"data":{"topTwoContests":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCodeChefSource_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, `{"status":"success","future_contests":[
			{"contest_code":"START200","contest_name":"Starters 200","contest_start_date_iso":"2026-10-22T20:00:00+05:30","contest_end_date_iso":"2026-10-22T22:00:00+05:30"},
			{"contest_code":"OLD1","contest_name":"Already Started","contest_start_date_iso":"2026-10-18T10:00:00+00:00","contest_end_date_iso":"2026-10-18T13:30:00+00:00"},
			{"contest_code":"BAD","contest_name":"Bad Dates","contest_start_date_iso":"soon","contest_end_date_iso":"later"}
		]}`)
	}))
	defer srv.Close()

	src := NewCodeChefSource(testSourceConfig(srv.URL, "https://www.codechef.com/"), discardLogger())
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)

	start := time.Date(2026, 10, 22, 20, 0, 0, 0, time.FixedZone("IST", 19800)).Unix()
	want := []Record{
		{Title: "Starters 200", StartTime: start, DurationMinutes: 120, URL: "https://www.codechef.com/START200"},
		// Already-started contests are kept for platform B.
		{Title: "Already Started", StartTime: fixedNow.Add(-2 * time.Hour).Unix(), DurationMinutes: 210, URL: "https://www.codechef.com/OLD1"},
		{Title: "Bad Dates", URL: "https://www.codechef.com/BAD"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestCodeChefSource_Parse(t *testing.T) {
	t.Parallel()

	src := NewCodeChefSource(testSourceConfig("", "https://www.codechef.com"), discardLogger())

	t.Run("future_contests absent is empty", func(t *testing.T) {
		records, err := src.parse([]byte(`{"status":"success","present_contests":[]}`))
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("missing status is malformed", func(t *testing.T) {
		_, err := src.parse([]byte(`{"future_contests":[]}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("failure status is malformed", func(t *testing.T) {
		_, err := src.parse([]byte(`{"status":"failure"}`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("array body is malformed", func(t *testing.T) {
		_, err := src.parse([]byte(`[1,2,3]`))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}

type fakeSource struct {
	platform Platform
	calls    atomic.Int32
	records  []Record
	err      error
}

func (f *fakeSource) Platform() Platform { return f.platform }

func (f *fakeSource) Fetch(context.Context) ([]Record, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return append([]Record(nil), f.records...), nil
}

func TestFetcher_AttachesPlatform(t *testing.T) {
	t.Parallel()

	src := &fakeSource{platform: PlatformCodeChef, records: []Record{{Title: "A", StartTime: 1}, {Title: "B", StartTime: 2}}}
	f := NewFetcher(src, resilience.RetryPolicy{MaxAttempts: 2, Delay: time.Millisecond}, discardLogger())

	records := f.FetchContests(context.Background())
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, PlatformCodeChef, r.Platform)
	}
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, PlatformCodeChef, f.Platform())
}

func TestFetcher_RetriesThenDegradesToEmpty(t *testing.T) {
	t.Parallel()

	for _, srcErr := range []error{ErrMalformedPayload, ErrUpstream, errors.New("dns failure")} {
		src := &fakeSource{platform: PlatformLeetCode, err: srcErr}
		f := NewFetcher(src, resilience.RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}, discardLogger())

		records := f.FetchContests(context.Background())
		assert.NotNil(t, records)
		assert.Empty(t, records)
		assert.Equal(t, int32(4), src.calls.Load(), "error %v", srcErr)
	}
}

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	p, err := ParsePlatform(" LeetCode ")
	require.NoError(t, err)
	assert.Equal(t, PlatformLeetCode, p)
	assert.Equal(t, "LeetCode", p.Label())

	p, err = ParsePlatform("codechef")
	require.NoError(t, err)
	assert.Equal(t, "CodeChef", p.Label())

	_, err = ParsePlatform("codeforces")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "success", classify(nil))
	assert.Equal(t, "malformed", classify(ErrMalformedPayload))
	assert.Equal(t, "upstream", classify(ErrUpstream))
	assert.Equal(t, "circuit_open", classify(resilience.ErrCircuitOpen))
	assert.Equal(t, "error", classify(errors.New("x")))
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"Weekly Contest 470", "Weekly Contest 470"},
		{"  Starters\t210 \n (Rated) ", "Starters 210 (Rated)"},
		{"Biweekly\u200b Contest\x00 150", "Biweekly Contest 150"},
		{"\u202eReversed", "Reversed"},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanText(tt.in), "input %q", tt.in)
	}
}
