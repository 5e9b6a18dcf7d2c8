package notify

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/contestbot/internal/contest"
)

func newTestComposer(t *testing.T) (*Composer, *bytes.Buffer) {
	t.Helper()

	f, err := NewTimeFormatter("Asia/Kolkata")
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewComposer(f, logger), &buf
}

func TestTimeFormatter_Format(t *testing.T) {
	t.Parallel()

	f, err := NewTimeFormatter("Asia/Kolkata")
	require.NoError(t, err)

	ts := time.Date(2026, 10, 25, 2, 30, 0, 0, time.UTC).Unix()

	tests := []struct {
		name string
		in   int64
		want string
	}{
		{name: "valid", in: ts, want: "Sunday, 25 October 2026 at 8:00 AM IST"},
		{name: "zero", in: 0, want: InvalidDate},
		{name: "negative", in: -5, want: InvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, f.Format(tt.in))
			// Stable across calls.
			assert.Equal(t, f.Format(tt.in), f.Format(tt.in))
		})
	}
}

func TestTimeFormatter_Unusable(t *testing.T) {
	t.Parallel()

	var nilFormatter *TimeFormatter
	assert.Equal(t, InvalidDate, nilFormatter.Format(1_700_000_000))
	assert.Equal(t, InvalidDate, (&TimeFormatter{}).Format(1_700_000_000))
	assert.Equal(t, time.UTC, nilFormatter.Location())

	_, err := NewTimeFormatter("Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestComposer_EmptyInput(t *testing.T) {
	t.Parallel()

	c, _ := newTestComposer(t)

	for _, p := range contest.Platforms {
		payload := c.Compose(p, nil)
		assert.False(t, payload.IsRich())
		assert.Equal(t, NoContestsMessage(p), payload.Text)
		assert.Contains(t, payload.Text, p.Label())
	}
}

func TestComposer_RichMessage(t *testing.T) {
	t.Parallel()

	c, _ := newTestComposer(t)
	start := time.Date(2026, 10, 25, 2, 30, 0, 0, time.UTC).Unix()

	records := []contest.Record{
		{Title: "Weekly Contest 300", StartTime: start, DurationMinutes: 90, URL: "https://leetcode.com/contest/weekly-contest-300/"},
		{Title: "Biweekly Contest 99", StartTime: start + 86400, DurationMinutes: 60},
		{Title: "Marathon", StartTime: start + 2*86400, DurationMinutes: 150, Description: "long one"},
	}

	payload := c.Compose(contest.PlatformLeetCode, records)
	require.True(t, payload.IsRich())

	msg := payload.Rich
	assert.Equal(t, "📅 Upcoming LeetCode Contests", msg.Title)
	require.Len(t, msg.Fields, 3)

	// Input order is preserved.
	assert.Equal(t, "🏆 Weekly Contest 300", msg.Fields[0].Name)
	assert.Equal(t, "🏆 Biweekly Contest 99", msg.Fields[1].Name)
	assert.Equal(t, "🏆 Marathon", msg.Fields[2].Name)

	assert.Contains(t, msg.Fields[0].Value, "🕒 Starts: Sunday, 25 October 2026 at 8:00 AM IST")
	// 90 minutes rounds to 2 hours.
	assert.Contains(t, msg.Fields[0].Value, "⏳ Duration: 2 hours")
	assert.Contains(t, msg.Fields[0].Value, "🔗 Link: https://leetcode.com/contest/weekly-contest-300/")
	assert.Contains(t, msg.Fields[1].Value, "⏳ Duration: 1 hour")
	assert.NotContains(t, msg.Fields[1].Value, "🔗")
	assert.Contains(t, msg.Fields[2].Value, "📝 long one")

	require.Len(t, msg.Links, 1)
	assert.Equal(t, "https://leetcode.com/contest/weekly-contest-300/", msg.Links[0].URL)
	require.Len(t, msg.Actions, 1)
	assert.Equal(t, "contest:leetcode", msg.Actions[0].Data)
}

func TestComposer_SkipsInvalidRecords(t *testing.T) {
	t.Parallel()

	c, logs := newTestComposer(t)
	records := []contest.Record{
		{Title: "", StartTime: 1_800_000_000},
		{Title: "Starters 200", StartTime: 1_800_000_000, DurationMinutes: 120},
		{Title: "No Start"},
	}

	payload := c.Compose(contest.PlatformCodeChef, records)
	require.True(t, payload.IsRich())
	require.Len(t, payload.Rich.Fields, 1)
	assert.Equal(t, "🏆 Starters 200", payload.Rich.Fields[0].Name)
	assert.Equal(t, 2, strings.Count(logs.String(), "level=WARN"))
}

// Mutates the process-wide default logger, so not parallel.
func TestNewComposer_NilLoggerUsesDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	f, err := NewTimeFormatter("UTC")
	require.NoError(t, err)
	c := NewComposer(f, nil)

	c.Compose(contest.PlatformLeetCode, []contest.Record{{Title: "Weekly Contest 480"}})
	assert.Contains(t, buf.String(), "Skipping contest record")
	assert.Contains(t, buf.String(), "component=composer")
}

func TestComposer_AllSkippedFallsBackToPlain(t *testing.T) {
	t.Parallel()

	c, logs := newTestComposer(t)
	payload := c.Compose(contest.PlatformCodeChef, []contest.Record{{Title: "x"}, {StartTime: 10}})

	assert.False(t, payload.IsRich())
	assert.Equal(t, NoContestsMessage(contest.PlatformCodeChef), payload.Text)
	assert.Contains(t, logs.String(), "Skipping contest record")
}

func TestComposer_TruncatesDescription(t *testing.T) {
	t.Parallel()

	c, _ := newTestComposer(t)
	long := strings.Repeat("é", 500)

	payload := c.Compose(contest.PlatformLeetCode, []contest.Record{{Title: "T", StartTime: 1_800_000_000, Description: long}})
	require.True(t, payload.IsRich())

	var desc string
	for _, line := range strings.Split(payload.Rich.Fields[0].Value, "\n") {
		if strings.HasPrefix(line, "📝 ") {
			desc = strings.TrimPrefix(line, "📝 ")
		}
	}
	assert.Equal(t, maxDescriptionRunes, utf8.RuneCountInString(desc))
	assert.True(t, strings.HasSuffix(desc, "..."))
}

func TestComposer_StartingSoon(t *testing.T) {
	t.Parallel()

	c, _ := newTestComposer(t)
	rec := contest.Record{
		Title:     "Starters 200",
		StartTime: 1_800_000_000,
		URL:       "https://www.codechef.com/START200",
		Platform:  contest.PlatformCodeChef,
	}

	payload := c.ComposeStartingSoon(rec, 10)
	require.True(t, payload.IsRich())
	assert.Contains(t, payload.Rich.Description, "CodeChef contest starts in 10 minutes")
	require.Len(t, payload.Rich.Links, 1)
	assert.Equal(t, rec.URL, payload.Rich.Links[0].URL)
}

func TestComposer_Templates(t *testing.T) {
	t.Parallel()

	c, _ := newTestComposer(t)
	assert.Equal(t, "💪 Daily motivation\n\nKeep going.", c.ComposeMotivation("  Keep going. ").Text)
	assert.Equal(t, "Practice!", c.ComposePracticeReminder("Practice!\n").Text)
}

func TestPayload_PlainText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", Payload{Text: "hello"}.PlainText())

	p := Payload{Rich: &RichMessage{
		Title:       "Title",
		Description: "Desc",
		Fields:      []Field{{Name: "A", Value: "a1\na2"}},
	}}
	assert.Equal(t, "Title\nDesc\n\nA\na1\na2", p.PlainText())
}

func TestFormatHours(t *testing.T) {
	t.Parallel()

	tests := map[int]string{
		0:   "0 hours",
		29:  "0 hours",
		30:  "1 hour",
		60:  "1 hour",
		89:  "1 hour",
		90:  "2 hours",
		180: "3 hours",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatHours(in), "minutes=%d", in)
	}
}
