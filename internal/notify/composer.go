package notify

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/edgard/contestbot/internal/contest"
)

const (
	// maxDescriptionRunes keeps a single field well inside Telegram's message limit.
	maxDescriptionRunes = 200
	truncationSuffix    = "..."

	// ActionPrefix starts the callback data of every button the bot attaches.
	ActionPrefix = "contest:"
)

// Composer turns contest records into payloads.
type Composer struct {
	formatter *TimeFormatter
	log       *slog.Logger
}

// NewComposer creates a Composer using formatter for start times.
func NewComposer(formatter *TimeFormatter, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		formatter: formatter,
		log:       logger.With("component", "composer"),
	}
}

// Compose builds the reminder for one platform. Records without a title or
// start time are skipped with a warning; when nothing usable remains the
// result is the plain "no contests" message, never an empty rich message.
func (c *Composer) Compose(platform contest.Platform, records []contest.Record) Payload {
	fields := make([]Field, 0, len(records))
	links := make([]Link, 0, len(records))

	for i, rec := range records {
		if rec.Title == "" || rec.StartTime <= 0 {
			c.log.Warn("Skipping contest record with missing title or start time",
				"platform", string(platform),
				"index", i,
				"title", rec.Title,
				"start_time", rec.StartTime,
			)
			continue
		}

		fields = append(fields, c.contestField(rec))
		if rec.URL != "" {
			links = append(links, Link{Label: "🔗 " + rec.Title, URL: rec.URL})
		}
	}

	if len(fields) == 0 {
		return Payload{Text: NoContestsMessage(platform)}
	}

	return Payload{Rich: &RichMessage{
		Title:       fmt.Sprintf("📅 Upcoming %s Contests", platform.Label()),
		Description: "Mark your calendar and good luck! 🍀",
		Fields:      fields,
		Links:       links,
		Actions:     []Action{RefreshAction(platform)},
	}}
}

// ComposeStartingSoon builds the deferred warning for a single contest.
func (c *Composer) ComposeStartingSoon(rec contest.Record, minutesLeft int) Payload {
	msg := &RichMessage{
		Title:       "⏰ Contest starting soon!",
		Description: fmt.Sprintf("%s contest starts in %d minutes.", rec.Platform.Label(), minutesLeft),
		Fields:      []Field{c.contestField(rec)},
	}
	if rec.URL != "" {
		msg.Links = []Link{{Label: "🚀 Join " + rec.Title, URL: rec.URL}}
	}
	return Payload{Rich: msg}
}

// ComposeMotivation wraps a motivational quote.
func (c *Composer) ComposeMotivation(quote string) Payload {
	return Payload{Text: "💪 Daily motivation\n\n" + strings.TrimSpace(quote)}
}

// ComposePracticeReminder wraps the practice reminder template.
func (c *Composer) ComposePracticeReminder(text string) Payload {
	return Payload{Text: strings.TrimSpace(text)}
}

func (c *Composer) contestField(rec contest.Record) Field {
	lines := []string{
		"🕒 Starts: " + c.formatter.Format(rec.StartTime),
		"⏳ Duration: " + formatHours(rec.DurationMinutes),
	}
	if rec.URL != "" {
		lines = append(lines, "🔗 Link: "+rec.URL)
	}
	if rec.Description != "" {
		lines = append(lines, "📝 "+truncate(rec.Description, maxDescriptionRunes))
	}
	return Field{
		Name:  "🏆 " + rec.Title,
		Value: strings.Join(lines, "\n"),
	}
}

// NoContestsMessage is the explicit "checked, none found" reply.
func NoContestsMessage(platform contest.Platform) string {
	switch platform {
	case contest.PlatformLeetCode:
		return "📭 No upcoming LeetCode contests found."
	case contest.PlatformCodeChef:
		return "📭 No upcoming CodeChef contests found right now."
	default:
		return fmt.Sprintf("📭 No upcoming %s contests found.", platform.Label())
	}
}

// RefreshAction is the button that re-runs a platform reminder.
func RefreshAction(platform contest.Platform) Action {
	return Action{Label: "🔄 Refresh", Data: ActionPrefix + string(platform)}
}

// formatHours renders a duration in whole hours, rounded.
func formatHours(minutes int) string {
	hours := int(math.Round(float64(minutes) / 60))
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}

func truncate(s string, maxRunes int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= maxRunes {
		return string(runes)
	}
	return string(runes[:maxRunes-len(truncationSuffix)]) + truncationSuffix
}
