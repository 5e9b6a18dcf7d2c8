package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/edgard/contestbot/internal/contest"
	"github.com/edgard/contestbot/internal/delivery"
)

// Subcommands understood after the command prefix and in button data.
const (
	subLeetCode = "leetcode"
	subCodeChef = "codechef"
	subAll      = "all"
	subSoon     = "soon"
	subHelp     = "help"
)

// runner executes a subcommand against a chat. Reminders run synchronously
// in the caller's goroutine with no queueing.
type runner struct {
	deps HandlerDeps
}

// run executes sub in chatID. When ack is set an acknowledgment is sent
// before the reminder starts. Unknown subcommands get the help text.
func (r runner) run(ctx context.Context, c Client, chatID int64, sub string, ack bool) {
	log := r.deps.Logger.With("subcommand", sub, "chat_id", chatID)
	chat := delivery.ChatID(chatID)

	switch sub {
	case subLeetCode, subCodeChef:
		platform := contest.Platform(sub)
		if ack {
			reply(ctx, r.deps, c, chatID, fmt.Sprintf("🔍 Checking upcoming %s contests...", platform.Label()))
		}
		if !r.deps.Reminders.RemindPlatform(ctx, chat, platform) {
			log.WarnContext(ctx, "Manual reminder was not delivered")
		}
	case subAll:
		if ack {
			reply(ctx, r.deps, c, chatID, "🔍 Checking upcoming contests on all platforms...")
		}
		if !r.deps.Reminders.RemindAll(ctx, chat) {
			log.WarnContext(ctx, "Manual reminder was not fully delivered")
		}
	case subSoon:
		if ack {
			reply(ctx, r.deps, c, chatID, "🔍 Looking for contests starting soon...")
		}
		armed := r.deps.Reminders.ScanStartingSoon(ctx)
		reply(ctx, r.deps, c, chatID, fmt.Sprintf("⏰ Armed %d new starting-soon warning(s).", armed))
	default:
		if sub != subHelp {
			log.InfoContext(ctx, "Unknown subcommand")
		}
		sendHelp(ctx, r.deps, c, chatID)
	}
}

// parseCommand extracts the subcommand from text starting with prefix.
// ok is false when text is not addressed to the bot, for example
// "!contests" when the prefix is "!contest".
func parseCommand(text, prefix string) (sub string, ok bool) {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(strings.ToLower(text), strings.ToLower(prefix)) {
		return "", false
	}
	rest := text[len(prefix):]
	if rest != "" && !strings.ContainsAny(rest[:1], " \t\n") {
		return "", false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", true
	}
	return strings.ToLower(fields[0]), true
}
