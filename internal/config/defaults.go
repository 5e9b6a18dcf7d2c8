package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration
const (
	DefaultLogLevel = "info"

	DefaultCommandPrefix = "!contest"
	DefaultSendRate      = 0.5 // messages per second, below Telegram's per-chat limit
	DefaultSendBurst     = 3
	DefaultAckReaction   = "👍"

	DefaultLeetCodeURL         = "https://leetcode.com/graphql"
	DefaultLeetCodeContestBase = "https://leetcode.com/contest"
	DefaultCodeChefURL         = "https://www.codechef.com/api/list/contests/all?sort_by=START&sorting_order=asc&offset=0&mode=all"
	DefaultCodeChefContestBase = "https://www.codechef.com"
	DefaultSourceTimeout       = 15 * time.Second

	DefaultRetryMaxAttempts = 3
	DefaultRetryDelay       = 5 * time.Second

	DefaultLookahead  = 30 * time.Minute
	DefaultWarnBefore = 10 * time.Minute

	DefaultTimezone = "Asia/Kolkata"

	DefaultHTTPAddr            = ":3000"
	DefaultHTTPShutdownTimeout = 10 * time.Second
)

// Task names. They key the scheduler section and the task registry.
const (
	TaskLeetCodeReminder = "leetcode_reminder"
	TaskCodeChefReminder = "codechef_reminder"
	TaskCombinedReminder = "combined_reminder"
	TaskStartingSoonScan = "starting_soon_scan"
	TaskDailyMotivation  = "daily_motivation"
	TaskPracticeReminder = "practice_reminder"
)

// DefaultTasks is the built-in schedule, in the configured timezone.
var DefaultTasks = map[string]TaskConfig{
	TaskLeetCodeReminder: {Enabled: true, Schedule: "0 20 * * 6"}, // Saturday evening, before Sunday's weekly
	TaskCodeChefReminder: {Enabled: true, Schedule: "0 18 * * 3"}, // Wednesday, before Starters
	TaskCombinedReminder: {Enabled: true, Schedule: "0 9 * * 1"},  // Monday morning digest
	TaskStartingSoonScan: {Enabled: true, Schedule: "*/10 * * * *"},
	TaskDailyMotivation:  {Enabled: true, Schedule: "0 8 * * *"},
	TaskPracticeReminder: {Enabled: true, Schedule: "0 21 * * *"},
}

// Default static message templates
var DefaultMessages = MessagesConfig{
	Welcome: "👋 Hi! I post LeetCode and CodeChef contest reminders here.\n" +
		"Type !contest help to see what I can do.",
	Help: "📖 Available commands:\n" +
		"!contest leetcode - upcoming LeetCode contests\n" +
		"!contest codechef - upcoming CodeChef contests\n" +
		"!contest all - both platforms\n" +
		"!contest soon - arm warnings for contests starting soon\n" +
		"!contest help - this message",
	Unauthorized:     "🚫 This command is for the bot administrator only.",
	PracticeReminder: "⏰ Daily practice check: have you solved a problem today? One problem a day keeps the rating drop away.",
	Motivations: []string{
		"💪 Every accepted solution started as a wrong answer. Keep submitting!",
		"🚀 Consistency beats intensity. Solve one problem today.",
		"🧠 The best time to learn a new algorithm was yesterday. The second best is now.",
		"🔥 Contests are practice for the real thing. Show up, compete, learn.",
		"🌱 Upsolving after a contest is where the rating really grows.",
	},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)
	v.SetDefault("logger.file", "")

	// Required values get empty defaults so AutomaticEnv can populate them.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.channel_id", "")
	v.SetDefault("telegram.backup_channel_id", "")
	v.SetDefault("telegram.admin_id", 0)
	v.SetDefault("telegram.command_prefix", DefaultCommandPrefix)
	v.SetDefault("telegram.send_rate", DefaultSendRate)
	v.SetDefault("telegram.send_burst", DefaultSendBurst)
	v.SetDefault("telegram.ack_reaction", DefaultAckReaction)

	v.SetDefault("sources.leetcode_url", DefaultLeetCodeURL)
	v.SetDefault("sources.leetcode_contest_base", DefaultLeetCodeContestBase)
	v.SetDefault("sources.codechef_url", DefaultCodeChefURL)
	v.SetDefault("sources.codechef_contest_base", DefaultCodeChefContestBase)
	v.SetDefault("sources.timeout", DefaultSourceTimeout)

	v.SetDefault("retry.max_attempts", DefaultRetryMaxAttempts)
	v.SetDefault("retry.delay", DefaultRetryDelay)

	v.SetDefault("warnings.lookahead", DefaultLookahead)
	v.SetDefault("warnings.warn_before", DefaultWarnBefore)

	v.SetDefault("scheduler.timezone", DefaultTimezone)
	for name, task := range DefaultTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}

	v.SetDefault("http.addr", DefaultHTTPAddr)
	v.SetDefault("http.shutdown_timeout", DefaultHTTPShutdownTimeout)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.unauthorized", DefaultMessages.Unauthorized)
	v.SetDefault("messages.practice_reminder", DefaultMessages.PracticeReminder)
	v.SetDefault("messages.motivations", DefaultMessages.Motivations)
}
