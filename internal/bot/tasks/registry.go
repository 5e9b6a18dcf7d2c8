package tasks

import (
	"context"

	"github.com/edgard/contestbot/internal/config"
	"github.com/edgard/contestbot/internal/contest"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns every known task keyed by the name used in the
// scheduler.tasks configuration section.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		config.TaskLeetCodeReminder: newPlatformReminderTask(deps, contest.PlatformLeetCode),
		config.TaskCodeChefReminder: newPlatformReminderTask(deps, contest.PlatformCodeChef),
		config.TaskCombinedReminder: newCombinedReminderTask(deps),
		config.TaskStartingSoonScan: newStartingSoonScanTask(deps),
		config.TaskDailyMotivation:  newMotivationTask(deps),
		config.TaskPracticeReminder: newPracticeReminderTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
