package tasks

import (
	"context"
	"fmt"
)

func newMotivationTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "daily_motivation")

	return func(ctx context.Context) error {
		if err := deps.Reminders.SendMotivation(ctx); err != nil {
			return fmt.Errorf("daily motivation: %w", err)
		}
		log.InfoContext(ctx, "Motivation message sent")
		return nil
	}
}

func newPracticeReminderTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "practice_reminder")

	return func(ctx context.Context) error {
		if err := deps.Reminders.SendPracticeReminder(ctx); err != nil {
			return fmt.Errorf("practice reminder: %w", err)
		}
		log.InfoContext(ctx, "Practice reminder sent")
		return nil
	}
}
