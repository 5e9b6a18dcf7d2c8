package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edgard/contestbot/internal/contest"
)

// errNotDelivered marks a cycle whose notification reached neither the
// primary nor the backup chat.
var errNotDelivered = errors.New("reminder not delivered")

// newPlatformReminderTask posts the weekly reminder for a single platform.
func newPlatformReminderTask(deps TaskDeps, platform contest.Platform) ScheduledTaskFunc {
	log := deps.Logger.With("task", string(platform)+"_reminder")

	return func(ctx context.Context) error {
		startTime := time.Now()
		if !deps.Reminders.RemindPlatform(ctx, deps.Reminders.DefaultChat(), platform) {
			return fmt.Errorf("%s reminder: %w", platform.Label(), errNotDelivered)
		}
		log.InfoContext(ctx, "Platform reminder sent", "duration", time.Since(startTime))
		return nil
	}
}

// newCombinedReminderTask posts one reminder per platform, in order.
func newCombinedReminderTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "combined_reminder")

	return func(ctx context.Context) error {
		startTime := time.Now()
		if !deps.Reminders.RemindAll(ctx, deps.Reminders.DefaultChat()) {
			return fmt.Errorf("combined reminder: %w", errNotDelivered)
		}
		log.InfoContext(ctx, "Combined reminder sent", "duration", time.Since(startTime))
		return nil
	}
}

// newStartingSoonScanTask arms deferred warnings for contests about to start.
func newStartingSoonScanTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "starting_soon_scan")

	return func(ctx context.Context) error {
		armed := deps.Reminders.ScanStartingSoon(ctx)
		log.DebugContext(ctx, "Starting-soon scan complete", "armed", armed)
		return nil
	}
}
