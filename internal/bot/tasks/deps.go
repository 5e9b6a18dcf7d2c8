// Package tasks implements the scheduled tasks of the contest reminder bot.
// It includes task definitions, dependencies, and registration mechanisms.
package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/contestbot/internal/config"
	"github.com/edgard/contestbot/internal/contest"
	"github.com/edgard/contestbot/internal/delivery"
)

// Reminders is the reminder surface the tasks drive. *reminder.Service
// satisfies it.
type Reminders interface {
	DefaultChat() delivery.ChatRef
	RemindPlatform(ctx context.Context, chat delivery.ChatRef, platform contest.Platform) bool
	RemindAll(ctx context.Context, chat delivery.ChatRef) bool
	ScanStartingSoon(ctx context.Context) int
	SendMotivation(ctx context.Context) error
	SendPracticeReminder(ctx context.Context) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger    *slog.Logger
	Reminders Reminders
	Config    *config.Config
}
