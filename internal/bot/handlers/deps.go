package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/contestbot/internal/config"
	"github.com/edgard/contestbot/internal/contest"
	"github.com/edgard/contestbot/internal/delivery"
)

// Client is the part of *bot.Bot the handlers talk to.
type Client interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Reminders runs reminder cycles on demand. *reminder.Service satisfies it.
type Reminders interface {
	RemindPlatform(ctx context.Context, chat delivery.ChatRef, platform contest.Platform) bool
	RemindAll(ctx context.Context, chat delivery.ChatRef) bool
	ScanStartingSoon(ctx context.Context) int
}

// StatusReporter exposes the scheduler's runtime state.
type StatusReporter interface {
	LastCheck() (time.Time, bool)
	PendingWarnings() int
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Reminders Reminders
	Status    StatusReporter
	StartedAt time.Time
}
