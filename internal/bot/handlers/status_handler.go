package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatusHandler returns a handler for the admin /status command.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	h := statusHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) { h.Handle(ctx, b, update) }
}

type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, c Client, update *models.Update) {
	if update.Message == nil {
		return
	}
	reply(ctx, h.deps, c, update.Message.Chat.ID, h.report(time.Now()))
}

func (h statusHandler) report(now time.Time) string {
	last := "never"
	if t, ok := h.deps.Status.LastCheck(); ok {
		last = t.In(h.deps.Config.Location()).Format(time.RFC1123)
	}
	uptime := "unknown"
	if !h.deps.StartedAt.IsZero() {
		uptime = now.Sub(h.deps.StartedAt).Truncate(time.Second).String()
	}
	return fmt.Sprintf("📊 Bot status\nUptime: %s\nLast scheduled check: %s\nPending starting-soon warnings: %d",
		uptime, last, h.deps.Status.PendingWarnings())
}
