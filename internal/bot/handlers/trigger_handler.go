package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTriggerHandler returns the handler for prefixed manual commands such as
// "!contest leetcode".
func NewTriggerHandler(deps HandlerDeps) bot.HandlerFunc {
	h := triggerHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) { h.Handle(ctx, b, update) }
}

type triggerHandler struct {
	deps HandlerDeps
}

func (h triggerHandler) Handle(ctx context.Context, c Client, update *models.Update) {
	log := h.deps.Logger.With("handler", "trigger")

	msg := update.Message
	if msg == nil {
		return
	}
	if h.fromBot(msg) {
		log.DebugContext(ctx, "Ignoring message from a bot", "chat_id", msg.Chat.ID)
		return
	}

	sub, ok := parseCommand(msg.Text, h.deps.Config.Telegram.CommandPrefix)
	if !ok {
		return
	}

	log.InfoContext(ctx, "Handling manual trigger", "chat_id", msg.Chat.ID, "user_id", msg.From.ID, "subcommand", sub)
	runner{h.deps}.run(ctx, c, msg.Chat.ID, sub, true)
}

// fromBot reports whether msg was written by this bot or any other bot
// account, or has no sender at all.
func (h triggerHandler) fromBot(msg *models.Message) bool {
	if msg.From == nil {
		return true
	}
	if msg.From.IsBot {
		return true
	}
	info := h.deps.Config.Telegram.BotInfo
	return info != nil && msg.From.ID == info.ID
}
