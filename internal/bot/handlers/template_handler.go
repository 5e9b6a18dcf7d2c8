package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/contestbot/internal/delivery"
)

// templateHandler answers a command with a configured static message.
type templateHandler struct {
	deps   HandlerDeps
	name   string
	render func(HandlerDeps) string
}

// NewStartHandler returns a handler replying to /start with the welcome text.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return templateHandler{deps: deps, name: "start", render: welcomeText}.handlerFunc()
}

// NewHelpHandler returns a handler replying to /help with the command list.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return templateHandler{deps: deps, name: "help", render: helpText}.handlerFunc()
}

func (h templateHandler) handlerFunc() bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) { h.Handle(ctx, b, update) }
}

func (h templateHandler) Handle(ctx context.Context, c Client, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	h.deps.Logger.DebugContext(ctx, "Replying with template", "handler", h.name, "chat_id", chatID)
	reply(ctx, h.deps, c, chatID, h.render(h.deps))
}

func welcomeText(deps HandlerDeps) string {
	return withBotName(deps, deps.Config.Messages.Welcome)
}

// helpText renders the help template with the active command prefix and bot name.
func helpText(deps HandlerDeps) string {
	msg := strings.ReplaceAll(deps.Config.Messages.Help, "!contest", deps.Config.Telegram.CommandPrefix)
	return withBotName(deps, msg)
}

func sendHelp(ctx context.Context, deps HandlerDeps, c Client, chatID int64) {
	reply(ctx, deps, c, chatID, helpText(deps))
}

// reply sends plain text to chatID; failures are logged.
func reply(ctx context.Context, deps HandlerDeps, c Client, chatID int64, text string) {
	if _, err := c.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send reply", "error", delivery.SanitizeError(err), "chat_id", chatID)
	}
}

func withBotName(deps HandlerDeps, msg string) string {
	if info := deps.Config.Telegram.BotInfo; info != nil && info.Username != "" {
		return strings.ReplaceAll(msg, "@botname", "@"+info.Username)
	}
	return msg
}
