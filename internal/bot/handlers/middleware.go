// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/contestbot/internal/delivery"
)

// AdminOnly creates a middleware that checks if the message sender is the configured admin user.
// If not, it sends a "Not Authorized" message and stops processing by returning early.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if authorized(deps, update) {
				next(ctx, bot, update)
				return
			}
			rejectUnauthorized(ctx, deps, bot, update)
		}
	}
}

// authorized reports whether the update may reach an admin-only handler.
// Updates without a sender are let through; command handlers never see them.
func authorized(deps HandlerDeps, update *models.Update) bool {
	if update.Message == nil || update.Message.From == nil {
		return true
	}
	return deps.Config.IsAdmin(update.Message.From.ID)
}

func rejectUnauthorized(ctx context.Context, deps HandlerDeps, c Client, update *models.Update) {
	chatID := update.Message.Chat.ID
	log := deps.Logger.With("middleware", "AdminOnly")
	log.WarnContext(ctx, "Unauthorized access attempt", "user_id", update.Message.From.ID, "chat_id", chatID)

	_, err := c.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   deps.Config.Messages.Unauthorized,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send unauthorized message", "error", delivery.SanitizeError(err), "chat_id", chatID)
	}
}
