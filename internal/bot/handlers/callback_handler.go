package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/contestbot/internal/delivery"
	"github.com/edgard/contestbot/internal/notify"
)

// NewCallbackHandler returns the handler for inline button presses carrying
// "contest:<subcommand>" data.
func NewCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	h := callbackHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) { h.Handle(ctx, b, update) }
}

type callbackHandler struct {
	deps HandlerDeps
}

func (h callbackHandler) Handle(ctx context.Context, c Client, update *models.Update) {
	log := h.deps.Logger.With("handler", "callback")

	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	sub := strings.ToLower(strings.TrimPrefix(cq.Data, notify.ActionPrefix))
	chatID := callbackChatID(cq)

	// Answer first so the client stops its loading indicator.
	_, err := c.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cq.ID,
		Text:            "On it! 🔄",
	})
	if err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", delivery.SanitizeError(err), "callback_id", cq.ID)
	}

	log.InfoContext(ctx, "Handling button interaction", "chat_id", chatID, "user_id", cq.From.ID, "subcommand", sub)
	runner{h.deps}.run(ctx, c, chatID, sub, false)
}

// callbackChatID returns the chat the pressed button lives in, falling back
// to the user's private chat when the message is unavailable.
func callbackChatID(cq *models.CallbackQuery) int64 {
	switch {
	case cq.Message.Message != nil:
		return cq.Message.Message.Chat.ID
	case cq.Message.InaccessibleMessage != nil:
		return cq.Message.InaccessibleMessage.Chat.ID
	default:
		return cq.From.ID
	}
}
