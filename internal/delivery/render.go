package delivery

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/contestbot/internal/notify"
)

// maxMessageRunes is Telegram's limit for a single text message.
const maxMessageRunes = 4096

// renderHTML turns a rich message into Telegram HTML. Fields that would push
// the message past the limit are dropped and counted in a trailer line.
func renderHTML(msg *notify.RichMessage) string {
	var sb strings.Builder
	sb.WriteString("<b>")
	sb.WriteString(html.EscapeString(msg.Title))
	sb.WriteString("</b>")
	if msg.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(html.EscapeString(msg.Description))
	}

	for i, f := range msg.Fields {
		block := "\n\n<b>" + html.EscapeString(f.Name) + "</b>\n" + html.EscapeString(f.Value)
		trailer := fmt.Sprintf("\n\n…and %d more", len(msg.Fields)-i)
		if utf8.RuneCountInString(sb.String())+utf8.RuneCountInString(block)+utf8.RuneCountInString(trailer) > maxMessageRunes {
			sb.WriteString(trailer)
			break
		}
		sb.WriteString(block)
	}
	return sb.String()
}

// renderKeyboard lays out one link button per row followed by a single row of
// callback actions. It returns nil when there is nothing to show.
func renderKeyboard(msg *notify.RichMessage) models.ReplyMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(msg.Links)+1)
	for _, l := range msg.Links {
		rows = append(rows, []models.InlineKeyboardButton{{Text: clampRunes(l.Label, 64), URL: l.URL}})
	}
	if len(msg.Actions) > 0 {
		row := make([]models.InlineKeyboardButton, 0, len(msg.Actions))
		for _, a := range msg.Actions {
			row = append(row, models.InlineKeyboardButton{Text: a.Label, CallbackData: a.Data})
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func clampRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
