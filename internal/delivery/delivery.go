// Package delivery sends notifications to Telegram with a fallback cascade:
// primary chat, then a degraded copy to the backup chat, then a direct
// message to the admin, and finally only a log line.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/edgard/contestbot/internal/notify"
)

var deliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "contest_deliveries_total",
		Help: "Notification deliveries by the cascade step that succeeded",
	},
	[]string{"outcome"}, // outcome: primary|backup|admin|failed
)

// Messenger is the part of the Telegram client the service needs. *bot.Bot
// satisfies it.
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SetMessageReaction(ctx context.Context, params *bot.SetMessageReactionParams) (bool, error)
}

// ChatRef identifies a chat either by numeric ID or by @username.
type ChatRef string

// Value returns the form the Bot API expects: int64 for numeric IDs, the
// string otherwise.
func (c ChatRef) Value() any {
	if id, err := strconv.ParseInt(string(c), 10, 64); err == nil {
		return id
	}
	return string(c)
}

// IsZero reports whether no chat is set.
func (c ChatRef) IsZero() bool {
	return strings.TrimSpace(string(c)) == ""
}

// ChatID wraps a numeric chat ID.
func ChatID(id int64) ChatRef {
	return ChatRef(strconv.FormatInt(id, 10))
}

// Config holds the fallback targets and send limits.
type Config struct {
	Backup      ChatRef
	AdminUserID int64
	AckReaction string
	SendRate    float64
	SendBurst   int
}

// Service delivers payloads through the cascade.
type Service struct {
	messenger Messenger
	cfg       Config
	limiter   *rate.Limiter
	log       *slog.Logger
}

// NewService creates a delivery service. A zero SendRate disables limiting.
func NewService(m Messenger, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if cfg.SendRate > 0 {
		limit = rate.Limit(cfg.SendRate)
	}
	burst := cfg.SendBurst
	if burst < 1 {
		burst = 1
	}
	return &Service{
		messenger: m,
		cfg:       cfg,
		limiter:   rate.NewLimiter(limit, burst),
		log:       logger.With("component", "delivery"),
	}
}

// Deliver sends payload to chat, falling back as needed. It reports whether
// the notification reached the primary or backup chat. It never returns an
// error; failures of every step are logged.
func (s *Service) Deliver(ctx context.Context, chat ChatRef, payload notify.Payload) bool {
	log := s.log.With("chat", string(chat))

	msg, err := s.Send(ctx, chat, payload)
	if err == nil {
		deliveriesTotal.WithLabelValues("primary").Inc()
		log.InfoContext(ctx, "Notification delivered", "rich", payload.IsRich())
		s.acknowledge(ctx, msg)
		return true
	}
	log.WarnContext(ctx, "Primary delivery failed", "error", err)

	backupErr := errors.New("no backup chat configured")
	if !s.cfg.Backup.IsZero() && s.cfg.Backup != chat {
		degraded := notify.Payload{Text: fmt.Sprintf("⚠️ Delivery to %s failed: %v\n\n%s", chat, err, payload.PlainText())}
		if _, backupErr = s.Send(ctx, s.cfg.Backup, degraded); backupErr == nil {
			deliveriesTotal.WithLabelValues("backup").Inc()
			log.InfoContext(ctx, "Degraded notification delivered to backup chat", "backup", string(s.cfg.Backup))
			return true
		}
		log.WarnContext(ctx, "Backup delivery failed", "backup", string(s.cfg.Backup), "error", backupErr)
	}

	if s.cfg.AdminUserID != 0 {
		text := fmt.Sprintf("🚨 Contest notification could not be delivered.\nChat: %s\nError: %v\nBackup: %v", chat, err, backupErr)
		_, adminErr := s.Send(ctx, ChatID(s.cfg.AdminUserID), notify.Payload{Text: text})
		if adminErr == nil {
			deliveriesTotal.WithLabelValues("admin").Inc()
			log.InfoContext(ctx, "Admin notified about failed delivery", "admin_id", s.cfg.AdminUserID)
			return false
		}
		log.ErrorContext(ctx, "Admin notification failed", "admin_id", s.cfg.AdminUserID, "error", adminErr)
	}

	deliveriesTotal.WithLabelValues("failed").Inc()
	log.ErrorContext(ctx, "Notification dropped, all delivery targets failed", "error", err)
	return false
}

// Send makes a single rate-limited send attempt without any fallback.
func (s *Service) Send(ctx context.Context, chat ChatRef, payload notify.Payload) (*models.Message, error) {
	if chat.IsZero() {
		return nil, errors.New("empty chat reference")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	disabled := true
	params := &bot.SendMessageParams{
		ChatID:             chat.Value(),
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: &disabled},
	}
	if payload.IsRich() {
		params.Text = renderHTML(payload.Rich)
		params.ParseMode = models.ParseModeHTML
		params.ReplyMarkup = renderKeyboard(payload.Rich)
	} else {
		params.Text = clampRunes(payload.Text, maxMessageRunes)
	}

	msg, err := s.messenger.SendMessage(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("send to %s: %w", chat, SanitizeError(err))
	}
	return msg, nil
}

// acknowledge marks a delivered message with the configured reaction.
// Failures are logged only.
func (s *Service) acknowledge(ctx context.Context, msg *models.Message) {
	if msg == nil || s.cfg.AckReaction == "" {
		return
	}
	_, err := s.messenger.SetMessageReaction(ctx, &bot.SetMessageReactionParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Reaction: []models.ReactionType{{
			Type: models.ReactionTypeTypeEmoji,
			ReactionTypeEmoji: &models.ReactionTypeEmoji{
				Type:  models.ReactionTypeTypeEmoji,
				Emoji: s.cfg.AckReaction,
			},
		}},
	})
	if err != nil {
		s.log.WarnContext(ctx, "Failed to add acknowledgment reaction", "chat_id", msg.Chat.ID, "message_id", msg.ID, "error", SanitizeError(err))
	}
}
