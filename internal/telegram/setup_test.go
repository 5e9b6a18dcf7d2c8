package telegram

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/contestbot/internal/bot/handlers"
)

type registration struct {
	handlerType bot.HandlerType
	pattern     string
	matchType   bot.MatchType
	handler     bot.HandlerFunc
}

type fakeRegistrar struct {
	registered []registration
}

func (f *fakeRegistrar) RegisterHandler(ht bot.HandlerType, pattern string, mt bot.MatchType, h bot.HandlerFunc, _ ...bot.Middleware) string {
	f.registered = append(f.registered, registration{handlerType: ht, pattern: pattern, matchType: mt, handler: h})
	return pattern
}

func TestRegisterHandlers(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(name string) bot.Middleware {
		return func(next bot.HandlerFunc) bot.HandlerFunc {
			return func(ctx context.Context, b *bot.Bot, u *models.Update) {
				order = append(order, name)
				next(ctx, b, u)
			}
		}
	}
	handler := func(context.Context, *bot.Bot, *models.Update) { order = append(order, "handler") }

	reg := &fakeRegistrar{}
	n, err := RegisterHandlers(reg, slog.New(slog.NewTextHandler(io.Discard, nil)), map[string]handlers.RegisteredHandler{
		"a": {HandlerType: bot.HandlerTypeMessageText, Pattern: "status", MatchType: bot.MatchTypeCommandStartOnly, Handler: handler, Middleware: []bot.Middleware{tag("outer"), tag("inner")}},
		"b": {HandlerType: bot.HandlerTypeMessageText, Pattern: "", Handler: handler},
		"c": {HandlerType: bot.HandlerTypeCallbackQueryData, Pattern: "contest:", MatchType: bot.MatchTypePrefix},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, reg.registered, 1)
	assert.Equal(t, "status", reg.registered[0].pattern)

	reg.registered[0].handler(context.Background(), nil, &models.Update{})
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestRegisterHandlers_Empty(t *testing.T) {
	t.Parallel()

	n, err := RegisterHandlers(&fakeRegistrar{}, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = RegisterHandlers(nil, nil, nil)
	assert.Error(t, err)
}

func TestNewTelegramBot_EmptyToken(t *testing.T) {
	t.Parallel()

	_, err := NewTelegramBot("", nil)
	assert.Error(t, err)
	assert.Equal(t, "***", tokenPrefix("short"))
	assert.Equal(t, "12345678...", tokenPrefix("12345678:ABCDEF"))
}
