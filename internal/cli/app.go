package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/contestbot/internal/bot"
	"github.com/edgard/contestbot/internal/bot/handlers"
	"github.com/edgard/contestbot/internal/bot/tasks"
	"github.com/edgard/contestbot/internal/config"
	"github.com/edgard/contestbot/internal/contest"
	"github.com/edgard/contestbot/internal/delivery"
	"github.com/edgard/contestbot/internal/health"
	"github.com/edgard/contestbot/internal/logger"
	"github.com/edgard/contestbot/internal/notify"
	"github.com/edgard/contestbot/internal/reminder"
	"github.com/edgard/contestbot/internal/resilience"
	"github.com/edgard/contestbot/internal/telegram"
)

// setup loads configuration and builds the process logger. Nothing touches
// the network before both succeed.
func setup(configPath string) (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		return nil, nil, nil, err
	}

	log, closer, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON, cfg.Logger.File)
	if err != nil {
		slog.Error("Failed to initialize logger", "file", cfg.Logger.File, "error", err)
		return nil, nil, nil, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON, "file", cfg.Logger.File)

	return cfg, log, closer, nil
}

// newReminderService wires sources, fetchers, composer and delivery into a
// reminder service. armer may be nil for one-shot runs.
func newReminderService(
	cfg *config.Config,
	messenger delivery.Messenger,
	armer reminder.Armer,
	state *reminder.ScanState,
	log *slog.Logger,
) *reminder.Service {
	policy := resilience.RetryPolicy{MaxAttempts: cfg.Retry.MaxAttempts, Delay: cfg.Retry.Delay}

	leetcode := contest.NewLeetCodeSource(contest.SourceConfig{
		Endpoint:       cfg.Sources.LeetCodeURL,
		ContestBaseURL: cfg.Sources.LeetCodeContestBase,
		Timeout:        cfg.Sources.Timeout,
	}, log)
	codechef := contest.NewCodeChefSource(contest.SourceConfig{
		Endpoint:       cfg.Sources.CodeChefURL,
		ContestBaseURL: cfg.Sources.CodeChefContestBase,
		Timeout:        cfg.Sources.Timeout,
	}, log)

	fetchers := []reminder.ContestFetcher{
		contest.NewFetcher(leetcode, policy, log),
		contest.NewFetcher(codechef, policy, log),
	}

	composer := notify.NewComposer(notify.NewTimeFormatterIn(cfg.Location()), log)
	deliverer := delivery.NewService(messenger, delivery.Config{
		Backup:      delivery.ChatRef(cfg.Telegram.BackupChannelID),
		AdminUserID: cfg.Telegram.AdminUserID,
		AckReaction: cfg.Telegram.AckReaction,
		SendRate:    cfg.Telegram.SendRate,
		SendBurst:   cfg.Telegram.SendBurst,
	}, log)

	return reminder.NewService(fetchers, composer, deliverer, armer, state, reminder.Config{
		DefaultChat:      delivery.ChatRef(cfg.Telegram.ChannelID),
		Lookahead:        cfg.Warnings.Lookahead,
		WarnBefore:       cfg.Warnings.WarnBefore,
		Motivations:      cfg.Messages.Motivations,
		PracticeReminder: cfg.Messages.PracticeReminder,
	}, log)
}

// serve runs the long-lived bot until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	startedAt := time.Now()
	state := reminder.NewScanState()

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, cfg.Location(), state)
	if err != nil {
		return err
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Recover(log), logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewDefaultHandler(handlers.HandlerDeps{Logger: log})),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		return err
	}

	// Retrieve bot info and store it in the config for runtime use
	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		err = delivery.SanitizeError(err)
		log.Error("Failed to get bot info", "error", err)
		return fmt.Errorf("get bot info: %w", err)
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	svc := newReminderService(cfg, tg, sched, state, log)

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Reminders: svc,
		Status:    state,
		StartedAt: startedAt,
	}
	if _, err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		return fmt.Errorf("register handlers: %w", err)
	}

	tDeps := tasks.TaskDeps{
		Logger:    log,
		Reminders: svc,
		Config:    cfg,
	}
	sched.Register(tasks.RegisterAllTasks(tDeps))

	healthSrv := health.NewServer(cfg.HTTP.Addr, cfg.HTTP.ShutdownTimeout, state, log)
	app := bot.NewBot(log, tg, sched, healthSrv)

	log.Info("Starting bot...")
	return app.Run(ctx)
}

// remindOnce runs a single reminder cycle against the configured channel.
func remindOnce(ctx context.Context, cfg *config.Config, log *slog.Logger, target string) error {
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log)
	if err != nil {
		return err
	}

	svc := newReminderService(cfg, tg, nil, reminder.NewScanState(), log)
	chat := svc.DefaultChat()

	var delivered bool
	if target == targetAll {
		delivered = svc.RemindAll(ctx, chat)
	} else {
		platform, err := contest.ParsePlatform(target)
		if err != nil {
			return err
		}
		delivered = svc.RemindPlatform(ctx, chat, platform)
	}

	if !delivered {
		return fmt.Errorf("reminder for %s was not delivered", target)
	}
	return nil
}
