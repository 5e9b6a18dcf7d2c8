// Package cli implements the contestbot command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgard/contestbot/internal/bot"
	"github.com/edgard/contestbot/internal/config"
	"github.com/edgard/contestbot/internal/contest"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

const targetAll = "all"

// NewRootCmd creates the root command. Running it without a subcommand
// starts the bot.
func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "contestbot",
		Short: "Post LeetCode and CodeChef contest reminders to Telegram",
		Long: `contestbot polls LeetCode and CodeChef for upcoming contests and posts
reminders to a Telegram channel on a fixed schedule. Configuration comes from
config.yaml and BOT_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "./config.yaml", "Path to configuration file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the bot, scheduler and health server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:       "remind <leetcode|codechef|all>",
			Short:     "Run one reminder cycle against the configured channel and exit",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{string(contest.PlatformLeetCode), string(contest.PlatformCodeChef), targetAll},
			RunE: func(cmd *cobra.Command, args []string) error {
				return runRemind(cmd.Context(), configPath, args[0])
			},
		},
		&cobra.Command{
			Use:   "schedule",
			Short: "Validate the configured schedule and print the next run of each task",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runSchedule(cmd.OutOrStdout(), configPath, time.Now())
			},
		},
	)

	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitError
		}
	}
	return ExitSuccess
}

func runServe(ctx context.Context, configPath string) error {
	cfg, log, closer, err := setup(configPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := serve(ctx, cfg, log); err != nil {
		log.Error("Bot stopped due to error", "error", err)
		return err
	}
	log.Info("Bot stopped gracefully.")
	return nil
}

func runRemind(ctx context.Context, configPath, target string) error {
	target = strings.ToLower(strings.TrimSpace(target))
	if target != targetAll {
		if _, err := contest.ParsePlatform(target); err != nil {
			return err
		}
	}

	cfg, log, closer, err := setup(configPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	return remindOnce(ctx, cfg, log, target)
}

func runSchedule(out io.Writer, configPath string, now time.Time) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	loc := cfg.Location()
	previews := bot.PreviewSchedule(&cfg.Scheduler, loc, now)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "TASK\tSCHEDULE\tENABLED\tNEXT RUN (%s)\n", loc)
	invalid := 0
	for _, p := range previews {
		next := p.Next.Format(time.RFC1123)
		if p.Err != nil {
			next = "invalid: " + p.Err.Error()
			invalid++
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", p.Name, p.Schedule, p.Enabled, next)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if invalid > 0 {
		return fmt.Errorf("%d task(s) have invalid schedules and will be skipped", invalid)
	}
	return nil
}
