package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"github.com/edgard/contestbot/internal/bot/tasks"
	"github.com/edgard/contestbot/internal/config"
	"github.com/edgard/contestbot/internal/logger"
)

var taskRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scheduler_task_runs_total",
		Help: "Scheduled task runs by task and result",
	},
	[]string{"task", "result"}, // result: success|error|panic
)

// CheckRecorder receives the time of every scheduled run.
type CheckRecorder interface {
	MarkChecked(t time.Time)
}

// Scheduler manages scheduled tasks and one-shot jobs using gocron.
// Runs of the same task are not serialized: a task that outlives its interval
// can overlap with its next run.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	loc       *time.Location
	state     CheckRecorder

	// baseCtx is handed to every job and cancelled on Stop.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu         sync.Mutex
	running    bool
	registered []string
}

// NewScheduler creates a scheduler evaluating cron expressions in loc.
// state may be nil.
func NewScheduler(baseLogger *slog.Logger, cfg *config.SchedulerConfig, loc *time.Location, state CheckRecorder) (*Scheduler, error) {
	if baseLogger == nil {
		baseLogger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	log := baseLogger.With("component", "scheduler")

	s, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithLogger(logger.NewGocronLogger(log)),
	)
	if err != nil {
		log.Error("Failed to create gocron scheduler", "error", err)
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		logger:    log,
		cfg:       cfg,
		loc:       loc,
		state:     state,
		baseCtx:   ctx,
		cancel:    cancel,
	}, nil
}

// Register schedules every enabled, known task with a valid cron expression.
// Invalid or unknown entries are logged and skipped; the rest still register.
// It returns the number of registered tasks.
func (s *Scheduler) Register(taskMap map[string]tasks.ScheduledTaskFunc) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg == nil || len(s.cfg.Tasks) == 0 {
		s.logger.Warn("No scheduler tasks configured.")
		return 0
	}

	scheduledCount := 0
	for _, taskName := range slices.Sorted(maps.Keys(s.cfg.Tasks)) {
		taskConfig := s.cfg.Tasks[taskName]
		if !taskConfig.Enabled {
			s.logger.Info("Skipping disabled task", "task_name", taskName)
			continue
		}

		taskFunc, exists := taskMap[taskName]
		if !exists {
			s.logger.Warn("Scheduled task configured but not found in registry, skipping", "task_name", taskName)
			continue
		}

		if _, err := ParseSchedule(taskConfig.Schedule); err != nil {
			s.logger.Error("Invalid schedule expression, skipping task", "task_name", taskName, "schedule", taskConfig.Schedule, "error", err)
			continue
		}

		_, err := s.scheduler.NewJob(
			gocron.CronJob(taskConfig.Schedule, false),
			gocron.NewTask(s.runTask, s.baseCtx, taskName, taskFunc),
			gocron.WithName(taskName),
		)
		if err != nil {
			s.logger.Error("Failed to schedule task", "task_name", taskName, "schedule", taskConfig.Schedule, "error", err)
			continue
		}

		s.logger.Info("Scheduled task", "task_name", taskName, "schedule", taskConfig.Schedule, "timezone", s.loc.String())
		s.registered = append(s.registered, taskName)
		scheduledCount++
	}

	return scheduledCount
}

// Registered returns the names of the registered cron tasks.
func (s *Scheduler) Registered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.registered)
}

// runTask wraps a task with logging, metrics, the last-check record and
// panic recovery. A panicking task never takes the process down.
func (s *Scheduler) runTask(ctx context.Context, name string, fn tasks.ScheduledTaskFunc) {
	log := s.logger.With("task_name", name)
	startTime := time.Now()
	if s.state != nil {
		s.state.MarkChecked(startTime)
	}

	defer func() {
		if r := recover(); r != nil {
			taskRunsTotal.WithLabelValues(name, "panic").Inc()
			log.ErrorContext(ctx, "Scheduled task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	log.InfoContext(ctx, "Running scheduled task")
	if err := fn(ctx); err != nil {
		taskRunsTotal.WithLabelValues(name, "error").Inc()
		log.ErrorContext(ctx, "Scheduled task failed", "error", err, "duration", time.Since(startTime))
		return
	}
	taskRunsTotal.WithLabelValues(name, "success").Inc()
	log.InfoContext(ctx, "Finished scheduled task", "duration", time.Since(startTime))
}

// ArmOnce runs fn a single time at the given instant. Times already in the
// past run immediately. Armed jobs are held in memory only.
func (s *Scheduler) ArmOnce(name string, at time.Time, fn func(ctx context.Context)) error {
	start := gocron.OneTimeJobStartDateTime(at)
	if !at.After(time.Now()) {
		start = gocron.OneTimeJobStartImmediately()
	}

	wrapped := tasks.ScheduledTaskFunc(func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
	_, err := s.scheduler.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(s.runOnce, s.baseCtx, name, wrapped),
		gocron.WithName(name),
		gocron.WithLimitedRuns(1),
	)
	if err != nil {
		return fmt.Errorf("arm one-time job %q: %w", name, err)
	}
	s.logger.Debug("Armed one-time job", "job_name", name, "at", at.In(s.loc))
	return nil
}

// runOnce is runTask without the last-check record.
func (s *Scheduler) runOnce(ctx context.Context, name string, fn tasks.ScheduledTaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "One-time job panicked", "job_name", name, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	if err := fn(ctx); err != nil {
		s.logger.ErrorContext(ctx, "One-time job failed", "job_name", name, "error", err)
	}
}

// Start begins executing registered jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler is already running")
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", len(s.registered), "timezone", s.loc.String())
	return nil
}

// Stop cancels the job context and waits for running jobs to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	if !s.running {
		s.logger.Info("Scheduler is not running, nothing to stop.")
		return nil
	}

	s.logger.Debug("Stopping scheduler gracefully (waiting for jobs)...")
	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully.")
	}

	s.running = false
	return err
}

// ParseSchedule validates a standard five-field cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	if expr == "" {
		return nil, errors.New("empty schedule")
	}
	return cron.ParseStandard(expr)
}

// Preview is the next planned run of one configured task.
type Preview struct {
	Name     string
	Schedule string
	Enabled  bool
	Next     time.Time
	Err      error
}

// PreviewSchedule computes the next run after now for every configured task
// without starting anything.
func PreviewSchedule(cfg *config.SchedulerConfig, loc *time.Location, now time.Time) []Preview {
	if cfg == nil {
		return nil
	}
	out := make([]Preview, 0, len(cfg.Tasks))
	for _, name := range slices.Sorted(maps.Keys(cfg.Tasks)) {
		tc := cfg.Tasks[name]
		p := Preview{Name: name, Schedule: tc.Schedule, Enabled: tc.Enabled}
		sched, err := ParseSchedule(tc.Schedule)
		if err != nil {
			p.Err = err
		} else {
			p.Next = sched.Next(now.In(loc))
		}
		out = append(out, p)
	}
	return out
}
