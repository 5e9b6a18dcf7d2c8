// Package reminder runs reminder cycles (fetch, compose, deliver) and arms
// the deferred "starting soon" warnings.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/contestbot/internal/contest"
	"github.com/edgard/contestbot/internal/delivery"
	"github.com/edgard/contestbot/internal/notify"
)

// ContestFetcher returns upcoming contests for one platform and never fails.
type ContestFetcher interface {
	Platform() contest.Platform
	FetchContests(ctx context.Context) []contest.Record
}

// Deliverer sends a payload with fallback and reports success.
type Deliverer interface {
	Deliver(ctx context.Context, chat delivery.ChatRef, payload notify.Payload) bool
}

// Armer runs fn once at the given time.
type Armer interface {
	ArmOnce(name string, at time.Time, fn func(ctx context.Context)) error
}

// Config parameterises the service.
type Config struct {
	DefaultChat      delivery.ChatRef
	Lookahead        time.Duration
	WarnBefore       time.Duration
	Motivations      []string
	PracticeReminder string
}

// Service runs reminder cycles. Concurrent calls are not coordinated: a
// manual trigger overlapping a scheduled run sends both notifications.
type Service struct {
	fetchers  map[contest.Platform]ContestFetcher
	composer  *notify.Composer
	deliverer Deliverer
	armer     Armer
	state     *ScanState
	cfg       Config
	now       func() time.Time
	log       *slog.Logger

	mu    sync.Mutex
	armed map[string]struct{}

	nextQuote atomic.Uint64
}

// NewService wires a Service. armer may be nil, in which case the
// starting-soon scan only logs what it would arm.
func NewService(
	fetchers []ContestFetcher,
	composer *notify.Composer,
	deliverer Deliverer,
	armer Armer,
	state *ScanState,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if state == nil {
		state = NewScanState()
	}

	byPlatform := make(map[contest.Platform]ContestFetcher, len(fetchers))
	for _, f := range fetchers {
		byPlatform[f.Platform()] = f
	}

	s := &Service{
		fetchers:  byPlatform,
		composer:  composer,
		deliverer: deliverer,
		armer:     armer,
		state:     state,
		cfg:       cfg,
		now:       time.Now,
		log:       logger.With("component", "reminder"),
		armed:     make(map[string]struct{}),
	}
	if n := len(cfg.Motivations); n > 0 {
		s.nextQuote.Store(uint64(rand.IntN(n)))
	}
	return s
}

// DefaultChat returns the chat scheduled runs deliver to.
func (s *Service) DefaultChat() delivery.ChatRef {
	return s.cfg.DefaultChat
}

// State returns the shared scan state.
func (s *Service) State() *ScanState {
	return s.state
}

// RemindPlatform runs one reminder cycle for platform and delivers the result
// to chat. An empty result still produces the "none found" message.
func (s *Service) RemindPlatform(ctx context.Context, chat delivery.ChatRef, platform contest.Platform) bool {
	log := s.log.With("cycle_id", uuid.NewString(), "platform", string(platform), "chat", string(chat))

	f, ok := s.fetchers[platform]
	if !ok {
		log.ErrorContext(ctx, "No fetcher registered for platform")
		return false
	}

	log.InfoContext(ctx, "Starting reminder cycle")
	records := f.FetchContests(ctx)
	payload := s.composer.Compose(platform, records)
	delivered := s.deliverer.Deliver(ctx, chat, payload)

	log.InfoContext(ctx, "Finished reminder cycle", "contests", len(records), "delivered", delivered)
	return delivered
}

// RemindAll runs the cycle for every platform in order. Each platform gets
// its own notification; the result is true only if all were delivered.
func (s *Service) RemindAll(ctx context.Context, chat delivery.ChatRef) bool {
	all := true
	for _, p := range contest.Platforms {
		if !s.RemindPlatform(ctx, chat, p) {
			all = false
		}
	}
	return all
}

// ScanStartingSoon fetches every platform and arms one deferred warning for
// each contest starting within (now+WarnBefore, now+Lookahead]. It returns
// the number of warnings newly armed. Armed warnings cannot be withdrawn and
// do not survive a restart.
func (s *Service) ScanStartingSoon(ctx context.Context) int {
	now := s.now()
	from := now.Add(s.cfg.WarnBefore)
	until := now.Add(s.cfg.Lookahead)

	armed := 0
	for _, p := range contest.Platforms {
		f, ok := s.fetchers[p]
		if !ok {
			continue
		}
		for _, rec := range f.FetchContests(ctx) {
			if rec.Title == "" || rec.StartTime <= 0 {
				continue
			}
			start := time.Unix(rec.StartTime, 0)
			if !start.After(from) || start.After(until) {
				continue
			}
			if rec.Platform == "" {
				rec.Platform = p
			}
			if s.arm(ctx, rec, start) {
				armed++
			}
		}
	}

	s.log.InfoContext(ctx, "Starting-soon scan finished", "armed", armed, "pending", s.state.PendingWarnings())
	return armed
}

func (s *Service) arm(ctx context.Context, rec contest.Record, start time.Time) bool {
	key := rec.Key()
	log := s.log.With("contest", rec.Title, "platform", string(rec.Platform), "start", start)

	if s.armer == nil {
		log.WarnContext(ctx, "No armer configured, skipping starting-soon warning")
		return false
	}

	s.mu.Lock()
	if _, dup := s.armed[key]; dup {
		s.mu.Unlock()
		log.DebugContext(ctx, "Warning already armed")
		return false
	}
	s.armed[key] = struct{}{}
	s.state.setPending(len(s.armed))
	s.mu.Unlock()

	fireAt := start.Add(-s.cfg.WarnBefore)
	err := s.armer.ArmOnce("warning:"+key, fireAt, func(ctx context.Context) {
		s.fireWarning(ctx, rec, start, key)
	})
	if err != nil {
		s.disarm(key)
		log.ErrorContext(ctx, "Failed to arm starting-soon warning", "error", err)
		return false
	}

	log.InfoContext(ctx, "Armed starting-soon warning", "fire_at", fireAt)
	return true
}

func (s *Service) fireWarning(ctx context.Context, rec contest.Record, start time.Time, key string) {
	defer s.disarm(key)

	minutes := int(math.Round(start.Sub(s.now()).Minutes()))
	if minutes < 0 {
		minutes = 0
	}
	payload := s.composer.ComposeStartingSoon(rec, minutes)
	delivered := s.deliverer.Deliver(ctx, s.cfg.DefaultChat, payload)
	s.log.InfoContext(ctx, "Starting-soon warning fired", "contest", rec.Title, "minutes_left", minutes, "delivered", delivered)
}

func (s *Service) disarm(key string) {
	s.mu.Lock()
	delete(s.armed, key)
	s.state.setPending(len(s.armed))
	s.mu.Unlock()
}

// ErrNoTemplates is returned when a template message has nothing to send.
var ErrNoTemplates = errors.New("no message templates configured")

// SendMotivation delivers the next motivational quote to the default chat.
func (s *Service) SendMotivation(ctx context.Context) error {
	quotes := s.cfg.Motivations
	if len(quotes) == 0 {
		return fmt.Errorf("motivation: %w", ErrNoTemplates)
	}
	i := (s.nextQuote.Add(1) - 1) % uint64(len(quotes))
	if !s.deliverer.Deliver(ctx, s.cfg.DefaultChat, s.composer.ComposeMotivation(quotes[i])) {
		return errors.New("motivation: delivery failed")
	}
	return nil
}

// SendPracticeReminder delivers the practice reminder template.
func (s *Service) SendPracticeReminder(ctx context.Context) error {
	if s.cfg.PracticeReminder == "" {
		return fmt.Errorf("practice reminder: %w", ErrNoTemplates)
	}
	if !s.deliverer.Deliver(ctx, s.cfg.DefaultChat, s.composer.ComposePracticeReminder(s.cfg.PracticeReminder)) {
		return errors.New("practice reminder: delivery failed")
	}
	return nil
}
