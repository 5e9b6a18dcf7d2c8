package contest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/edgard/contestbot/internal/resilience"
)

var (
	fetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_fetch_attempts_total",
			Help: "Total number of upstream contest fetch attempts",
		},
		[]string{"platform", "result"}, // result: success|malformed|upstream|circuit_open|error
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contest_fetch_duration_seconds",
			Help:    "Duration of a full fetch including retries",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60},
		},
		[]string{"platform"},
	)
)

// Fetcher wraps a Source with the retry policy. It never returns an error:
// after retries are exhausted the result is an empty slice.
type Fetcher struct {
	source Source
	policy resilience.RetryPolicy
	log    *slog.Logger
}

// NewFetcher creates a Fetcher for src.
func NewFetcher(src Source, policy resilience.RetryPolicy, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		source: src,
		policy: policy,
		log:    logger.With("component", "fetcher", "platform", string(src.Platform())),
	}
}

// Platform returns the platform of the wrapped source.
func (f *Fetcher) Platform() Platform {
	return f.source.Platform()
}

// FetchContests returns the upcoming contests with Platform attached.
func (f *Fetcher) FetchContests(ctx context.Context) []Record {
	platform := f.source.Platform()
	start := time.Now()
	defer func() {
		fetchDuration.WithLabelValues(string(platform)).Observe(time.Since(start).Seconds())
	}()

	records := resilience.WithRetry(ctx, f.log, "fetch_"+string(platform), f.policy, []Record{},
		func(ctx context.Context) ([]Record, error) {
			recs, err := f.source.Fetch(ctx)
			result := classify(err)
			fetchAttemptsTotal.WithLabelValues(string(platform), result).Inc()

			switch result {
			case "success":
				return recs, nil
			case "malformed":
				f.log.WarnContext(ctx, "Upstream returned malformed payload", "error", err)
			default:
				f.log.WarnContext(ctx, "Upstream fetch failed", "kind", result, "error", err)
			}
			return nil, err
		})

	for i := range records {
		records[i].Platform = platform
	}

	f.log.InfoContext(ctx, "Fetched contests", "count", len(records), "duration", time.Since(start))
	return records
}

func classify(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	default:
		return "error"
	}
}
