package contest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/edgard/contestbot/internal/resilience"
)

const (
	maxResponseBytes = 2 << 20
	userAgent        = "contestbot/1.0 (+https://github.com/edgard/contestbot)"
)

// SourceConfig is shared by both adapters.
type SourceConfig struct {
	// Endpoint is the listing API URL.
	Endpoint string
	// ContestBaseURL is joined with a contest slug or code to build its link.
	ContestBaseURL string
	Timeout        time.Duration
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
	// Now overrides the clock used for filtering.
	Now func() time.Time
}

// upstream bundles what every adapter needs to talk HTTP behind a breaker.
type upstream struct {
	cfg     SourceConfig
	client  *http.Client
	breaker *resilience.CircuitBreaker
	log     *slog.Logger
}

func newUpstream(name string, cfg SourceConfig, logger *slog.Logger) upstream {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return upstream{
		cfg:     cfg,
		client:  client,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: name}, logger),
		log:     logger.With("component", "source", "source", name),
	}
}

// do executes req through the breaker and returns the body of a 2xx response.
func (u upstream) do(ctx context.Context, req *http.Request) ([]byte, error) {
	var body []byte
	err := u.breaker.Execute(ctx, func(ctx context.Context) error {
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := u.client.Do(req.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return fmt.Errorf("%w: read body: %v", ErrUpstream, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
