package contest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type codeChefResponse struct {
	Status         *string            `json:"status"`
	FutureContests *[]codeChefContest `json:"future_contests"`
}

type codeChefContest struct {
	Code     string `json:"contest_code"`
	Name     string `json:"contest_name"`
	StartISO string `json:"contest_start_date_iso"`
	EndISO   string `json:"contest_end_date_iso"`
}

// CodeChefSource queries the CodeChef contest list REST endpoint.
type CodeChefSource struct {
	upstream
}

// NewCodeChefSource creates the platform-B adapter.
func NewCodeChefSource(cfg SourceConfig, logger *slog.Logger) *CodeChefSource {
	return &CodeChefSource{upstream: newUpstream(string(PlatformCodeChef), cfg, logger)}
}

// Platform implements Source.
func (s *CodeChefSource) Platform() Platform { return PlatformCodeChef }

// Fetch returns the future_contests listing as-is. Unlike LeetCode, contests
// that have already started are not filtered out.
func (s *CodeChefSource) Fetch(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, err := s.do(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.parse(body)
}

func (s *CodeChefSource) parse(body []byte) ([]Record, error) {
	var resp codeChefResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if resp.Status == nil {
		return nil, fmt.Errorf("%w: missing status", ErrMalformedPayload)
	}
	if *resp.Status != "success" {
		return nil, fmt.Errorf("%w: status %q", ErrMalformedPayload, *resp.Status)
	}
	if resp.FutureContests == nil {
		return []Record{}, nil
	}

	items := *resp.FutureContests
	records := make([]Record, 0, len(items))
	for _, item := range items {
		rec := Record{Title: cleanText(item.Name)}

		start, startErr := time.Parse(time.RFC3339, item.StartISO)
		if startErr == nil {
			rec.StartTime = start.Unix()
		} else {
			s.log.Warn("Unparseable contest start time", "contest_code", item.Code, "value", item.StartISO)
		}
		if end, err := time.Parse(time.RFC3339, item.EndISO); err == nil && startErr == nil {
			rec.DurationMinutes = int((end.UnixMilli() - start.UnixMilli()) / 60000)
		}
		if item.Code != "" {
			rec.URL = strings.TrimRight(s.cfg.ContestBaseURL, "/") + "/" + item.Code
		}
		records = append(records, rec)
	}

	s.log.Debug("Parsed CodeChef contests", "count", len(records))
	return records, nil
}
