package contest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const leetCodeQuery = `query upcomingContests { topTwoContests { title titleSlug startTime duration } }`

type leetCodeRequest struct {
	Query string `json:"query"`
}

// Pointer fields distinguish "absent" from zero values.
type leetCodeResponse struct {
	Data *struct {
		TopTwoContests *[]leetCodeContest `json:"topTwoContests"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type leetCodeContest struct {
	Title     *string `json:"title"`
	TitleSlug *string `json:"titleSlug"`
	StartTime *int64  `json:"startTime"`
	Duration  *int64  `json:"duration"` // seconds
}

// LeetCodeSource queries the LeetCode GraphQL endpoint.
type LeetCodeSource struct {
	upstream
}

// NewLeetCodeSource creates the platform-A adapter.
func NewLeetCodeSource(cfg SourceConfig, logger *slog.Logger) *LeetCodeSource {
	return &LeetCodeSource{upstream: newUpstream(string(PlatformLeetCode), cfg, logger)}
}

// Platform implements Source.
func (s *LeetCodeSource) Platform() Platform { return PlatformLeetCode }

// Fetch returns contests starting strictly after now, in upstream order.
func (s *LeetCodeSource) Fetch(ctx context.Context) ([]Record, error) {
	payload, err := json.Marshal(leetCodeRequest{Query: leetCodeQuery})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://leetcode.com/contest/")

	body, err := s.do(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.parse(body)
}

func (s *LeetCodeSource) parse(body []byte) ([]Record, error) {
	var resp leetCodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if resp.Data == nil || resp.Data.TopTwoContests == nil {
		if len(resp.Errors) > 0 {
			return nil, fmt.Errorf("%w: graphql error: %s", ErrMalformedPayload, resp.Errors[0].Message)
		}
		return nil, fmt.Errorf("%w: missing data.topTwoContests", ErrMalformedPayload)
	}

	now := s.cfg.Now().Unix()
	items := *resp.Data.TopTwoContests
	records := make([]Record, 0, len(items))
	for _, item := range items {
		if item.StartTime == nil || *item.StartTime <= now {
			continue
		}

		rec := Record{StartTime: *item.StartTime}
		if item.Title != nil {
			rec.Title = cleanText(*item.Title)
		}
		if item.Duration != nil {
			rec.DurationMinutes = int(*item.Duration / 60)
		}
		if item.TitleSlug != nil && *item.TitleSlug != "" {
			rec.URL = strings.TrimRight(s.cfg.ContestBaseURL, "/") + "/" + *item.TitleSlug + "/"
		}
		records = append(records, rec)
	}

	s.log.Debug("Parsed LeetCode contests", "received", len(items), "upcoming", len(records))
	return records, nil
}
