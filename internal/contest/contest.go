// Package contest defines the normalized contest record and the upstream
// adapters that produce it.
package contest

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedPayload means the upstream answered but not in the documented shape.
	ErrMalformedPayload = errors.New("malformed upstream payload")
	// ErrUpstream covers transport failures and non-2xx responses.
	ErrUpstream = errors.New("upstream request failed")
)

// Platform identifies a contest source.
type Platform string

const (
	PlatformLeetCode Platform = "leetcode"
	PlatformCodeChef Platform = "codechef"
)

// Platforms lists every supported platform in reminder order.
var Platforms = []Platform{PlatformLeetCode, PlatformCodeChef}

// Label returns the display name of the platform.
func (p Platform) Label() string {
	switch p {
	case PlatformLeetCode:
		return "LeetCode"
	case PlatformCodeChef:
		return "CodeChef"
	default:
		return string(p)
	}
}

// ParsePlatform accepts a platform name in any case.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformLeetCode:
		return PlatformLeetCode, nil
	case PlatformCodeChef:
		return PlatformCodeChef, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// Record is one upcoming contest. StartTime is in epoch seconds and URL and
// Description are empty when the source does not provide them. Platform is set
// by the Fetcher, not by the adapter.
type Record struct {
	Title           string
	StartTime       int64
	DurationMinutes int
	URL             string
	Description     string
	Platform        Platform
}

// Key identifies a contest across fetches.
func (r Record) Key() string {
	return fmt.Sprintf("%s|%s|%d", r.Platform, r.Title, r.StartTime)
}

// Source fetches raw listings from one upstream and normalizes them.
type Source interface {
	Platform() Platform
	Fetch(ctx context.Context) ([]Record, error)
}
