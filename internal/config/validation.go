package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// validateSemantics checks rules that need more than a struct tag:
//   - the scheduler timezone must be loadable
//   - chat references must be numeric IDs or @usernames
func (c *Config) validateSemantics() error {
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid scheduler timezone %q: %w", c.Scheduler.Timezone, err)
	}

	if !isChatRef(c.Telegram.ChannelID) {
		return fmt.Errorf("telegram.channel_id %q is neither a numeric chat ID nor an @username", c.Telegram.ChannelID)
	}
	if c.Telegram.BackupChannelID != "" && !isChatRef(c.Telegram.BackupChannelID) {
		return fmt.Errorf("telegram.backup_channel_id %q is neither a numeric chat ID nor an @username", c.Telegram.BackupChannelID)
	}

	return nil
}

// Location returns the scheduler timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsAdmin reports whether userID is the configured admin. An unset admin matches nobody.
func (c *Config) IsAdmin(userID int64) bool {
	return c.Telegram.AdminUserID != 0 && userID == c.Telegram.AdminUserID
}

func isChatRef(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "@") {
		return len(s) > 1
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}
