package delivery

import "regexp"

// botTokenPattern matches the "bot<id>:<secret>" path segment of Bot API URLs.
var botTokenPattern = regexp.MustCompile(`bot\d+:[A-Za-z0-9_-]+`)

// redactedError hides the bot token in the message of the error it wraps.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// SanitizeError strips the bot token from err so it can be logged or posted to
// a chat. Transport failures surface as *url.Error whose text carries the
// full request URL, token included.
func SanitizeError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	clean := botTokenPattern.ReplaceAllString(msg, "bot<redacted>")
	if clean == msg {
		return err
	}
	return &redactedError{msg: clean, err: err}
}
