// Package notify builds the notifications the bot sends: localized times,
// contest reminders, starting-soon warnings and the static templates.
package notify

import "strings"

// Payload is one outbound notification. Exactly one of Text and Rich is set.
type Payload struct {
	Text string
	Rich *RichMessage
}

// RichMessage is a titled, multi-field notification with optional link buttons.
type RichMessage struct {
	Title       string
	Description string
	Fields      []Field
	Links       []Link
	// Actions are callback buttons rendered after the links.
	Actions []Action
}

// Field is one named block of a rich message.
type Field struct {
	Name  string
	Value string
}

// Link is a URL button.
type Link struct {
	Label string
	URL   string
}

// Action is a callback button carrying opaque data.
type Action struct {
	Label string
	Data  string
}

// IsRich reports whether the payload carries a rich message.
func (p Payload) IsRich() bool {
	return p.Rich != nil
}

// PlainText flattens the payload into text with no markup.
func (p Payload) PlainText() string {
	if p.Rich == nil {
		return p.Text
	}

	var sb strings.Builder
	sb.WriteString(p.Rich.Title)
	if p.Rich.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(p.Rich.Description)
	}
	for _, f := range p.Rich.Fields {
		sb.WriteString("\n\n")
		sb.WriteString(f.Name)
		sb.WriteString("\n")
		sb.WriteString(f.Value)
	}
	return sb.String()
}
