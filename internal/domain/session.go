package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const titleMaxLen = 50

// SessionMetadata carries derived counters persisted with a session.
type SessionMetadata struct {
	MessageCount int `json:"messageCount"`
}

// ChatSession represents one persisted conversation thread. Sessions are
// serialized as a flat JSON list; date fields travel as RFC3339 strings and
// are rehydrated to time.Time on load.
type ChatSession struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Messages  []Message       `json:"messages"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Metadata  SessionMetadata `json:"metadata"`
}

// SessionTitle derives a session title from its first message, truncated
// to 50 runes with an ellipsis.
func SessionTitle(firstMessage string) string {
	title := strings.TrimSpace(firstMessage)
	if utf8.RuneCountInString(title) <= titleMaxLen {
		return title
	}
	runes := []rune(title)
	return string(runes[:titleMaxLen-3]) + "..."
}
