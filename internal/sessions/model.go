package sessions

import "time"

// Session is one anonymous funnel session row, keyed by the caller-supplied
// session identifier and scoped to a channel.
type Session struct {
	AnonSessionID string         `json:"anonSessionId"`
	Channel       string         `json:"channel"`
	Email         string         `json:"email,omitempty"`
	Payload       map[string]any `json:"payload"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}
