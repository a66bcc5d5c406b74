// Package payload detects chat messages whose text is actually a
// JSON-encoded structured event (a meeting confirmation) rather than
// literal content, so the thread view can render a card instead.
package payload

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Meeting is the structured meeting-scheduling payload some platform bots
// embed in plain message text.
type Meeting struct {
	Action      string `json:"action"`
	Title       string `json:"title"`
	MeetingTime string `json:"meeting_time"`
	Duration    string `json:"duration"`
	Location    string `json:"location"`
}

// Detect reports whether text is a structured meeting payload. It never
// returns an error: malformed JSON and unrecognized objects are expected
// and fall back to plain-text rendering at the caller.
func Detect(text string) (*Meeting, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return nil, false
	}

	// Probe the raw keys first: a Meeting decode of {"foo":"bar"} would
	// succeed with zero values and misclassify plain JSON text.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, false
	}
	if _, ok := raw["action"]; !ok {
		if _, ok := raw["meeting_time"]; !ok {
			if _, ok := raw["title"]; !ok {
				return nil, false
			}
		}
	}

	var m Meeting
	if err := json.Unmarshal([]byte(trimmed), &m); err != nil {
		return nil, false
	}
	return &m, true
}

// Summary formats the one-line card text used by the thread view.
func (m *Meeting) Summary() string {
	title := m.Title
	if title == "" {
		title = "Meeting"
	}
	when := m.MeetingTime
	if t, err := time.Parse(time.RFC3339, m.MeetingTime); err == nil {
		when = t.Local().Format("Mon 02 Jan 15:04")
	}
	parts := []string{title}
	if when != "" {
		parts = append(parts, when)
	}
	if m.Duration != "" {
		parts = append(parts, m.Duration)
	}
	if m.Location != "" {
		parts = append(parts, m.Location)
	}
	out := strings.Join(parts, " · ")
	if m.Action != "" {
		out = fmt.Sprintf("[%s] %s", strings.ToUpper(m.Action), out)
	}
	return out
}
