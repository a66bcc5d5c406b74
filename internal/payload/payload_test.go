package payload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectMeeting(t *testing.T) {
	m, ok := Detect(`{"title":"Demo","meeting_time":"2024-06-25T10:00:00Z"}`)
	require.True(t, ok)
	assert.Equal(t, "Demo", m.Title)
	assert.Equal(t, "2024-06-25T10:00:00Z", m.MeetingTime)
}

func TestDetectRejectsUnrecognizedJSON(t *testing.T) {
	_, ok := Detect(`{"foo":"bar"}`)
	assert.False(t, ok, "JSON without signal fields renders as plain text")
}

func TestDetectNeverThrowsOnGarbage(t *testing.T) {
	inputs := []string{
		"",
		"hello there",
		"{broken json",
		"{]}",
		"   {  ",
		"}{",
		`{"title":}`,
		strings.Repeat("{", 1000),
		"null",
		"[1,2,3]",
	}
	for _, in := range inputs {
		m, ok := Detect(in)
		assert.False(t, ok, "input %q", in)
		assert.Nil(t, m)
	}
}

func TestDetectWithSurroundingWhitespace(t *testing.T) {
	_, ok := Detect("  \n {\"action\":\"meeting_confirmed\",\"title\":\"Kickoff\"} \t ")
	assert.True(t, ok)
}

func TestSummary(t *testing.T) {
	m := &Meeting{Action: "meeting_confirmed", Title: "Demo", MeetingTime: "2024-06-25T10:00:00Z", Duration: "30m"}
	s := m.Summary()
	assert.Contains(t, s, "MEETING_CONFIRMED")
	assert.Contains(t, s, "Demo")
	assert.Contains(t, s, "30m")
}

func TestSummaryDefaultsTitle(t *testing.T) {
	m := &Meeting{Action: "meeting_confirmed"}
	assert.Contains(t, m.Summary(), "Meeting")
}
