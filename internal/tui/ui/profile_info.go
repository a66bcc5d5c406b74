package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// ProfileData holds profile and connection information for the header.
type ProfileData struct {
	Profile      string
	APIHost      string
	Status       string
	ContactCount int
	LeadCount    int
	Pending      int
	Uptime       time.Duration
}

// ProfileInfo displays profile metadata in the header.
type ProfileInfo struct {
	*tview.TextView
	theme *Theme
}

// NewProfileInfo creates a new profile info panel.
func NewProfileInfo(theme *Theme) *ProfileInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &ProfileInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the profile info.
func (pi *ProfileInfo) Update(data *ProfileData) {
	pi.Clear()
	if data == nil {
		return
	}

	fgColor := colorName(pi.theme.FgColor)
	counterColor := colorName(pi.theme.CounterColor)

	host := data.APIHost
	if host == "" {
		host = "-"
	}

	text := fmt.Sprintf(
		"[%s::b]Profile:[-:-:-]  [%s]%s[-]\n"+
			"[%s::b]Backend:[-:-:-]  [%s]%s[-]\n"+
			"[%s::b]Status:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]Contacts:[-:-:-] [%s]%d[-]\n"+
			"[%s::b]Leads:[-:-:-]    [%s]%d[-]\n"+
			"[%s::b]Outbox:[-:-:-]   [%s]%d[-]  [%s::b]Up:[-:-:-] [%s]%s[-]",
		fgColor, counterColor, data.Profile,
		fgColor, counterColor, host,
		fgColor, counterColor, data.Status,
		fgColor, counterColor, data.ContactCount,
		fgColor, counterColor, data.LeadCount,
		fgColor, counterColor, data.Pending,
		fgColor, counterColor, formatDuration(data.Uptime),
	)

	_, _ = fmt.Fprint(pi, text)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
