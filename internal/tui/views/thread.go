package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/payload"
	"github.com/abarbosa/atendo/internal/tui/ui"
)

// Thread displays the message history of one chat lead plus a composer.
// Messages whose text is a structured meeting payload render as cards.
type Thread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	composer *tview.InputField
	leadName string
	onSend   func(text string)
}

// NewThread creates a new message thread view.
func NewThread(theme *ui.Theme) *Thread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	t := &Thread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && t.onSend != nil {
			text := composer.GetText()
			if text != "" {
				t.onSend(text)
				composer.SetText("")
			}
		}
	})

	return t
}

// Name implements Component.
func (t *Thread) Name() string {
	if t.leadName != "" {
		return t.leadName
	}
	return "Thread"
}

// Init implements Component.
func (t *Thread) Init() {}

// Start implements Component.
func (t *Thread) Start() {}

// Stop implements Component.
func (t *Thread) Stop() {}

// Hints implements Component.
func (t *Thread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "Enter", Description: "Send (in composer)"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetLeadName updates the thread title.
func (t *Thread) SetLeadName(name string) {
	t.leadName = name
	t.messages.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(name))))
}

// SetOnSend sets the callback when a message is composed.
func (t *Thread) SetOnSend(fn func(text string)) {
	t.onSend = fn
}

// Update renders the thread. Messages arrive newest first; the view shows
// oldest first. failures maps message ID to a delivery failure reason.
func (t *Thread) Update(msgs []crm.Message, failures map[string]string) {
	t.messages.Clear()

	agentColor := colorFor(t.theme.AgentMsgColor)
	customerColor := colorFor(t.theme.CustomerMsgColor)
	cardColor := colorFor(t.theme.MeetingCardColor)
	failColor := colorFor(t.theme.FailedColor)

	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		sender, color := "Customer", customerColor
		if m.Sender == "agent" {
			sender, color = "You", agentColor
		}
		ts := formatTimestamp(m.Timestamp)

		_, _ = fmt.Fprintf(t.messages, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]\n", color, sender, ts)

		if meeting, ok := payload.Detect(m.Text); ok {
			_, _ = fmt.Fprintf(t.messages, "[%s]┌ %s ┐[-]\n", cardColor, tview.Escape(meeting.Summary()))
		} else {
			_, _ = fmt.Fprintf(t.messages, "%s\n", tview.Escape(sanitizeForTerminal(m.Text)))
		}

		switch m.DeliveryStatus {
		case "failed":
			reason := failures[m.ID]
			if reason == "" {
				reason = "delivery failed"
			}
			_, _ = fmt.Fprintf(t.messages, "[%s]✗ %s[-]\n", failColor, tview.Escape(reason))
		case "sending":
			_, _ = fmt.Fprint(t.messages, "[::d]… sending[-:-:-]\n")
		}
		_, _ = fmt.Fprint(t.messages, "\n")
	}

	t.messages.ScrollToEnd()
}

// Messages returns the text view for focus management.
func (t *Thread) Messages() *tview.TextView {
	return t.messages
}

// Composer returns the input field for focus management.
func (t *Thread) Composer() *tview.InputField {
	return t.composer
}
