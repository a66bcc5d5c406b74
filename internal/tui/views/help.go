package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/abarbosa/atendo/internal/tui/ui"
)

// HelpView displays the key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render(theme)
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Init implements Component.
func (hv *HelpView) Init() {}

// Start implements Component.
func (hv *HelpView) Start() {}

// Stop implements Component.
func (hv *HelpView) Stop() {}

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (hv *HelpView) render(theme *ui.Theme) {
	kc := colorFor(theme.MenuKeyColor)

	help := fmt.Sprintf(`
  [::b]Global Keys[-:-:-]

  [%s]:[-:-:-]    Command mode        [%s]Esc[-:-:-]   Cancel / Go back
  [%s]/[-:-:-]    Search (debounced)  [%s]?[-:-:-]     Help
  [%s]q[-:-:-]    Quit / Back         [%s]Ctrl-C[-:-:-] Quit immediately

  [::b]Contacts[-:-:-]

  [%s]Enter[-:-:-]  Edit / details     [%s]f[-:-:-]     Filter menu
  [%s]c[-:-:-]      Queue call         [%s]w[-:-:-]     Queue WhatsApp
  [%s]m[-:-:-]      Queue email        [%s]Ctrl-D[-:-:-] Delete contact
  [%s]r[-:-:-]      Retry failed load  [%s]j/k[-:-:-]   Move (loads more near the end)

  [::b]Chats / Thread[-:-:-]

  [%s]Enter[-:-:-]  Open thread        [%s]i[-:-:-]     Focus composer
  [%s]p[-:-:-]      Platform filter    [%s]Enter[-:-:-] Send (in composer)

  [::b]Commands (: mode)[-:-:-]

  [%s]:contacts[-:-:-]           Contact table
  [%s]:pipeline[-:-:-]           Kanban pipeline
  [%s]:chats[-:-:-]              Chat-lead list
  [%s]:integrations[-:-:-]       WhatsApp pairing / campaigns
  [%s]:campaign <name>[-:-:-]    Start campaign over visible contacts
  [%s]:help[-:-:-] / [%s]:h[-:-:-]       Show this help
  [%s]:quit[-:-:-] / [%s]:q[-:-:-]       Quit application
`,
		kc, kc, kc, kc, kc, kc,
		kc, kc, kc, kc, kc, kc, kc, kc,
		kc, kc, kc, kc,
		kc, kc, kc, kc, kc, kc, kc, kc, kc,
	)

	_, _ = fmt.Fprint(hv, help)
}
