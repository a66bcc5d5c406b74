package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/loader"
	"github.com/abarbosa/atendo/internal/tui/ui"
)

// LeadTable is the chat-lead list view.
type LeadTable struct {
	*tview.Table
	theme     *ui.Theme
	leads     []crm.ChatLead
	state     loader.State
	onNearEnd func(index int)
}

// NewLeadTable creates a new lead table.
func NewLeadTable(theme *ui.Theme) *LeadTable {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Chats ")
	table.SetTitleColor(theme.TitleColor)

	lt := &LeadTable{
		Table: table,
		theme: theme,
	}

	table.SetSelectionChangedFunc(func(row, col int) {
		if lt.onNearEnd != nil && row > 0 {
			lt.onNearEnd(row - 1)
		}
	})

	return lt
}

// SetOnNearEnd sets the callback fired with the selected row index on
// every cursor move; the loader decides whether another batch is due.
func (lt *LeadTable) SetOnNearEnd(fn func(index int)) {
	lt.onNearEnd = fn
}

// Name implements Component.
func (lt *LeadTable) Name() string { return "Chats" }

// Init implements Component.
func (lt *LeadTable) Init() {}

// Start implements Component.
func (lt *LeadTable) Start() {}

// Stop implements Component.
func (lt *LeadTable) Stop() {}

// Hints implements Component.
func (lt *LeadTable) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open thread"},
		{Key: "p", Description: "Platform filter"},
		{Key: "/", Description: "Search"},
		{Key: "r", Description: "Retry"},
	}
}

// Update refreshes the lead list.
func (lt *LeadTable) Update(leads []crm.ChatLead, st loader.State) {
	lt.leads = leads
	lt.state = st
	lt.render()
}

func (lt *LeadTable) render() {
	selRow, _ := lt.GetSelection()
	lt.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 1},
		{" PLATFORMS", 0},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
	}
	for col, h := range headers {
		cell := tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(lt.theme.TableHeaderFg).
			SetBackgroundColor(lt.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp)
		lt.SetCell(0, col, cell)
	}

	for i, lead := range lt.leads {
		row := i + 1
		name := lead.Name
		if name == "" {
			name = lead.Phone
		}
		if lead.UnreadCount > 0 {
			name = fmt.Sprintf("(%d) %s", lead.UnreadCount, name)
		}

		lt.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(name))).SetExpansion(1).SetTextColor(lt.theme.FgColor))
		lt.SetCell(row, 1, tview.NewTableCell(" "+strings.Join(lead.Platforms, ",")).SetTextColor(lt.theme.FgColor))
		lt.SetCell(row, 2, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(clip(lead.LastMessage, 48)))).SetExpansion(2).SetTextColor(lt.theme.FgColor))
		lt.SetCell(row, 3, tview.NewTableCell(formatTimestamp(lead.LastMessageAt)).SetAlign(tview.AlignRight).SetTextColor(lt.theme.FgColor))
	}

	title := fmt.Sprintf(" Chats [%d", len(lt.leads))
	if lt.state.Total > 0 {
		title += fmt.Sprintf("/%d", lt.state.Total)
	}
	title += "]"
	if lt.state.Err != nil {
		title += fmt.Sprintf(" ERR: %s (r to retry)", clip(lt.state.Err.Error(), 40))
	} else if lt.state.HasMore {
		title += " ↓ more"
	}
	lt.SetTitle(title + " ")

	if selRow > len(lt.leads) {
		selRow = len(lt.leads)
	}
	if selRow > 0 {
		lt.Select(selRow, 0)
	}
}

// Selected returns the lead under the cursor.
func (lt *LeadTable) Selected() (crm.ChatLead, bool) {
	row, _ := lt.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(lt.leads) {
		return crm.ChatLead{}, false
	}
	return lt.leads[idx], true
}
