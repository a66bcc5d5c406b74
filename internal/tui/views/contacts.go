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

// ContactTable is the main contact list view. Rows accumulate as the
// loader fetches batches; moving the selection near the end of the table
// requests the next batch.
type ContactTable struct {
	*tview.Table
	theme     *ui.Theme
	contacts  []crm.Contact
	state     loader.State
	filters   string // summary of active filters for the title
	onNearEnd func(index int)
}

// NewContactTable creates a new contact table.
func NewContactTable(theme *ui.Theme) *ContactTable {
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
	table.SetTitle(" Contacts ")
	table.SetTitleColor(theme.TitleColor)

	ct := &ContactTable{
		Table: table,
		theme: theme,
	}

	table.SetSelectionChangedFunc(func(row, col int) {
		if ct.onNearEnd != nil && row > 0 {
			ct.onNearEnd(row - 1)
		}
	})

	return ct
}

// Name implements Component.
func (ct *ContactTable) Name() string { return "Contacts" }

// Init implements Component.
func (ct *ContactTable) Init() {}

// Start implements Component.
func (ct *ContactTable) Start() {}

// Stop implements Component.
func (ct *ContactTable) Stop() {}

// Hints implements Component.
func (ct *ContactTable) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Details"},
		{Key: "c", Description: "Call"},
		{Key: "w", Description: "WhatsApp"},
		{Key: "m", Description: "Email"},
		{Key: "e", Description: "Edit"},
		{Key: "f", Description: "Filter"},
		{Key: "/", Description: "Search"},
		{Key: "r", Description: "Retry"},
		{Key: "ctrl-d", Description: "Delete"},
	}
}

// SetOnNearEnd sets the callback fired with the selected row index on every
// selection move; the caller decides whether to load more.
func (ct *ContactTable) SetOnNearEnd(fn func(index int)) {
	ct.onNearEnd = fn
}

// Update refreshes the table with the filtered contact set and loader
// progress. A fetch error is surfaced in the title while the accumulated
// rows stay visible.
func (ct *ContactTable) Update(contacts []crm.Contact, st loader.State, activeFilters map[string][]string) {
	ct.contacts = contacts
	ct.state = st

	var parts []string
	for dim, vals := range activeFilters {
		parts = append(parts, dim+"="+strings.Join(vals, "|"))
	}
	ct.filters = strings.Join(parts, " ")

	ct.render()
}

func (ct *ContactTable) render() {
	selRow, _ := ct.GetSelection()
	ct.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 2},
		{" COMPANY", 1},
		{" PHONE", 1},
		{" STAGE", 0},
		{" TAGS", 1},
		{" CITY", 0},
		{" LAST CALL", 0},
		{" ATT", 0},
	}
	for col, h := range headers {
		cell := tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(ct.theme.TableHeaderFg).
			SetBackgroundColor(ct.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp)
		ct.SetCell(0, col, cell)
	}

	for i, c := range ct.contacts {
		row := i + 1
		name := c.Name
		if name == "" {
			name = c.Phone
		}
		ct.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(name))).SetExpansion(2).SetTextColor(ct.theme.FgColor))
		ct.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(c.Company))).SetExpansion(1).SetTextColor(ct.theme.FgColor))
		ct.SetCell(row, 2, tview.NewTableCell(" "+c.Phone).SetExpansion(1).SetTextColor(ct.theme.FgColor))
		ct.SetCell(row, 3, tview.NewTableCell(" "+c.LeadStage).SetTextColor(ct.theme.StageColor))
		ct.SetCell(row, 4, tview.NewTableCell(" "+clip(strings.Join(c.Tags, ","), 24)).SetExpansion(1).SetTextColor(ct.theme.FgColor))
		ct.SetCell(row, 5, tview.NewTableCell(" "+c.City).SetTextColor(ct.theme.FgColor))
		ct.SetCell(row, 6, tview.NewTableCell(" "+c.LastCallStatus).SetTextColor(ct.theme.FgColor))
		ct.SetCell(row, 7, tview.NewTableCell(fmt.Sprintf("%3d", c.CallAttempts)).SetAlign(tview.AlignRight).SetTextColor(ct.theme.CounterColor))
	}

	ct.SetTitle(ct.title())

	if selRow > len(ct.contacts) {
		selRow = len(ct.contacts)
	}
	if selRow > 0 {
		ct.Select(selRow, 0)
	}
}

func (ct *ContactTable) title() string {
	st := ct.state
	var b strings.Builder
	fmt.Fprintf(&b, " Contacts [%d", len(ct.contacts))
	if st.Total > 0 {
		fmt.Fprintf(&b, "/%d", st.Total)
	}
	b.WriteString("]")
	switch {
	case st.InitialLoading:
		b.WriteString(" loading…")
	case st.LoadingMore:
		b.WriteString(" loading more…")
	case st.Err != nil:
		fmt.Fprintf(&b, " [%s]ERR: %s (r to retry)[-]", colorFor(ct.theme.FailedColor), clip(st.Err.Error(), 40))
	case st.HasMore:
		b.WriteString(" ↓ more")
	}
	if ct.filters != "" {
		fmt.Fprintf(&b, " filter: %s", clip(ct.filters, 48))
	}
	b.WriteString(" ")
	return b.String()
}

func colorFor(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}

// Selected returns the contact under the cursor.
func (ct *ContactTable) Selected() (crm.Contact, bool) {
	row, _ := ct.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(ct.contacts) {
		return crm.Contact{}, false
	}
	return ct.contacts[idx], true
}
