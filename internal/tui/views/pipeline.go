package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/tui/ui"
)

// Pipeline renders the filtered contacts as Kanban-style stage columns.
type Pipeline struct {
	*tview.Flex
	theme   *ui.Theme
	columns []*tview.Table
	stages  []string
	byStage map[string][]crm.Contact
	focused int
}

// NewPipeline creates a new pipeline view.
func NewPipeline(theme *ui.Theme) *Pipeline {
	flex := tview.NewFlex().SetDirection(tview.FlexColumn)
	return &Pipeline{
		Flex:    flex,
		theme:   theme,
		byStage: make(map[string][]crm.Contact),
	}
}

// Name implements Component.
func (p *Pipeline) Name() string { return "Pipeline" }

// Init implements Component.
func (p *Pipeline) Init() {}

// Start implements Component.
func (p *Pipeline) Start() {}

// Stop implements Component.
func (p *Pipeline) Stop() {}

// Hints implements Component.
func (p *Pipeline) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "h/l", Description: "Column"},
		{Key: "j/k", Description: "Card"},
		{Key: "Enter", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}

// Update rebuilds the stage columns.
func (p *Pipeline) Update(stages []string, byStage map[string][]crm.Contact) {
	p.stages = stages
	p.byStage = byStage
	p.Flex.Clear()
	p.columns = p.columns[:0]

	for _, stage := range stages {
		table := tview.NewTable().
			SetSelectable(true, false).
			SetBorders(false)
		table.SetBorder(true)
		table.SetBorderColor(p.theme.BorderColor)
		table.SetBackgroundColor(p.theme.BgColor)
		table.SetSelectedStyle(tcell.StyleDefault.
			Foreground(p.theme.TableCursorFg).
			Background(p.theme.TableCursorBg))
		table.SetTitle(fmt.Sprintf(" %s (%d) ", stage, len(byStage[stage])))
		table.SetTitleColor(p.theme.StageColor)

		for i, c := range byStage[stage] {
			name := c.Name
			if name == "" {
				name = c.Phone
			}
			table.SetCell(i, 0, tview.NewTableCell(" "+clip(tview.Escape(sanitizeForTerminal(name)), 22)).
				SetExpansion(1).
				SetTextColor(p.theme.FgColor))
		}

		p.columns = append(p.columns, table)
		p.Flex.AddItem(table, 0, 1, false)
	}

	if p.focused >= len(p.columns) {
		p.focused = 0
	}
	p.highlight()
}

func (p *Pipeline) highlight() {
	for i, col := range p.columns {
		if i == p.focused {
			col.SetBorderColor(p.theme.BorderFocusColor)
		} else {
			col.SetBorderColor(p.theme.BorderColor)
		}
	}
}

// FocusedColumn returns the table of the focused stage column, or nil.
func (p *Pipeline) FocusedColumn() *tview.Table {
	if p.focused < 0 || p.focused >= len(p.columns) {
		return nil
	}
	return p.columns[p.focused]
}

// MoveFocus shifts the focused column by delta and returns the new table.
func (p *Pipeline) MoveFocus(delta int) *tview.Table {
	if len(p.columns) == 0 {
		return nil
	}
	p.focused = (p.focused + delta + len(p.columns)) % len(p.columns)
	p.highlight()
	return p.columns[p.focused]
}

// Selected returns the contact under the cursor in the focused column.
func (p *Pipeline) Selected() (crm.Contact, bool) {
	col := p.FocusedColumn()
	if col == nil || p.focused >= len(p.stages) {
		return crm.Contact{}, false
	}
	row, _ := col.GetSelection()
	cards := p.byStage[p.stages[p.focused]]
	if row < 0 || row >= len(cards) {
		return crm.Contact{}, false
	}
	return cards[row], true
}
