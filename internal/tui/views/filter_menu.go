package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/abarbosa/atendo/internal/tui/ui"
)

// FilterMenu is a two-level modal list: pick a dimension, then toggle
// values inside it. Values come from the loaded set only.
type FilterMenu struct {
	*tview.List
	theme      *ui.Theme
	options    map[string][]string
	dimensions []string
	current    string // empty = dimension level
	isSelected func(dim, value string) bool
	onToggle   func(dim, value string)
	onClearDim func(dim string)
	onClearAll func()
	onClose    func()
}

// NewFilterMenu creates a new filter menu.
func NewFilterMenu(theme *ui.Theme) *FilterMenu {
	list := tview.NewList().ShowSecondaryText(false)
	list.SetBorder(true)
	list.SetBorderColor(theme.BorderFocusColor)
	list.SetBackgroundColor(theme.BgColor)
	list.SetMainTextColor(theme.FgColor)
	list.SetSelectedTextColor(theme.TableCursorFg)
	list.SetSelectedBackgroundColor(theme.TableCursorBg)
	list.SetTitle(" Filter ")
	list.SetTitleColor(theme.TitleColor)

	return &FilterMenu{
		List:  list,
		theme: theme,
	}
}

// Name implements Component.
func (fm *FilterMenu) Name() string { return "Filter" }

// Init implements Component.
func (fm *FilterMenu) Init() {}

// Start implements Component.
func (fm *FilterMenu) Start() {}

// Stop implements Component.
func (fm *FilterMenu) Stop() {}

// Hints implements Component.
func (fm *FilterMenu) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Toggle"},
		{Key: "x", Description: "Clear all"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetCallbacks wires filter state access and mutation.
func (fm *FilterMenu) SetCallbacks(isSelected func(dim, value string) bool, onToggle func(dim, value string), onClearDim func(dim string), onClearAll, onClose func()) {
	fm.isSelected = isSelected
	fm.onToggle = onToggle
	fm.onClearDim = onClearDim
	fm.onClearAll = onClearAll
	fm.onClose = onClose
}

// Open shows the dimension level built from the given options.
func (fm *FilterMenu) Open(dimensions []string, options map[string][]string) {
	fm.dimensions = dimensions
	fm.options = options
	fm.current = ""
	fm.renderDimensions()
}

// AtDimensionLevel reports whether the menu shows the dimension list.
func (fm *FilterMenu) AtDimensionLevel() bool {
	return fm.current == ""
}

// Back returns from value level to dimension level. Returns false when
// already at the top.
func (fm *FilterMenu) Back() bool {
	if fm.current == "" {
		return false
	}
	fm.current = ""
	fm.renderDimensions()
	return true
}

// ClearAll clears every dimension and closes the menu.
func (fm *FilterMenu) ClearAll() {
	if fm.onClearAll != nil {
		fm.onClearAll()
	}
	if fm.onClose != nil {
		fm.onClose()
	}
}

func (fm *FilterMenu) renderDimensions() {
	fm.Clear()
	fm.SetTitle(" Filter ")
	for _, dim := range fm.dimensions {
		d := dim
		active := 0
		for _, v := range fm.options[d] {
			if fm.isSelected != nil && fm.isSelected(d, v) {
				active++
			}
		}
		label := fmt.Sprintf("%-12s (%d values", d, len(fm.options[d]))
		if active > 0 {
			label += fmt.Sprintf(", %d active", active)
		}
		label += ")"
		fm.AddItem(label, "", 0, func() {
			fm.current = d
			fm.renderValues()
		})
	}
	fm.AddItem("clear all filters", "", 'x', func() { fm.ClearAll() })
}

func (fm *FilterMenu) renderValues() {
	fm.Clear()
	fm.SetTitle(fmt.Sprintf(" Filter: %s ", fm.current))
	dim := fm.current
	for _, value := range fm.options[dim] {
		v := value
		fm.AddItem(fm.valueLabel(dim, v), "", 0, func() {
			if fm.onToggle != nil {
				fm.onToggle(dim, v)
			}
			fm.refreshValueLabels()
		})
	}
	fm.AddItem("clear this dimension", "", 'x', func() {
		if fm.onClearDim != nil {
			fm.onClearDim(dim)
		}
		fm.refreshValueLabels()
	})
}

func (fm *FilterMenu) valueLabel(dim, v string) string {
	mark := "  "
	if fm.isSelected != nil && fm.isSelected(dim, v) {
		mark = "✓ "
	}
	return mark + tview.Escape(sanitizeForTerminal(v))
}

func (fm *FilterMenu) refreshValueLabels() {
	dim := fm.current
	for i, v := range fm.options[dim] {
		fm.SetItemText(i, fm.valueLabel(dim, v), "")
	}
}
