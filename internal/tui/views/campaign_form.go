package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/abarbosa/atendo/internal/tui/ui"
)

var campaignKinds = []string{"call", "whatsapp", "email"}

// CampaignForm starts a campaign over the currently visible contacts.
type CampaignForm struct {
	*tview.Form
	theme    *ui.Theme
	onStart  func(name, kind, template string)
	onCancel func()
}

// NewCampaignForm creates a new campaign form.
func NewCampaignForm(theme *ui.Theme) *CampaignForm {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderFocusColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetFieldBackgroundColor(theme.BgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.BorderColor)
	form.SetTitle(" New Campaign ")
	form.SetTitleColor(theme.TitleColor)

	return &CampaignForm{
		Form:  form,
		theme: theme,
	}
}

// Name implements Component.
func (cf *CampaignForm) Name() string { return "Campaign" }

// Init implements Component.
func (cf *CampaignForm) Init() {}

// Start implements Component.
func (cf *CampaignForm) Start() {}

// Stop implements Component.
func (cf *CampaignForm) Stop() {}

// Hints implements Component.
func (cf *CampaignForm) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// SetCallbacks wires the start and cancel actions.
func (cf *CampaignForm) SetCallbacks(onStart func(name, kind, template string), onCancel func()) {
	cf.onStart = onStart
	cf.onCancel = onCancel
}

// Open resets the form for the given target count.
func (cf *CampaignForm) Open(targets int) {
	cf.Clear(true)
	cf.SetTitle(fmt.Sprintf(" New Campaign (%d contacts) ", targets))

	cf.AddInputField("Name", "", 32, nil, nil)
	cf.AddDropDown("Kind", campaignKinds, 0, nil)
	cf.AddInputField("Template", "", 32, nil, nil)

	cf.AddButton("Start", func() {
		if cf.onStart == nil {
			return
		}
		name := cf.GetFormItemByLabel("Name").(*tview.InputField).GetText()
		_, kind := cf.GetFormItemByLabel("Kind").(*tview.DropDown).GetCurrentOption()
		template := cf.GetFormItemByLabel("Template").(*tview.InputField).GetText()
		if name == "" {
			return
		}
		cf.onStart(name, kind, template)
	})
	cf.AddButton("Cancel", func() {
		if cf.onCancel != nil {
			cf.onCancel()
		}
	})
}
