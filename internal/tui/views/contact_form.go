package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/tui/ui"
)

// ContactForm edits the locally-owned contact fields (notes, lead stage)
// and shows the read-only rest of the record.
type ContactForm struct {
	*tview.Form
	theme    *ui.Theme
	contact  crm.Contact
	onSave   func(id string, patch crm.ContactPatch)
	onCancel func()
}

// NewContactForm creates a new contact edit form.
func NewContactForm(theme *ui.Theme) *ContactForm {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderFocusColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetFieldBackgroundColor(theme.BgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.BorderColor)
	form.SetTitleColor(theme.TitleColor)

	return &ContactForm{
		Form:  form,
		theme: theme,
	}
}

// Name implements Component.
func (cf *ContactForm) Name() string { return "Contact" }

// Init implements Component.
func (cf *ContactForm) Init() {}

// Start implements Component.
func (cf *ContactForm) Start() {}

// Stop implements Component.
func (cf *ContactForm) Stop() {}

// Hints implements Component.
func (cf *ContactForm) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// SetCallbacks wires the save and cancel actions.
func (cf *ContactForm) SetCallbacks(onSave func(id string, patch crm.ContactPatch), onCancel func()) {
	cf.onSave = onSave
	cf.onCancel = onCancel
}

// Open populates the form for a contact.
func (cf *ContactForm) Open(c crm.Contact) {
	cf.contact = c
	cf.Clear(true)
	cf.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(c.Name))))

	info := fmt.Sprintf("%s · %s · %s", c.Phone, c.Email, c.Company)
	if len(c.Tags) > 0 {
		info += " · " + strings.Join(c.Tags, ",")
	}
	cf.AddTextView("Contact", tview.Escape(sanitizeForTerminal(info)), 0, 1, true, false)
	cf.AddTextView("Activity", fmt.Sprintf("%s, %d attempts", orDash(c.LastCallStatus), c.CallAttempts), 0, 1, true, false)

	cf.AddInputField("Stage", c.LeadStage, 24, nil, nil)
	cf.AddTextArea("Notes", c.Notes, 0, 5, 0, nil)

	cf.AddButton("Save", func() {
		if cf.onSave == nil {
			return
		}
		stage := cf.GetFormItemByLabel("Stage").(*tview.InputField).GetText()
		notes := cf.GetFormItemByLabel("Notes").(*tview.TextArea).GetText()
		patch := crm.ContactPatch{}
		if stage != cf.contact.LeadStage {
			patch.LeadStage = &stage
		}
		if notes != cf.contact.Notes {
			patch.Notes = &notes
		}
		cf.onSave(cf.contact.ID, patch)
	})
	cf.AddButton("Cancel", func() {
		if cf.onCancel != nil {
			cf.onCancel()
		}
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
