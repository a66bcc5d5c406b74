package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/tui/ui"
)

// EmailForm composes an email to a single contact.
type EmailForm struct {
	*tview.Form
	theme    *ui.Theme
	contact  crm.Contact
	onSend   func(c crm.Contact, subject, body string)
	onCancel func()
}

// NewEmailForm creates a new email compose form.
func NewEmailForm(theme *ui.Theme) *EmailForm {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderFocusColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetFieldBackgroundColor(theme.BgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.BorderColor)
	form.SetTitleColor(theme.TitleColor)

	return &EmailForm{
		Form:  form,
		theme: theme,
	}
}

// Name implements Component.
func (ef *EmailForm) Name() string { return "Email" }

// Init implements Component.
func (ef *EmailForm) Init() {}

// Start implements Component.
func (ef *EmailForm) Start() {}

// Stop implements Component.
func (ef *EmailForm) Stop() {}

// Hints implements Component.
func (ef *EmailForm) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// SetCallbacks wires the send and cancel actions.
func (ef *EmailForm) SetCallbacks(onSend func(c crm.Contact, subject, body string), onCancel func()) {
	ef.onSend = onSend
	ef.onCancel = onCancel
}

// Open resets the form for a contact.
func (ef *EmailForm) Open(c crm.Contact) {
	ef.contact = c
	ef.Clear(true)
	ef.SetTitle(fmt.Sprintf(" Email %s ", tview.Escape(sanitizeForTerminal(c.Name))))

	ef.AddTextView("To", c.Email, 0, 1, true, false)
	ef.AddInputField("Subject", "", 48, nil, nil)
	ef.AddTextArea("Body", "", 0, 6, 0, nil)

	ef.AddButton("Send", func() {
		if ef.onSend == nil {
			return
		}
		subject := ef.GetFormItemByLabel("Subject").(*tview.InputField).GetText()
		body := ef.GetFormItemByLabel("Body").(*tview.TextArea).GetText()
		if subject == "" && body == "" {
			return
		}
		ef.onSend(ef.contact, subject, body)
	})
	ef.AddButton("Cancel", func() {
		if ef.onCancel != nil {
			ef.onCancel()
		}
	})
}
