// Package tui is the terminal dashboard shell: a k9s-style page stack over
// the contact, pipeline, chat and integration views.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/abarbosa/atendo/internal/bus"
	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/status"
	"github.com/abarbosa/atendo/internal/tui/keys"
	"github.com/abarbosa/atendo/internal/tui/model"
	"github.com/abarbosa/atendo/internal/tui/ui"
	"github.com/abarbosa/atendo/internal/tui/views"
)

// recoverToFlash converts a panic into a warning banner and a log entry
// instead of unwinding the process. Deferred by every goroutine the
// shell spawns for action handlers.
func recoverToFlash(logger *zap.Logger, flash *ui.FlashModel) {
	if r := recover(); r != nil {
		logger.Error("recovered panic in action handler", zap.Any("panic", r))
		flash.Warn(fmt.Sprintf("Internal error: %v", r))
	}
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	pages    *ui.Pages
	theme    *ui.Theme
	vm       *model.ViewModel
	bus      *bus.Bus
	machine  *status.Machine
	registry *keys.Registry
	logger   *zap.Logger
	profile  string
	apiHost  string

	logo     *ui.Logo
	info     *ui.ProfileInfo
	crumbs   *ui.Crumbs
	menu     *ui.Menu
	flashBar *ui.FlashBar
	prompt   *ui.Prompt
	root     *tview.Flex

	contacts     *views.ContactTable
	filterMenu   *views.FilterMenu
	pipeline     *views.Pipeline
	leads        *views.LeadTable
	thread       *views.Thread
	integrations *views.Integrations
	contactForm  *views.ContactForm
	campaignForm *views.CampaignForm
	emailForm    *views.EmailForm
	help         *views.HelpView

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(vm *model.ViewModel, b *bus.Bus, machine *status.Machine, profile, apiHost string, logger *zap.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:      tview.NewApplication(),
		pages:    ui.NewPages(),
		theme:    theme,
		vm:       vm,
		bus:      b,
		machine:  machine,
		registry: keys.NewRegistry(),
		logger:   logger,
		profile:  profile,
		apiHost:  apiHost,

		logo:     ui.NewLogo(theme),
		info:     ui.NewProfileInfo(theme),
		crumbs:   ui.NewCrumbs(theme),
		menu:     ui.NewMenu(theme),
		flashBar: ui.NewFlashBar(theme),
		prompt:   ui.NewPrompt(theme),

		contacts:     views.NewContactTable(theme),
		filterMenu:   views.NewFilterMenu(theme),
		pipeline:     views.NewPipeline(theme),
		leads:        views.NewLeadTable(theme),
		thread:       views.NewThread(theme),
		integrations: views.NewIntegrations(theme),
		contactForm:  views.NewContactForm(theme),
		campaignForm: views.NewCampaignForm(theme),
		emailForm:    views.NewEmailForm(theme),
		help:         views.NewHelpView(theme),

		ctx:    ctx,
		cancel: cancel,
	}

	a.setupLayout()
	a.setupCallbacks()
	a.setupBindings()

	return a
}

func (a *App) setupLayout() {
	header := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.logo, 24, 0, false).
		AddItem(a.info, 0, 1, false).
		AddItem(a.menu, 0, 1, false)

	a.pages.AddPage("contacts", a.contacts, true, false)
	a.pages.AddPage("pipeline", a.pipeline, true, false)
	a.pages.AddPage("chats", a.leads, true, false)
	a.pages.AddPage("thread", a.thread, true, false)
	a.pages.AddPage("integrations", a.integrations, true, false)
	a.pages.AddPage("filter", modal(a.filterMenu, 50, 18), true, false)
	a.pages.AddPage("contact_form", modal(a.contactForm, 72, 18), true, false)
	a.pages.AddPage("campaign_form", modal(a.campaignForm, 56, 13), true, false)
	a.pages.AddPage("email_form", modal(a.emailForm, 72, 16), true, false)
	a.pages.AddPage("help", a.help, true, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 5, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)

	a.pages.SetOnChange(func(stack []string) {
		a.crumbs.Update(stack)
		a.renderMenu()
	})

	a.app.SetRoot(a.root, true)
	a.app.SetInputCapture(a.handleKey)
	a.pages.Reset("contacts")
}

// modal centers a primitive in a fixed-size floating box.
func modal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	current := a.pages.Current()

	if event.Key() == tcell.KeyEscape {
		if current == "filter" && a.filterMenu.Back() {
			return nil
		}
		if a.pages.Depth() > 1 {
			a.popPage()
			return nil
		}
		return nil
	}

	// Text inputs own their keys.
	switch a.app.GetFocus().(type) {
	case *tview.InputField, *tview.TextArea, *tview.DropDown:
		return event
	}

	if current == "thread" && event.Key() == tcell.KeyRune && event.Rune() == 'i' {
		a.app.SetFocus(a.thread.Composer())
		return nil
	}

	if a.registry.HandleEvent(current, event) {
		return nil
	}
	return event
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "Quit", Visible: true, Order: 90,
		Handler: func() { a.app.Stop() },
	})
	a.registry.AddGlobal("command", &keys.Action{
		Rune: ':', Key: tcell.KeyRune,
		Description: "Command", Visible: true, Order: 80,
		Handler: func() { a.showPrompt(ui.PromptCommand) },
	})
	a.registry.AddGlobal("search", &keys.Action{
		Rune: '/', Key: tcell.KeyRune,
		Description: "Search", Visible: true, Order: 81,
		Handler: func() { a.showPrompt(ui.PromptSearch) },
	})
	a.registry.AddGlobal("help", &keys.Action{
		Rune: '?', Key: tcell.KeyRune,
		Description: "Help", Visible: true, Order: 95,
		Handler: func() { a.pushPage("help", a.help) },
	})

	a.registry.AddView("contacts", "edit", &keys.Action{
		Key: tcell.KeyEnter, Description: "Details", Visible: true, Order: 1,
		Handler: a.openContactForm,
	})
	a.registry.AddView("contacts", "call", &keys.Action{
		Rune: 'c', Key: tcell.KeyRune, Description: "Call", Visible: true, Order: 2,
		Handler: a.queueCall,
	})
	a.registry.AddView("contacts", "whatsapp", &keys.Action{
		Rune: 'w', Key: tcell.KeyRune, Description: "WhatsApp", Visible: true, Order: 3,
		Handler: a.openContactThread,
	})
	a.registry.AddView("contacts", "email", &keys.Action{
		Rune: 'm', Key: tcell.KeyRune, Description: "Email", Visible: true, Order: 4,
		Handler: a.openEmailForm,
	})
	a.registry.AddView("contacts", "filter", &keys.Action{
		Rune: 'f', Key: tcell.KeyRune, Description: "Filter", Visible: true, Order: 5,
		Handler: a.openContactFilters,
	})
	a.registry.AddView("contacts", "pipeline", &keys.Action{
		Rune: 'P', Key: tcell.KeyRune, Description: "Pipeline", Visible: true, Order: 6,
		Handler: func() { a.pushPage("pipeline", nil) },
	})
	a.registry.AddView("contacts", "retry", &keys.Action{
		Rune: 'r', Key: tcell.KeyRune, Description: "Retry", Visible: false,
		Handler: func() { a.retryLoader("contacts") },
	})
	a.registry.AddView("contacts", "delete", &keys.Action{
		Key: tcell.KeyCtrlD, Description: "Delete", Visible: true, Order: 7,
		Handler: a.deleteContact,
	})

	a.registry.AddView("pipeline", "left", &keys.Action{
		Rune: 'h', Key: tcell.KeyRune, Description: "Left", Visible: false,
		Handler: func() { a.focusPipelineColumn(-1) },
	})
	a.registry.AddView("pipeline", "right", &keys.Action{
		Rune: 'l', Key: tcell.KeyRune, Description: "Right", Visible: false,
		Handler: func() { a.focusPipelineColumn(1) },
	})
	a.registry.AddView("pipeline", "edit", &keys.Action{
		Key: tcell.KeyEnter, Description: "Details", Visible: true, Order: 1,
		Handler: a.openPipelineContact,
	})

	a.registry.AddView("chats", "open", &keys.Action{
		Key: tcell.KeyEnter, Description: "Open", Visible: true, Order: 1,
		Handler: a.openSelectedThread,
	})
	a.registry.AddView("chats", "platform", &keys.Action{
		Rune: 'p', Key: tcell.KeyRune, Description: "Platform", Visible: true, Order: 2,
		Handler: a.openLeadFilters,
	})
	a.registry.AddView("chats", "retry", &keys.Action{
		Rune: 'r', Key: tcell.KeyRune, Description: "Retry", Visible: false,
		Handler: func() { a.retryLoader("chats") },
	})

	a.registry.AddView("filter", "clear", &keys.Action{
		Rune: 'x', Key: tcell.KeyRune, Description: "Clear all", Visible: true, Order: 1,
		Handler: func() { a.filterMenu.ClearAll() },
	})

	a.registry.AddView("integrations", "qr", &keys.Action{
		Rune: 'g', Key: tcell.KeyRune, Description: "Refresh QR", Visible: true, Order: 1,
		Handler: a.loadQR,
	})
	a.registry.AddView("integrations", "campaign", &keys.Action{
		Rune: 'C', Key: tcell.KeyRune, Description: "Campaign", Visible: true, Order: 2,
		Handler: a.openCampaignForm,
	})
}

// async runs fn on its own goroutine with panic recovery.
func (a *App) async(fn func()) {
	go func() {
		defer recoverToFlash(a.logger, a.vm.Flash)
		fn()
	}()
}

func (a *App) setupCallbacks() {
	// Cursor positions arrive in filtered-row space; shift them into
	// accumulated-list space so the loader's own proximity check decides
	// whether another batch is due.
	a.contacts.SetOnNearEnd(func(index int) {
		idx := a.vm.Contacts.State().Count - len(a.vm.VisibleContacts()) + index
		a.async(func() {
			if a.vm.Contacts.MaybeLoadMore(a.ctx, idx) {
				a.redraw()
			}
		})
	})

	a.leads.SetOnNearEnd(func(index int) {
		idx := a.vm.Leads.State().Count - len(a.vm.VisibleLeads()) + index
		a.async(func() {
			if a.vm.Leads.MaybeLoadMore(a.ctx, idx) {
				a.redraw()
			}
		})
	})

	a.thread.SetOnSend(func(text string) {
		if err := a.vm.QueueWhatsAppText(text); err != nil {
			a.vm.Flash.Err(err)
		} else {
			a.vm.Flash.Info("Message queued")
		}
		a.async(func() {
			// Give the outbox a beat to reflect the optimistic copy.
			time.Sleep(700 * time.Millisecond)
			if err := a.vm.RefreshThread(a.ctx); err == nil {
				a.redraw()
			}
		})
		a.refreshCurrentPage()
	})

	a.prompt.SetOnChange(func(mode ui.PromptMode, text string) {
		if mode != ui.PromptSearch {
			return
		}
		// The loader debounces keystrokes itself.
		switch a.searchTarget() {
		case "contacts":
			a.vm.Contacts.SetSearch(a.ctx, text)
		case "chats":
			a.vm.Leads.SetSearch(a.ctx, text)
		}
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		if mode == ui.PromptCommand {
			a.runCommand(ParseCommand(text))
		}
	})

	a.prompt.SetOnCancel(func() {
		if a.prompt.Mode() == ui.PromptSearch {
			switch a.searchTarget() {
			case "contacts":
				a.vm.Contacts.SetSearch(a.ctx, "")
			case "chats":
				a.vm.Leads.SetSearch(a.ctx, "")
			}
		}
		a.hidePrompt()
	})

	a.filterMenu.SetCallbacks(
		func(dim, value string) bool { return a.activeFilterSetSelected(dim, value) },
		func(dim, value string) { a.activeFilterSetToggle(dim, value); a.refreshCurrentPage() },
		func(dim string) { a.activeFilterSetClearDim(dim); a.refreshCurrentPage() },
		func() { a.activeFilterSetClear(); a.refreshCurrentPage() },
		func() { a.popPage() },
	)

	a.contactForm.SetCallbacks(
		func(id string, patch crm.ContactPatch) {
			a.async(func() {
				if err := a.vm.SaveContact(a.ctx, id, patch); err != nil {
					a.vm.Flash.Err(err)
				} else {
					a.vm.Flash.Info("Contact saved")
					_ = a.vm.Contacts.LoadInitial(a.ctx)
				}
				a.redraw()
			})
			a.popPage()
		},
		func() { a.popPage() },
	)

	a.campaignForm.SetCallbacks(
		func(name, kind, template string) {
			a.popPage()
			a.async(func() {
				st, err := a.vm.StartCampaign(a.ctx, name, kind, template)
				if err != nil {
					a.vm.Flash.Err(err)
					a.redraw()
					return
				}
				a.vm.Flash.Info("Campaign started: " + st.ID)
				a.app.QueueUpdateDraw(func() {
					a.integrations.ShowCampaign(st)
					if a.pages.Current() != "integrations" {
						a.pages.Push("integrations")
					}
				})
			})
		},
		func() { a.popPage() },
	)

	a.emailForm.SetCallbacks(
		func(c crm.Contact, subject, body string) {
			if err := a.vm.QueueEmail(c, subject, body); err != nil {
				a.vm.Flash.Err(err)
			} else {
				a.vm.Flash.Info("Email queued for " + c.Name)
			}
			a.popPage()
		},
		func() { a.popPage() },
	)

	a.vm.Contacts.SetOnChange(func() { a.redraw() })
	a.vm.Leads.SetOnChange(func() { a.redraw() })
}

// searchTarget maps the current page to the loader '/' drives.
func (a *App) searchTarget() string {
	switch a.pages.Current() {
	case "chats", "thread":
		return "chats"
	default:
		return "contacts"
	}
}

func (a *App) activeFilterSetSelected(dim, value string) bool {
	if a.searchTarget() == "chats" {
		return a.vm.LeadFilters.Selected(dim, value)
	}
	return a.vm.ContactFilters.Selected(dim, value)
}

func (a *App) activeFilterSetToggle(dim, value string) {
	if a.searchTarget() == "chats" {
		a.vm.LeadFilters.Toggle(dim, value)
		return
	}
	a.vm.ContactFilters.Toggle(dim, value)
}

func (a *App) activeFilterSetClearDim(dim string) {
	if a.searchTarget() == "chats" {
		a.vm.LeadFilters.ClearDimension(dim)
		return
	}
	a.vm.ContactFilters.ClearDimension(dim)
}

func (a *App) activeFilterSetClear() {
	if a.searchTarget() == "chats" {
		a.vm.LeadFilters.Clear()
		return
	}
	a.vm.ContactFilters.Clear()
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.root.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.root.ResizeItem(a.prompt, 0, 0)
	a.focusCurrentPage()
}

func (a *App) pushPage(name string, focus tview.Primitive) {
	a.pages.Push(name)
	a.refreshCurrentPage()
	if focus != nil {
		a.app.SetFocus(focus)
	} else {
		a.focusCurrentPage()
	}
}

func (a *App) popPage() {
	a.pages.Pop()
	a.focusCurrentPage()
	a.refreshCurrentPage()
}

func (a *App) focusCurrentPage() {
	switch a.pages.Current() {
	case "contacts":
		a.app.SetFocus(a.contacts)
	case "pipeline":
		if col := a.pipeline.FocusedColumn(); col != nil {
			a.app.SetFocus(col)
		}
	case "chats":
		a.app.SetFocus(a.leads)
	case "thread":
		a.app.SetFocus(a.thread.Messages())
	case "integrations":
		a.app.SetFocus(a.integrations)
	case "filter":
		a.app.SetFocus(a.filterMenu)
	case "contact_form":
		a.app.SetFocus(a.contactForm)
	case "campaign_form":
		a.app.SetFocus(a.campaignForm)
	case "email_form":
		a.app.SetFocus(a.emailForm)
	case "help":
		a.app.SetFocus(a.help)
	}
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "contacts", "co":
		a.pages.Reset("contacts")
		a.focusCurrentPage()
	case "pipeline", "pipe":
		a.pages.Reset("contacts")
		a.pushPage("pipeline", nil)
		a.focusCurrentPage()
	case "chats", "ch":
		a.pages.Reset("chats")
		a.focusCurrentPage()
	case "integrations", "int":
		a.pushPage("integrations", a.integrations)
		a.loadQR()
	case "campaign":
		a.openCampaignForm()
	case "help", "h":
		a.pushPage("help", a.help)
	case "quit", "q":
		a.app.Stop()
	default:
		a.vm.Flash.Warn("Unknown command: " + cmd.Name)
	}
	a.refreshCurrentPage()
}

func (a *App) openContactForm() {
	c, ok := a.contacts.Selected()
	if !ok {
		return
	}
	a.contactForm.Open(c)
	a.pushPage("contact_form", a.contactForm)
}

func (a *App) openPipelineContact() {
	c, ok := a.pipeline.Selected()
	if !ok {
		return
	}
	a.contactForm.Open(c)
	a.pushPage("contact_form", a.contactForm)
}

func (a *App) queueCall() {
	c, ok := a.contacts.Selected()
	if !ok {
		return
	}
	if err := a.vm.QueueCall(c); err != nil {
		a.vm.Flash.Err(err)
	} else {
		a.vm.Flash.Info("Call queued for " + c.Name)
	}
	a.refreshCurrentPage()
}

// openContactThread jumps from a contact row to its chat thread.
func (a *App) openContactThread() {
	c, ok := a.contacts.Selected()
	if !ok || c.Phone == "" {
		return
	}
	lead := crm.ChatLead{Phone: c.Phone, Name: c.Name}
	a.async(func() {
		if err := a.vm.OpenThread(a.ctx, lead); err != nil {
			a.vm.Flash.Err(err)
			a.redraw()
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.thread.SetLeadName(lead.Name)
			a.refreshThreadView()
			a.pages.Push("thread")
			a.app.SetFocus(a.thread.Composer())
		})
	})
}

func (a *App) openEmailForm() {
	c, ok := a.contacts.Selected()
	if !ok {
		return
	}
	a.emailForm.Open(c)
	a.pushPage("email_form", a.emailForm)
}

func (a *App) deleteContact() {
	c, ok := a.contacts.Selected()
	if !ok {
		return
	}
	a.async(func() {
		if err := a.vm.DeleteContact(a.ctx, c.ID); err != nil {
			a.vm.Flash.Err(err)
			a.redraw()
			return
		}
		a.vm.Flash.Info("Deleted " + c.Name)
		_ = a.vm.Contacts.LoadInitial(a.ctx)
		a.redraw()
	})
}

func (a *App) openContactFilters() {
	a.filterMenu.Open(a.vm.ContactFilters.Dimensions(), a.vm.ContactFilterOptions())
	a.pushPage("filter", a.filterMenu)
}

func (a *App) openLeadFilters() {
	a.filterMenu.Open(a.vm.LeadFilters.Dimensions(), a.vm.LeadFilters.Options(a.vm.Leads.Snapshot()))
	a.pushPage("filter", a.filterMenu)
}

func (a *App) openSelectedThread() {
	lead, ok := a.leads.Selected()
	if !ok {
		return
	}
	a.async(func() {
		if err := a.vm.OpenThread(a.ctx, lead); err != nil {
			a.vm.Flash.Err(err)
			a.redraw()
			return
		}
		a.app.QueueUpdateDraw(func() {
			name := lead.Name
			if name == "" {
				name = lead.Phone
			}
			a.thread.SetLeadName(name)
			a.refreshThreadView()
			a.pages.Push("thread")
			a.app.SetFocus(a.thread.Messages())
		})
	})
}

func (a *App) focusPipelineColumn(delta int) {
	if col := a.pipeline.MoveFocus(delta); col != nil {
		a.app.SetFocus(col)
	}
}

func (a *App) retryLoader(which string) {
	a.async(func() {
		var err error
		if which == "chats" {
			err = a.vm.Leads.Retry(a.ctx)
		} else {
			err = a.vm.Contacts.Retry(a.ctx)
		}
		if err != nil {
			a.vm.Flash.Err(err)
		}
		a.redraw()
	})
}

func (a *App) loadQR() {
	a.async(func() {
		qr, err := a.vm.LoadQR(a.ctx)
		if err != nil {
			a.vm.Flash.Err(err)
			a.redraw()
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.integrations.ShowQR(qr)
		})
	})
}

func (a *App) openCampaignForm() {
	a.campaignForm.Open(len(a.vm.VisibleContacts()))
	a.pushPage("campaign_form", a.campaignForm)
}

// redraw refreshes the visible page from a background goroutine.
func (a *App) redraw() {
	a.app.QueueUpdateDraw(func() {
		a.refreshCurrentPage()
	})
}

func (a *App) refreshCurrentPage() {
	switch a.pages.Current() {
	case "contacts":
		a.contacts.Update(a.vm.VisibleContacts(), a.vm.Contacts.State(), a.vm.ContactFilters.Selections())
	case "pipeline":
		stages, byStage := a.vm.PipelineStages()
		a.pipeline.Update(stages, byStage)
	case "chats":
		a.leads.Update(a.vm.VisibleLeads(), a.vm.Leads.State())
	case "thread":
		a.refreshThreadView()
	}
	a.refreshHeader()
}

func (a *App) refreshThreadView() {
	msgs, failures := a.vm.Messages()
	a.thread.Update(msgs, failures)
}

func (a *App) refreshHeader() {
	contacts, leads := a.vm.CachedCounts()
	a.info.Update(&ui.ProfileData{
		Profile:      a.profile,
		APIHost:      a.apiHost,
		Status:       a.vm.Status(),
		ContactCount: int(contacts),
		LeadCount:    int(leads),
		Pending:      a.vm.PendingCount(),
		Uptime:       model.Uptime(),
	})
	a.flashBar.Update(a.vm.Flash.GetMessage())
	a.renderMenu()
}

func (a *App) renderMenu() {
	var hints []ui.MenuHint
	switch a.pages.Current() {
	case "contacts":
		hints = a.contacts.Hints()
	case "pipeline":
		hints = a.pipeline.Hints()
	case "chats":
		hints = a.leads.Hints()
	case "thread":
		hints = a.thread.Hints()
	case "integrations":
		hints = a.integrations.Hints()
	case "filter":
		hints = a.filterMenu.Hints()
	case "contact_form":
		hints = a.contactForm.Hints()
	case "campaign_form":
		hints = a.campaignForm.Hints()
	case "email_form":
		hints = a.emailForm.Hints()
	case "help":
		hints = a.help.Hints()
	}
	a.menu.Update(hints)
}

// Run starts the TUI application.
func (a *App) Run() error {
	a.vm.SetStatus(string(a.machine.Current()))
	a.async(a.watchBus)
	a.async(a.startRefreshLoop)

	a.async(func() {
		seeded := 0
		if err := a.vm.Contacts.LoadInitial(a.ctx); err != nil {
			a.vm.Flash.Err(err)
			seeded += a.vm.SeedContactsFromCache()
		}
		if err := a.vm.Leads.LoadInitial(a.ctx); err != nil {
			a.vm.Flash.Err(err)
			seeded += a.vm.SeedLeadsFromCache()
		}
		if seeded > 0 {
			a.vm.Flash.Warn(fmt.Sprintf("Backend unreachable, showing %d cached rows", seeded))
		}
		a.redraw()
	})

	return a.app.Run()
}

// watchBus mirrors connection and outbox events into the header.
func (a *App) watchBus() {
	ch, unsub := a.bus.Subscribe("", 64)
	defer unsub()

	for {
		select {
		case evt := <-ch:
			switch evt.Kind {
			case bus.KindStatusChanged:
				a.vm.SetStatus(string(a.machine.Current()))
			case bus.KindActionSent:
				a.vm.Flash.Info("Action delivered")
			case bus.KindActionFailed:
				if m, ok := evt.Payload.(map[string]string); ok {
					a.vm.Flash.Warn("Action failed: " + m["error"])
				} else {
					a.vm.Flash.Warn("Action failed")
				}
			}
			a.redraw()
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) startRefreshLoop() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.redraw()
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
