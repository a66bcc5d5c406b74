// Package model holds the presentation state shared by the dashboard views.
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abarbosa/atendo/internal/bus"
	"github.com/abarbosa/atendo/internal/cache"
	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/filter"
	"github.com/abarbosa/atendo/internal/loader"
	"github.com/abarbosa/atendo/internal/tui/ui"
)

// stageOrder fixes the column order of well-known pipeline stages. Stages
// outside this list are appended alphabetically.
var stageOrder = []string{"new", "contacted", "qualified", "proposal", "negotiation", "won", "lost"}

// ViewModel caches dashboard state between the loaders, the backend client
// and the local cache, and exposes snapshots for rendering.
type ViewModel struct {
	mu sync.RWMutex

	client *crm.Client
	db     *cache.DB
	bus    *bus.Bus
	logger *zap.Logger

	Contacts *loader.Loader[crm.Contact]
	Leads    *loader.Loader[crm.ChatLead]

	ContactFilters *filter.Set[crm.Contact]
	LeadFilters    *filter.Set[crm.ChatLead]

	Flash *ui.FlashModel

	activeLead     string
	activeLeadName string
	messages       []crm.Message
	failureReasons map[string]string

	status string
}

// NewViewModel creates the view model. The loaders are shared with the fx
// graph so the CLI and the TUI drive the same accumulation state.
func NewViewModel(client *crm.Client, db *cache.DB, b *bus.Bus, contacts *loader.Loader[crm.Contact], leads *loader.Loader[crm.ChatLead], logger *zap.Logger) *ViewModel {
	return &ViewModel{
		client:         client,
		db:             db,
		bus:            b,
		logger:         logger,
		Contacts:       contacts,
		Leads:          leads,
		ContactFilters: filter.NewSet(ContactDimensions()...),
		LeadFilters:    filter.NewSet(LeadDimensions()...),
		Flash:          ui.NewFlashModel(),
		failureReasons: make(map[string]string),
	}
}

// ContactDimensions returns the filterable columns of the contact table.
func ContactDimensions() []filter.Dimension[crm.Contact] {
	return []filter.Dimension[crm.Contact]{
		{Name: "tags", Values: func(c crm.Contact) []string { return c.Tags }},
		{Name: "stage", Values: func(c crm.Contact) []string { return single(c.LeadStage) }},
		{Name: "call_type", Values: func(c crm.Contact) []string { return single(c.CallType) }},
		{Name: "source", Values: func(c crm.Contact) []string { return single(c.Source) }},
		{Name: "city", Values: func(c crm.Contact) []string { return single(c.City) }},
		{Name: "country", Values: func(c crm.Contact) []string { return single(c.Country) }},
		{Name: "call_status", Values: func(c crm.Contact) []string { return single(c.LastCallStatus) }},
	}
}

// LeadDimensions returns the filterable columns of the chat-lead list.
func LeadDimensions() []filter.Dimension[crm.ChatLead] {
	return []filter.Dimension[crm.ChatLead]{
		{Name: "platform", Values: func(l crm.ChatLead) []string { return l.Platforms }},
	}
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// VisibleContacts returns the loaded contacts that pass the active filters.
func (vm *ViewModel) VisibleContacts() []crm.Contact {
	return vm.ContactFilters.Apply(vm.Contacts.Snapshot())
}

// VisibleLeads returns the loaded chat leads that pass the active filters.
func (vm *ViewModel) VisibleLeads() []crm.ChatLead {
	return vm.LeadFilters.Apply(vm.Leads.Snapshot())
}

// ContactFilterOptions returns the distinct values per dimension present in
// the loaded set.
func (vm *ViewModel) ContactFilterOptions() map[string][]string {
	return vm.ContactFilters.Options(vm.Contacts.Snapshot())
}

// PipelineStages groups the visible contacts into ordered stage columns.
// Contacts without a stage land in the trailing "unstaged" column.
func (vm *ViewModel) PipelineStages() ([]string, map[string][]crm.Contact) {
	byStage := make(map[string][]crm.Contact)
	for _, c := range vm.VisibleContacts() {
		stage := c.LeadStage
		if stage == "" {
			stage = "unstaged"
		}
		byStage[stage] = append(byStage[stage], c)
	}

	known := make(map[string]bool, len(stageOrder))
	var stages []string
	for _, s := range stageOrder {
		known[s] = true
		if len(byStage[s]) > 0 {
			stages = append(stages, s)
		}
	}
	var extra []string
	for s := range byStage {
		if !known[s] && s != "unstaged" {
			extra = append(extra, s)
		}
	}
	sort.Strings(extra)
	stages = append(stages, extra...)
	if len(byStage["unstaged"]) > 0 {
		stages = append(stages, "unstaged")
	}
	return stages, byStage
}

// OpenThread loads the message history for a lead and annotates failed
// messages with their delivery diagnostics. When the backend is down the
// thread falls back to cached messages, without annotations.
func (vm *ViewModel) OpenThread(ctx context.Context, lead crm.ChatLead) error {
	page, err := vm.client.ListMessages(ctx, lead.Phone, 100, 0)
	if err != nil {
		cached, cacheErr := vm.db.ListMessages(lead.Phone, 0, 100)
		if cacheErr != nil || len(cached) == 0 {
			return err
		}
		// The cache pages newest-first; the thread renders oldest-first.
		for i, j := 0, len(cached)-1; i < j; i, j = i+1, j-1 {
			cached[i], cached[j] = cached[j], cached[i]
		}
		vm.logger.Warn("thread fetch failed, showing cached messages",
			zap.String("lead", lead.Phone), zap.Error(err))
		vm.mu.Lock()
		vm.activeLead = lead.Phone
		vm.activeLeadName = lead.Name
		vm.messages = cached
		vm.failureReasons = map[string]string{}
		vm.mu.Unlock()
		vm.Flash.Warn(fmt.Sprintf("Offline: showing %d cached messages", len(cached)))
		return nil
	}

	reasons := make(map[string]string)
	for _, m := range page.Data {
		if m.DeliveryStatus != "failed" {
			continue
		}
		st, err := vm.client.GetMessageStatus(ctx, m.ID)
		if err != nil {
			vm.logger.Warn("message status lookup failed", zap.String("msg_id", m.ID), zap.Error(err))
			continue
		}
		reasons[m.ID] = st.FailureReason
	}

	vm.mu.Lock()
	vm.activeLead = lead.Phone
	vm.activeLeadName = lead.Name
	vm.messages = page.Data
	vm.failureReasons = reasons
	vm.mu.Unlock()

	vm.bus.Emit(bus.KindMessageBatch, page.Data)
	return nil
}

// RefreshThread refetches the active thread, keeping annotations current.
func (vm *ViewModel) RefreshThread(ctx context.Context) error {
	vm.mu.RLock()
	phone, name := vm.activeLead, vm.activeLeadName
	vm.mu.RUnlock()
	if phone == "" {
		return nil
	}
	return vm.OpenThread(ctx, crm.ChatLead{Phone: phone, Name: name})
}

// ActiveLead returns the phone and display name of the open thread.
func (vm *ViewModel) ActiveLead() (phone, name string) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.activeLead, vm.activeLeadName
}

// Messages returns the open thread's messages and failure annotations.
func (vm *ViewModel) Messages() ([]crm.Message, map[string]string) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.messages, vm.failureReasons
}

// SetStatus records the connection state shown in the header.
func (vm *ViewModel) SetStatus(s string) {
	vm.mu.Lock()
	vm.status = s
	vm.mu.Unlock()
}

// Status returns the connection state shown in the header.
func (vm *ViewModel) Status() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.status
}

// QueueWhatsAppText queues a free-text WhatsApp send to the open thread.
// The outbox sender dispatches it; the thread shows the optimistic copy.
func (vm *ViewModel) QueueWhatsAppText(text string) error {
	vm.mu.RLock()
	phone := vm.activeLead
	vm.mu.RUnlock()

	payload, err := json.Marshal(crm.WhatsAppSend{Phone: phone, Text: text})
	if err != nil {
		return err
	}
	if err := vm.db.QueueAction(uuid.New().String(), crm.ActionWhatsApp, payload); err != nil {
		return err
	}
	vm.bus.Emit(bus.KindActionQueued, map[string]string{"kind": crm.ActionWhatsApp, "phone": phone})
	return nil
}

// QueueCall queues an outbound call to a contact.
func (vm *ViewModel) QueueCall(c crm.Contact) error {
	payload, err := json.Marshal(crm.CallRequest{ContactID: c.ID, Phone: c.Phone, CallType: c.CallType})
	if err != nil {
		return err
	}
	if err := vm.db.QueueAction(uuid.New().String(), crm.ActionCall, payload); err != nil {
		return err
	}
	vm.bus.Emit(bus.KindActionQueued, map[string]string{"kind": crm.ActionCall, "contact_id": c.ID})
	return nil
}

// QueueEmail queues an email send to a contact.
func (vm *ViewModel) QueueEmail(c crm.Contact, subject, body string) error {
	payload, err := json.Marshal(crm.EmailSend{ContactID: c.ID, Subject: subject, Body: body})
	if err != nil {
		return err
	}
	if err := vm.db.QueueAction(uuid.New().String(), crm.ActionEmail, payload); err != nil {
		return err
	}
	vm.bus.Emit(bus.KindActionQueued, map[string]string{"kind": crm.ActionEmail, "contact_id": c.ID})
	return nil
}

// SaveContact applies an optimistic edit and reconciles it with the backend.
func (vm *ViewModel) SaveContact(ctx context.Context, id string, patch crm.ContactPatch) error {
	updated, err := vm.client.UpdateContact(ctx, id, patch)
	if err != nil {
		return err
	}
	if err := vm.db.UpsertContact(updated); err != nil {
		vm.logger.Warn("cache update failed after save", zap.String("contact_id", id), zap.Error(err))
	}
	vm.bus.Emit(bus.KindContactBatch, []crm.Contact{*updated})
	return nil
}

// DeleteContact removes a contact on the backend and from the cache.
func (vm *ViewModel) DeleteContact(ctx context.Context, id string) error {
	if err := vm.client.DeleteContact(ctx, id); err != nil {
		return err
	}
	return vm.db.DeleteContact(id)
}

// StartCampaign starts a campaign over the currently visible contacts.
func (vm *ViewModel) StartCampaign(ctx context.Context, name, kind, template string) (*crm.CampaignStatus, error) {
	visible := vm.VisibleContacts()
	ids := make([]string, 0, len(visible))
	for _, c := range visible {
		ids = append(ids, c.ID)
	}
	return vm.client.StartCampaign(ctx, crm.CampaignRequest{
		Name:       name,
		Kind:       kind,
		ContactIDs: ids,
		Template:   template,
	})
}

// LoadQR fetches the WhatsApp pairing payload.
func (vm *ViewModel) LoadQR(ctx context.Context) (*crm.WhatsAppQR, error) {
	return vm.client.GetWhatsAppQR(ctx)
}

// seedPageSize bounds how many cached rows an offline start displays.
const seedPageSize = 1000

// SeedContactsFromCache fills the contact loader with cached rows after a
// failed initial fetch, so a cold offline start still shows data. Returns
// how many rows were seeded.
func (vm *ViewModel) SeedContactsFromCache() int {
	contacts, err := vm.db.ListContacts(seedPageSize, 0)
	if err != nil {
		vm.logger.Warn("offline contact seed failed", zap.Error(err))
		return 0
	}
	return vm.Contacts.Seed(contacts)
}

// SeedLeadsFromCache is the chat-lead counterpart of SeedContactsFromCache.
func (vm *ViewModel) SeedLeadsFromCache() int {
	leads, err := vm.db.ListLeads(seedPageSize, 0)
	if err != nil {
		vm.logger.Warn("offline lead seed failed", zap.Error(err))
		return 0
	}
	return vm.Leads.Seed(leads)
}

// CachedCounts returns cache row counts for the header panel.
func (vm *ViewModel) CachedCounts() (contacts, leads int64) {
	contacts, _ = vm.db.ContactCount()
	leads, _ = vm.db.LeadCount()
	return contacts, leads
}

// PendingCount returns the number of queued outbox actions.
func (vm *ViewModel) PendingCount() int {
	pending, err := vm.db.PendingActions()
	if err != nil {
		return 0
	}
	return len(pending)
}

// uptimeStart anchors the header uptime display.
var uptimeStart = time.Now()

// Uptime returns the time since the dashboard started.
func Uptime() time.Duration {
	return time.Since(uptimeStart)
}
