// Package engine persists batches loaded from the backend into the
// profile's offline cache. It subscribes to "crm." events on the bus so
// loaders stay unaware of the cache entirely.
package engine

import (
	"context"
	"fmt"

	"github.com/abarbosa/atendo/internal/bus"
	"github.com/abarbosa/atendo/internal/cache"
	"github.com/abarbosa/atendo/internal/crm"
	"go.uber.org/zap"
)

// Engine handles idempotent ingestion of loaded batches into the cache.
type Engine struct {
	db     *cache.DB
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
}

// New creates a new ingestion engine.
func New(db *cache.DB, b *bus.Bus, logger *zap.Logger) *Engine {
	return &Engine{
		db:     db,
		bus:    b,
		logger: logger,
	}
}

// Start subscribes to loader batch events on the bus.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	ch, unsub := e.bus.Subscribe("crm.", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				e.handleEvent(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Engine) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindContactBatch:
		contacts, ok := evt.Payload.([]crm.Contact)
		if !ok {
			return
		}
		if err := e.IngestContacts(contacts); err != nil {
			e.logger.Error("failed to ingest contact batch", zap.Error(err), zap.Int("count", len(contacts)))
		} else {
			e.logger.Info("contact batch ingested", zap.Int("contacts", len(contacts)))
		}
	case bus.KindLeadBatch:
		leads, ok := evt.Payload.([]crm.ChatLead)
		if !ok {
			return
		}
		if err := e.IngestLeads(leads); err != nil {
			e.logger.Error("failed to ingest lead batch", zap.Error(err), zap.Int("count", len(leads)))
		}
	case bus.KindMessageBatch:
		msgs, ok := evt.Payload.([]crm.Message)
		if !ok {
			return
		}
		if err := e.IngestMessages(msgs); err != nil {
			e.logger.Error("failed to ingest message batch", zap.Error(err), zap.Int("count", len(msgs)))
		}
	}
}

// IngestContacts persists a batch of contacts (idempotent).
func (e *Engine) IngestContacts(contacts []crm.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	if err := e.db.BulkUpsertContacts(contacts); err != nil {
		return fmt.Errorf("bulk upsert contacts: %w", err)
	}
	return nil
}

// IngestLeads persists a batch of chat leads, refreshing each lead's
// denormalized last-message preview.
func (e *Engine) IngestLeads(leads []crm.ChatLead) error {
	for _, l := range leads {
		lead := l
		if err := e.db.UpsertLead(&lead); err != nil {
			return fmt.Errorf("upsert lead %q: %w", l.Phone, err)
		}
	}
	return nil
}

// IngestMessages persists a batch of messages and bumps each affected
// lead's preview to the newest message seen.
func (e *Engine) IngestMessages(msgs []crm.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := e.db.BulkUpsertMessages(msgs); err != nil {
		return fmt.Errorf("bulk upsert messages: %w", err)
	}
	newest := make(map[string]crm.Message)
	for _, m := range msgs {
		if prev, ok := newest[m.LeadPhone]; !ok || m.Timestamp > prev.Timestamp {
			newest[m.LeadPhone] = m
		}
	}
	for phone, m := range newest {
		// A targeted preview update: a full lead upsert here would zero
		// the cached counters and platforms.
		if err := e.db.TouchLeadPreview(phone, truncate(m.Text, 100), m.Timestamp); err != nil {
			return fmt.Errorf("refresh lead preview %q: %w", phone, err)
		}
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
