// Package outbox drains queued side-effecting actions (calls, WhatsApp and
// email sends) through the backend client. Actions are queued in the cache
// so a send survives a crash or a temporary backend outage.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abarbosa/atendo/internal/bus"
	"github.com/abarbosa/atendo/internal/cache"
	"github.com/abarbosa/atendo/internal/crm"
	"go.uber.org/zap"
)

// Dispatcher executes one queued action against the backend and returns
// the server-side ID of the created resource. Implemented by crm.Client.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind string, payload []byte) (serverID string, err error)
}

// Sender drains the action outbox and dispatches entries to the backend.
type Sender struct {
	db         *cache.DB
	dispatcher Dispatcher
	bus        *bus.Bus
	logger     *zap.Logger
	cancel     context.CancelFunc
}

// NewSender creates a new outbox sender.
func NewSender(db *cache.DB, d Dispatcher, b *bus.Bus, logger *zap.Logger) *Sender {
	return &Sender{
		db:         db,
		dispatcher: d,
		bus:        b,
		logger:     logger,
	}
}

// Start begins polling the outbox for pending actions.
func (s *Sender) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
}

// Stop stops the sender loop.
func (s *Sender) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Sender) loop(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.ProcessPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// ProcessPending dispatches every queued action once. Exported so the CLI
// can flush the outbox synchronously.
func (s *Sender) ProcessPending(ctx context.Context) {
	pending, err := s.db.PendingActions()
	if err != nil {
		s.logger.Error("failed to read outbox", zap.Error(err))
		return
	}

	for _, action := range pending {
		if err := s.db.MarkActionSending(action.ClientActionID); err != nil {
			s.logger.Error("failed to mark sending", zap.Error(err), zap.String("action_id", action.ClientActionID))
			continue
		}

		// Optimistic insert: a queued WhatsApp send shows in the thread
		// immediately with a "sending" status.
		s.reflectMessage(action, "sending", time.Now().UnixMilli())

		serverID, err := s.dispatcher.Dispatch(ctx, action.Kind, action.Payload)
		if err != nil {
			s.logger.Error("failed to dispatch action",
				zap.Error(err),
				zap.String("action_id", action.ClientActionID),
				zap.String("kind", action.Kind),
			)
			_ = s.db.MarkActionFailed(action.ClientActionID, err.Error())
			s.reflectMessage(action, "failed", time.Now().UnixMilli())
			s.bus.Emit(bus.KindActionFailed, map[string]string{
				"action_id": action.ClientActionID,
				"kind":      action.Kind,
				"error":     err.Error(),
			})
			continue
		}

		if err := s.db.MarkActionSent(action.ClientActionID, serverID); err != nil {
			s.logger.Error("failed to mark sent", zap.Error(err), zap.String("action_id", action.ClientActionID))
		}
		s.reflectMessage(action, "sent", time.Now().UnixMilli())

		s.logger.Info("action dispatched",
			zap.String("action_id", action.ClientActionID),
			zap.String("kind", action.Kind),
			zap.String("server_id", serverID),
		)
		s.bus.Emit(bus.KindActionSent, map[string]string{
			"action_id": action.ClientActionID,
			"kind":      action.Kind,
			"server_id": serverID,
		})
	}
}

// reflectMessage mirrors a WhatsApp send into the cached message thread so
// the UI shows progress without waiting for a refetch. Other action kinds
// have no thread representation.
func (s *Sender) reflectMessage(action cache.Action, status string, ts int64) {
	if action.Kind != crm.ActionWhatsApp {
		return
	}
	var req crm.WhatsAppSend
	if err := json.Unmarshal(action.Payload, &req); err != nil {
		return
	}
	text := req.Text
	if text == "" {
		text = "[template] " + req.Template
	}
	_ = s.db.UpsertMessage(&crm.Message{
		ID:             action.ClientActionID,
		LeadPhone:      req.Phone,
		Sender:         "agent",
		Text:           text,
		DeliveryStatus: status,
		Timestamp:      ts,
	})
}
