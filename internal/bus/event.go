package bus

import "time"

// Event kinds published by atendo components. Subscribers filter by
// prefix, e.g. "crm." receives every batch ingestion event.
const (
	KindContactBatch  = "crm.contact_batch"
	KindLeadBatch     = "crm.lead_batch"
	KindMessageBatch  = "crm.message_batch"
	KindActionQueued  = "action.queued"
	KindActionSent    = "action.sent"
	KindActionFailed  = "action.failed"
	KindStatusChanged = "conn.status_changed"
	KindLoaderError   = "loader.error"
	KindLoaderReset   = "loader.reset"
)

// Event is one domain event on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
