package crm

import "time"

// Contact is a CRM contact as returned by the backend. The backend owns
// this data; the dashboard keeps a read-mostly copy plus optimistic edits
// to notes and lead stage that are reconciled on save.
type Contact struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email"`
	Company         string     `json:"company"`
	Tags            []string   `json:"tags"`
	LeadStage       string     `json:"lead_stage"`
	CallType        string     `json:"call_type"`
	Source          string     `json:"source"`
	City            string     `json:"city"`
	Country         string     `json:"country"`
	LastCallStatus  string     `json:"last_call_status"`
	LastContactedAt *time.Time `json:"last_contacted_at"`
	CallAttempts    int        `json:"call_attempts"`
	Notes           string     `json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ChatLead aggregates a messaging conversation keyed by customer phone.
type ChatLead struct {
	Phone         string   `json:"phone"`
	Name          string   `json:"name"`
	Platforms     []string `json:"platforms"`
	MessageCount  int      `json:"message_count"`
	UnreadCount   int      `json:"unread_count"`
	LastMessage   string   `json:"last_message"`
	LastMessageAt int64    `json:"last_message_at"`
}

// Message belongs to exactly one lead. Sender is "agent" or "customer".
type Message struct {
	ID             string `json:"id"`
	LeadPhone      string `json:"lead_phone"`
	Sender         string `json:"sender"`
	Text           string `json:"text"`
	DeliveryStatus string `json:"delivery_status"`
	Timestamp      int64  `json:"timestamp"`
}

// MessageStatus carries delivery diagnostics for a single message.
type MessageStatus struct {
	DeliveryStatus string `json:"delivery_status"`
	FailureReason  string `json:"failure_reason"`
}

// Pagination is the backend's page envelope metadata.
type Pagination struct {
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// ContactPage is one bounded batch of contacts.
type ContactPage struct {
	Data       []Contact  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// LeadPage is one bounded batch of chat leads.
type LeadPage struct {
	Data       []ChatLead `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// MessagePage is one bounded batch of messages.
type MessagePage struct {
	Data       []Message  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ContactPatch carries the optimistic local edits reconciled on save.
// Nil fields are left untouched by the backend.
type ContactPatch struct {
	Notes     *string `json:"notes,omitempty"`
	LeadStage *string `json:"lead_stage,omitempty"`
}

// CallRequest starts an outbound call to a contact.
type CallRequest struct {
	ContactID string `json:"contact_id"`
	Phone     string `json:"phone"`
	CallType  string `json:"call_type,omitempty"`
}

// WhatsAppSend sends a templated WhatsApp message. Variables are resolved
// server side against the template body.
type WhatsAppSend struct {
	Phone     string            `json:"phone"`
	Template  string            `json:"template"`
	Variables map[string]string `json:"variables,omitempty"`
	Text      string            `json:"text,omitempty"`
}

// EmailSend sends an email to a contact.
type EmailSend struct {
	ContactID string `json:"contact_id"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// CampaignRequest starts a bulk call or messaging campaign over a set of
// contacts selected by the current filters.
type CampaignRequest struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"` // "call", "whatsapp", "email"
	ContactIDs []string `json:"contact_ids"`
	Template   string   `json:"template,omitempty"`
}

// CampaignStatus reports progress of a running campaign.
type CampaignStatus struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
}

// ActionResult is the common response of side-effecting action endpoints.
type ActionResult struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WhatsAppQR is the pairing payload for the WhatsApp integration. Code is
// rendered as a QR by the integrations view.
type WhatsAppQR struct {
	Code      string `json:"code"`
	Connected bool   `json:"connected"`
	ExpiresAt int64  `json:"expires_at"`
}
