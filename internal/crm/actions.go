package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Outbox action kinds understood by Dispatch.
const (
	ActionCall     = "call.initiate"
	ActionWhatsApp = "whatsapp.send"
	ActionEmail    = "email.send"
)

// InitiateCall asks the backend to start an outbound call.
func (c *Client) InitiateCall(ctx context.Context, req CallRequest) (*ActionResult, error) {
	var out ActionResult
	if err := c.do(ctx, http.MethodPost, "/calls/initiate", nil, req, &out); err != nil {
		return nil, fmt.Errorf("initiate call: %w", err)
	}
	return &out, nil
}

// SendWhatsApp sends a WhatsApp message (template or free text).
func (c *Client) SendWhatsApp(ctx context.Context, req WhatsAppSend) (*ActionResult, error) {
	var out ActionResult
	if err := c.do(ctx, http.MethodPost, "/whatsapp/send", nil, req, &out); err != nil {
		return nil, fmt.Errorf("send whatsapp: %w", err)
	}
	return &out, nil
}

// SendEmail sends an email through the backend's contact-email integration.
func (c *Client) SendEmail(ctx context.Context, req EmailSend) (*ActionResult, error) {
	var out ActionResult
	if err := c.do(ctx, http.MethodPost, "/contact-emails/send", nil, req, &out); err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	return &out, nil
}

// StartCampaign launches a bulk call/messaging campaign.
func (c *Client) StartCampaign(ctx context.Context, req CampaignRequest) (*CampaignStatus, error) {
	var out CampaignStatus
	if err := c.do(ctx, http.MethodPost, "/campaigns", nil, req, &out); err != nil {
		return nil, fmt.Errorf("start campaign: %w", err)
	}
	return &out, nil
}

// GetCampaignStatus reports progress of a campaign.
func (c *Client) GetCampaignStatus(ctx context.Context, id string) (*CampaignStatus, error) {
	var out CampaignStatus
	if err := c.do(ctx, http.MethodGet, "/campaigns/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("campaign status %s: %w", id, err)
	}
	return &out, nil
}

// GetWhatsAppQR fetches the current WhatsApp pairing code.
func (c *Client) GetWhatsAppQR(ctx context.Context) (*WhatsAppQR, error) {
	var out WhatsAppQR
	if err := c.do(ctx, http.MethodGet, "/integrations/whatsapp/qr", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("whatsapp qr: %w", err)
	}
	return &out, nil
}

// Dispatch executes a queued outbox action by kind. Payload is the JSON
// body stored when the action was queued. Implements outbox.Dispatcher.
func (c *Client) Dispatch(ctx context.Context, kind string, payload []byte) (string, error) {
	switch kind {
	case ActionCall:
		var req CallRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return "", fmt.Errorf("decode %s payload: %w", kind, err)
		}
		res, err := c.InitiateCall(ctx, req)
		if err != nil {
			return "", err
		}
		return res.ID, nil
	case ActionWhatsApp:
		var req WhatsAppSend
		if err := json.Unmarshal(payload, &req); err != nil {
			return "", fmt.Errorf("decode %s payload: %w", kind, err)
		}
		res, err := c.SendWhatsApp(ctx, req)
		if err != nil {
			return "", err
		}
		return res.ID, nil
	case ActionEmail:
		var req EmailSend
		if err := json.Unmarshal(payload, &req); err != nil {
			return "", fmt.Errorf("decode %s payload: %w", kind, err)
		}
		res, err := c.SendEmail(ctx, req)
		if err != nil {
			return "", err
		}
		return res.ID, nil
	default:
		return "", fmt.Errorf("unknown action kind %q", kind)
	}
}
