package crm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// LeadQuery selects a page of chat leads.
type LeadQuery struct {
	Search   string
	Platform string
	Limit    int
	Offset   int
}

func (q LeadQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Platform != "" {
		v.Set("platform", q.Platform)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("offset", strconv.Itoa(q.Offset))
	return v
}

// ListLeads fetches one batch of chat leads.
func (c *Client) ListLeads(ctx context.Context, q LeadQuery) (*LeadPage, error) {
	var page LeadPage
	if err := c.do(ctx, http.MethodGet, "/chat-leads", q.values(), nil, &page); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	normalizePage(&page.Pagination, q.Offset, len(page.Data))
	return &page, nil
}

// ListMessages fetches one batch of a lead's message history, newest last.
func (c *Client) ListMessages(ctx context.Context, phone string, limit, offset int) (*MessagePage, error) {
	v := url.Values{}
	if limit <= 0 {
		limit = 100
	}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("offset", strconv.Itoa(offset))

	var page MessagePage
	path := "/chat-leads/" + url.PathEscape(phone) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, v, nil, &page); err != nil {
		return nil, fmt.Errorf("list messages for %s: %w", phone, err)
	}
	normalizePage(&page.Pagination, offset, len(page.Data))
	return &page, nil
}

// GetMessageStatus fetches delivery diagnostics for one message. The thread
// view calls this for failed messages to show the failure reason.
func (c *Client) GetMessageStatus(ctx context.Context, id string) (*MessageStatus, error) {
	var out MessageStatus
	if err := c.do(ctx, http.MethodGet, "/messages/"+url.PathEscape(id)+"/status", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("message status %s: %w", id, err)
	}
	return &out, nil
}
