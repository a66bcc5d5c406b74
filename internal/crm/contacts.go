package crm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ContactQuery selects a page of contacts.
type ContactQuery struct {
	Search    string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

func (q ContactQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
		order := q.SortOrder
		if order == "" {
			order = "asc"
		}
		v.Set("sortOrder", order)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("offset", strconv.Itoa(q.Offset))
	return v
}

// ListContacts fetches one batch of contacts.
func (c *Client) ListContacts(ctx context.Context, q ContactQuery) (*ContactPage, error) {
	var page ContactPage
	if err := c.do(ctx, http.MethodGet, "/contacts", q.values(), nil, &page); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	normalizePage(&page.Pagination, q.Offset, len(page.Data))
	return &page, nil
}

// GetContact fetches a single contact by ID.
func (c *Client) GetContact(ctx context.Context, id string) (*Contact, error) {
	var out struct {
		Data Contact `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/contacts/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("get contact %s: %w", id, err)
	}
	return &out.Data, nil
}

// UpdateContact reconciles optimistic local edits (notes, lead stage)
// with the backend and returns the authoritative record.
func (c *Client) UpdateContact(ctx context.Context, id string, patch ContactPatch) (*Contact, error) {
	var out struct {
		Data Contact `json:"data"`
	}
	if err := c.do(ctx, http.MethodPatch, "/contacts/"+url.PathEscape(id), nil, patch, &out); err != nil {
		return nil, fmt.Errorf("update contact %s: %w", id, err)
	}
	return &out.Data, nil
}

// DeleteContact removes a contact.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/contacts/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	return nil
}
