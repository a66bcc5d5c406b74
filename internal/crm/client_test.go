package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-token", zap.NewNop())
}

func TestListContactsSendsAuthAndQuery(t *testing.T) {
	var gotAuth, gotSearch, gotLimit, gotOffset string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotSearch = r.URL.Query().Get("search")
		gotLimit = r.URL.Query().Get("limit")
		gotOffset = r.URL.Query().Get("offset")
		_ = json.NewEncoder(w).Encode(ContactPage{
			Data:       []Contact{{ID: "c1", Name: "Ana"}},
			Pagination: Pagination{Total: 1, HasMore: false},
		})
	})

	page, err := c.ListContacts(context.Background(), ContactQuery{Search: "ana", Limit: 25, Offset: 50})
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "ana", gotSearch)
	assert.Equal(t, "25", gotLimit)
	assert.Equal(t, "50", gotOffset)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Ana", page.Data[0].Name)
}

func TestListContactsNormalizesHasMore(t *testing.T) {
	// Backend claims hasMore=true on the last page; the client enforces
	// hasMore == offset+len(data) < total.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ContactPage{
			Data:       []Contact{{ID: "a"}, {ID: "b"}},
			Pagination: Pagination{Total: 2, HasMore: true},
		})
	})

	page, err := c.ListContacts(context.Background(), ContactQuery{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.False(t, page.Pagination.HasMore)
	assert.Equal(t, 2, page.Pagination.Total)
}

func TestAPIErrorFromBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid phone"}`)
	})

	_, err := c.InitiateCall(context.Background(), CallRequest{Phone: "x"})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "invalid phone", apiErr.Message)
}

func TestUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := c.Health(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateContactPatchBody(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": Contact{ID: "c1", Notes: "updated", LeadStage: "qualified"},
		})
	})

	notes := "updated"
	stage := "qualified"
	contact, err := c.UpdateContact(context.Background(), "c1", ContactPatch{Notes: &notes, LeadStage: &stage})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "updated", gotBody["notes"])
	assert.Equal(t, "qualified", gotBody["lead_stage"])
	assert.Equal(t, "qualified", contact.LeadStage)
}

func TestDispatchWhatsApp(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(ActionResult{ID: "msg-9", Status: "queued"})
	})

	payload, _ := json.Marshal(WhatsAppSend{Phone: "+5511999", Template: "followup"})
	id, err := c.Dispatch(context.Background(), ActionWhatsApp, payload)
	require.NoError(t, err)
	assert.Equal(t, "/whatsapp/send", gotPath)
	assert.Equal(t, "msg-9", id)
}

func TestDispatchUnknownKind(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.Dispatch(context.Background(), "bogus.kind", nil)
	assert.Error(t, err)
}

func TestMessageStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages/m1/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(MessageStatus{DeliveryStatus: "failed", FailureReason: "recipient opted out"})
	})

	st, err := c.GetMessageStatus(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "failed", st.DeliveryStatus)
	assert.Equal(t, "recipient opted out", st.FailureReason)
}
