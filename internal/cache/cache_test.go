package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/abarbosa/atendo/internal/crm"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate; a second run must be a no-op.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 2 {
		t.Errorf("version = %d, want 2 (init + fts)", result.Version)
	}
}

func TestContactUpsertAndList(t *testing.T) {
	db := testDB(t)

	c := &crm.Contact{
		ID: "c1", Name: "Ana Souza", Phone: "+5511999", Email: "ana@example.com",
		Tags: []string{"vip", "hot"}, LeadStage: "new", City: "Campinas",
	}
	if err := db.UpsertContact(c); err != nil {
		t.Fatal(err)
	}

	// Update the stage.
	c.LeadStage = "qualified"
	if err := db.UpsertContact(c); err != nil {
		t.Fatal(err)
	}

	contacts, err := db.ListContacts(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(contacts) != 1 {
		t.Fatalf("got %d contacts, want 1", len(contacts))
	}
	got := contacts[0]
	if got.LeadStage != "qualified" {
		t.Errorf("lead stage = %q, want qualified", got.LeadStage)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "vip" {
		t.Errorf("tags = %v, want [vip hot]", got.Tags)
	}
}

func TestBulkUpsertContacts(t *testing.T) {
	db := testDB(t)

	batch := []crm.Contact{
		{ID: "a", Name: "Alice"},
		{ID: "b", Name: "Bruno"},
		{ID: "a", Name: "Alice Updated"},
	}
	if err := db.BulkUpsertContacts(batch); err != nil {
		t.Fatal(err)
	}

	count, err := db.ContactCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	got, err := db.GetContact("a")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "Alice Updated" {
		t.Errorf("got %v, want Alice Updated", got)
	}
}

func TestGetContactMissing(t *testing.T) {
	db := testDB(t)

	c, err := db.GetContact("missing")
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Errorf("expected nil for missing contact, got %v", c)
	}
}

func TestLeadUpsertKeepsNewestTimestamp(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertLead(&crm.ChatLead{Phone: "+551188", Name: "Bia", LastMessageAt: 2000, LastMessage: "newer"}); err != nil {
		t.Fatal(err)
	}
	// An older replay must not move last_message_at backwards.
	if err := db.UpsertLead(&crm.ChatLead{Phone: "+551188", LastMessageAt: 1000, LastMessage: "older"}); err != nil {
		t.Fatal(err)
	}

	leads, err := db.ListLeads(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(leads) != 1 {
		t.Fatalf("got %d leads, want 1", len(leads))
	}
	if leads[0].LastMessageAt != 2000 {
		t.Errorf("last_message_at = %d, want 2000", leads[0].LastMessageAt)
	}
	if leads[0].Name != "Bia" {
		t.Errorf("name = %q, want Bia (empty name must not overwrite)", leads[0].Name)
	}
}

func TestMessageUpsertIdempotent(t *testing.T) {
	db := testDB(t)

	m := &crm.Message{ID: "m1", LeadPhone: "+5511", Sender: "customer", Text: "hello", DeliveryStatus: "sent", Timestamp: 1000}
	if err := db.UpsertMessage(m); err != nil {
		t.Fatal(err)
	}
	m.DeliveryStatus = "failed"
	if err := db.UpsertMessage(m); err != nil {
		t.Fatal(err)
	}

	msgs, err := db.ListMessages("+5511", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].DeliveryStatus != "failed" {
		t.Errorf("delivery status = %q, want failed", msgs[0].DeliveryStatus)
	}
}

func TestListMessagesKeysetPagination(t *testing.T) {
	db := testDB(t)

	for i := int64(1); i <= 5; i++ {
		if err := db.UpsertMessage(&crm.Message{
			ID: string(rune('a' + i)), LeadPhone: "+5511", Text: "msg", Timestamp: i * 100,
		}); err != nil {
			t.Fatal(err)
		}
	}

	page, err := db.ListMessages("+5511", 400, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 3 {
		t.Fatalf("got %d messages before ts 400, want 3", len(page))
	}
	if page[0].Timestamp != 300 {
		t.Errorf("first timestamp = %d, want 300 (newest first)", page[0].Timestamp)
	}
}

func TestSearchMessages(t *testing.T) {
	db := testDB(t)

	msgs := []crm.Message{
		{ID: "m1", LeadPhone: "+1", Text: "let's schedule the demo tomorrow", Timestamp: 100},
		{ID: "m2", LeadPhone: "+2", Text: "pricing question", Timestamp: 200},
	}
	if err := db.BulkUpsertMessages(msgs); err != nil {
		t.Fatal(err)
	}

	results, err := db.SearchMessages("demo", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Message.ID != "m1" {
		t.Errorf("got message %q, want m1", results[0].Message.ID)
	}
	if results[0].Snippet == "" {
		t.Error("expected a non-empty snippet")
	}
}

func TestActionOutboxLifecycle(t *testing.T) {
	db := testDB(t)

	if err := db.QueueAction("act-1", "whatsapp.send", []byte(`{"phone":"+5511"}`)); err != nil {
		t.Fatal(err)
	}

	pending, err := db.PendingActions()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Kind != "whatsapp.send" {
		t.Fatalf("pending = %+v, want one whatsapp.send", pending)
	}

	if err := db.MarkActionSending("act-1"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkActionSent("act-1", "srv-9"); err != nil {
		t.Fatal(err)
	}

	pending, err = db.PendingActions()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after sent = %d, want 0", len(pending))
	}

	a, err := db.GetAction("act-1")
	if err != nil {
		t.Fatal(err)
	}
	if a == nil || a.Status != "sent" || a.ServerID != "srv-9" {
		t.Errorf("action = %+v, want sent with server id srv-9", a)
	}
}

func TestActionFailureKeepsError(t *testing.T) {
	db := testDB(t)

	if err := db.QueueAction("act-2", "call.initiate", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkActionFailed("act-2", "line busy"); err != nil {
		t.Fatal(err)
	}

	a, err := db.GetAction("act-2")
	if err != nil {
		t.Fatal(err)
	}
	if a == nil || a.Status != "failed" || a.ErrorMessage != "line busy" {
		t.Errorf("action = %+v, want failed with error", a)
	}
}

func TestContactLastContactedRoundTrip(t *testing.T) {
	db := testDB(t)

	when := time.UnixMilli(1719310000000)
	if err := db.UpsertContact(&crm.Contact{ID: "c9", Name: "Rui", LastContactedAt: &when}); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetContact("c9")
	if err != nil {
		t.Fatal(err)
	}
	if got.LastContactedAt == nil || got.LastContactedAt.UnixMilli() != when.UnixMilli() {
		t.Errorf("last contacted = %v, want %v", got.LastContactedAt, when)
	}
}
