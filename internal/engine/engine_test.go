package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abarbosa/atendo/internal/bus"
	"github.com/abarbosa/atendo/internal/cache"
	"github.com/abarbosa/atendo/internal/crm"
	"go.uber.org/zap"
)

func testDB(t *testing.T) *cache.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := cache.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestIngestContacts(t *testing.T) {
	db := testDB(t)
	e := New(db, bus.New(), zap.NewNop())

	contacts := []crm.Contact{
		{ID: "c1", Name: "Ana", LeadStage: "new"},
		{ID: "c2", Name: "Bruno", LeadStage: "qualified"},
	}
	if err := e.IngestContacts(contacts); err != nil {
		t.Fatal(err)
	}

	count, err := db.ContactCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestIngestContactsIdempotent(t *testing.T) {
	db := testDB(t)
	e := New(db, bus.New(), zap.NewNop())

	batch := []crm.Contact{{ID: "c1", Name: "v1"}}
	if err := e.IngestContacts(batch); err != nil {
		t.Fatal(err)
	}
	batch[0].Name = "v2"
	if err := e.IngestContacts(batch); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetContact("c1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "v2" {
		t.Errorf("got %v, want name v2", got)
	}
	count, _ := db.ContactCount()
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestIngestMessagesRefreshesLeadPreview(t *testing.T) {
	db := testDB(t)
	e := New(db, bus.New(), zap.NewNop())

	msgs := []crm.Message{
		{ID: "m1", LeadPhone: "+55", Text: "older", Timestamp: 1000},
		{ID: "m2", LeadPhone: "+55", Text: "newest", Timestamp: 2000},
	}
	if err := e.IngestMessages(msgs); err != nil {
		t.Fatal(err)
	}

	leads, err := db.ListLeads(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(leads) != 1 {
		t.Fatalf("got %d leads, want 1", len(leads))
	}
	if leads[0].LastMessage != "newest" || leads[0].LastMessageAt != 2000 {
		t.Errorf("preview = %q@%d, want newest@2000", leads[0].LastMessage, leads[0].LastMessageAt)
	}
}

func TestIngestMessagesKeepsLeadCounters(t *testing.T) {
	db := testDB(t)
	e := New(db, bus.New(), zap.NewNop())

	seed := crm.ChatLead{
		Phone:        "+55",
		Name:         "Carla",
		Platforms:    []string{"whatsapp"},
		MessageCount: 42,
		UnreadCount:  3,
	}
	if err := db.UpsertLead(&seed); err != nil {
		t.Fatal(err)
	}

	msgs := []crm.Message{{ID: "m1", LeadPhone: "+55", Text: "hello", Timestamp: 5000}}
	if err := e.IngestMessages(msgs); err != nil {
		t.Fatal(err)
	}

	leads, err := db.ListLeads(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(leads) != 1 {
		t.Fatalf("got %d leads, want 1", len(leads))
	}
	got := leads[0]
	if got.MessageCount != 42 || got.UnreadCount != 3 {
		t.Errorf("counters = %d/%d, want 42/3", got.MessageCount, got.UnreadCount)
	}
	if len(got.Platforms) != 1 || got.Platforms[0] != "whatsapp" {
		t.Errorf("platforms = %v, want [whatsapp]", got.Platforms)
	}
	if got.LastMessage != "hello" || got.LastMessageAt != 5000 {
		t.Errorf("preview = %q@%d, want hello@5000", got.LastMessage, got.LastMessageAt)
	}
}

func TestEngineConsumesBusEvents(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	e := New(db, b, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.Start(ctx)
	defer e.Stop()

	b.Emit(bus.KindContactBatch, []crm.Contact{{ID: "c1", Name: "Ana"}})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		count, err := db.ContactCount()
		if err != nil {
			t.Fatal(err)
		}
		if count == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("contact batch was not ingested from the bus")
}

func TestEngineIgnoresWrongPayloadType(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	e := New(db, b, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.Start(ctx)
	defer e.Stop()

	b.Emit(bus.KindContactBatch, "not a batch")
	time.Sleep(50 * time.Millisecond)

	count, err := db.ContactCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
