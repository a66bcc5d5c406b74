package model

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abarbosa/atendo/internal/bus"
	"github.com/abarbosa/atendo/internal/cache"
	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/loader"
)

func testDB(t *testing.T) *cache.DB {
	t.Helper()
	db, err := cache.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	_, err = db.Migrate()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testViewModel wires a view model against an unreachable backend so cache
// fallback paths are exercised.
func testViewModel(t *testing.T, db *cache.DB) *ViewModel {
	t.Helper()
	client := crm.New("http://127.0.0.1:1", "test-token", zap.NewNop())
	contacts := loader.New(loader.Config[crm.Contact]{
		Fetch: func(context.Context, string, int, int) (loader.Batch[crm.Contact], error) {
			return loader.Batch[crm.Contact]{}, context.DeadlineExceeded
		},
		Key: func(c crm.Contact) string { return c.ID },
	})
	leads := loader.New(loader.Config[crm.ChatLead]{
		Fetch: func(context.Context, string, int, int) (loader.Batch[crm.ChatLead], error) {
			return loader.Batch[crm.ChatLead]{}, context.DeadlineExceeded
		},
		Key: func(l crm.ChatLead) string { return l.Phone },
	})
	return NewViewModel(client, db, bus.New(), contacts, leads, zap.NewNop())
}

func TestOpenThreadFallsBackToCachedMessages(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.BulkUpsertMessages([]crm.Message{
		{ID: "m1", LeadPhone: "+5511999", Sender: "agent", Text: "first", Timestamp: 1000},
		{ID: "m2", LeadPhone: "+5511999", Sender: "lead", Text: "second", Timestamp: 2000},
		{ID: "other", LeadPhone: "+5511000", Sender: "lead", Text: "unrelated", Timestamp: 3000},
	}))
	vm := testViewModel(t, db)

	err := vm.OpenThread(context.Background(), crm.ChatLead{Phone: "+5511999", Name: "Carla"})
	require.NoError(t, err, "cached history must open the thread when the backend is down")

	msgs, reasons := vm.Messages()
	require.Len(t, msgs, 2)
	assert.Empty(t, reasons)
	assert.Equal(t, "first", msgs[0].Text, "thread must render oldest first")
	assert.Equal(t, "second", msgs[1].Text)

	flash := vm.Flash.GetMessage()
	require.NotNil(t, flash)
	assert.Contains(t, flash.Text, "cached")
}

func TestOpenThreadEmptyCacheKeepsFetchError(t *testing.T) {
	db := testDB(t)
	vm := testViewModel(t, db)

	err := vm.OpenThread(context.Background(), crm.ChatLead{Phone: "+5511999"})
	assert.Error(t, err, "with nothing cached the fetch error must surface")
}

func TestSeedContactsFromCacheAfterFailedInitial(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.BulkUpsertContacts([]crm.Contact{
		{ID: "c1", Name: "Ana"},
		{ID: "c2", Name: "Bruno"},
	}))
	vm := testViewModel(t, db)

	require.Error(t, vm.Contacts.LoadInitial(context.Background()))
	assert.Equal(t, 2, vm.SeedContactsFromCache())
	assert.Equal(t, 2, vm.Contacts.State().Count)
}
