package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("conn.", 10)
	defer unsub()

	b.Emit(KindStatusChanged, "test")

	select {
	case evt := <-ch:
		if evt.Kind != KindStatusChanged {
			t.Errorf("got kind %q, want %q", evt.Kind, KindStatusChanged)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("action.", 10)
	defer unsub()

	b.Emit(KindStatusChanged, nil)
	b.Emit(KindActionSent, nil)

	select {
	case evt := <-ch:
		if evt.Kind != KindActionSent {
			t.Errorf("got kind %q, want %q", evt.Kind, KindActionSent)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// Ensure the status event was not delivered.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected: no more events.
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("conn.", 10)
	unsub()

	b.Emit(KindStatusChanged, nil)

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected.
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("crm.", 1)
	defer unsub()

	// Fill buffer.
	b.Emit(KindContactBatch, nil)
	// This should be dropped (non-blocking).
	b.Emit(KindLeadBatch, nil)

	evt := <-ch
	if evt.Kind != KindContactBatch {
		t.Errorf("got %q, want %q", evt.Kind, KindContactBatch)
	}
}
