package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abarbosa/atendo/internal/bus"
	"go.uber.org/zap"
)

func startMonitor(t *testing.T) (*Machine, *bus.Bus) {
	t.Helper()
	b := bus.New()
	m := NewMachine(b)
	mon := NewMonitor(m, b, zap.NewNop())
	mon.Start(context.Background())
	t.Cleanup(mon.Stop)
	return m, b
}

// waitForState polls until the machine reaches the target or times out;
// the monitor consumes bus events on its own goroutine.
func waitForState(t *testing.T, m *Machine, target State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.Current() == target {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %s, want %s", m.Current(), target)
}

func TestFetchFailureDegradesReadyConnection(t *testing.T) {
	m, b := startMonitor(t)
	walkTo(t, m, Ready)

	b.Emit(bus.KindLoaderError, errors.New("backend down"))
	waitForState(t, m, Degraded)
}

func TestMergedBatchRecoversDegradedConnection(t *testing.T) {
	m, b := startMonitor(t)
	walkTo(t, m, Degraded)

	b.Emit(bus.KindContactBatch, nil)
	waitForState(t, m, Ready)
}

func TestFetchFailureIgnoredWhileConnecting(t *testing.T) {
	m, b := startMonitor(t)
	walkTo(t, m, Connecting)

	b.Emit(bus.KindLoaderError, errors.New("backend down"))

	// Give the monitor time to consume the event, then confirm it held.
	time.Sleep(50 * time.Millisecond)
	if m.Current() != Connecting {
		t.Errorf("state = %s, want CONNECTING", m.Current())
	}
}

func TestLoaderResetDoesNotDegrade(t *testing.T) {
	m, b := startMonitor(t)
	walkTo(t, m, Ready)

	b.Emit(bus.KindLoaderReset, "crm.contact_batch")

	time.Sleep(50 * time.Millisecond)
	if m.Current() != Ready {
		t.Errorf("state = %s, want READY", m.Current())
	}
}
