package status

import (
	"context"

	"github.com/abarbosa/atendo/internal/bus"
	"go.uber.org/zap"
)

// Monitor drives Ready/Degraded flapping after the startup probe has
// settled. A loader fetch failure drops the machine to Degraded; the
// next successfully merged batch lifts it back to Ready. Transitions
// the table rejects (e.g. while still Connecting) are silently skipped.
type Monitor struct {
	machine *Machine
	bus     *bus.Bus
	logger  *zap.Logger
	cancel  context.CancelFunc
}

// NewMonitor creates a monitor bound to the machine it steers.
func NewMonitor(machine *Machine, b *bus.Bus, logger *zap.Logger) *Monitor {
	return &Monitor{machine: machine, bus: b, logger: logger}
}

// Start subscribes to loader and batch events on the bus.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	loaderCh, unsubLoader := m.bus.Subscribe("loader.", 64)
	batchCh, unsubBatch := m.bus.Subscribe("crm.", 64)

	go func() {
		defer unsubLoader()
		defer unsubBatch()
		for {
			select {
			case evt := <-loaderCh:
				m.handleLoader(evt)
			case <-batchCh:
				m.handleBatch()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the monitor.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Monitor) handleLoader(evt bus.Event) {
	if evt.Kind != bus.KindLoaderError {
		return
	}
	if m.machine.Current() != Ready {
		return
	}
	if err := m.machine.Transition(Degraded); err == nil {
		m.logger.Warn("list fetch failed, connection degraded")
	}
}

func (m *Monitor) handleBatch() {
	if m.machine.Current() != Degraded {
		return
	}
	if err := m.machine.Transition(Ready); err == nil {
		m.logger.Info("batch merged, connection recovered")
	}
}
