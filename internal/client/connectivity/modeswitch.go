package connectivity

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/cabinetmap/internal/logging"
)

// Reconnector is told when the client goes from offline to online.
type Reconnector interface {
	OnReconnect(ctx context.Context)
}

// ModeSwitch owns the offline-mode flag. It starts offline, so an online
// first observation also counts as a reconnect.
type ModeSwitch struct {
	reconnector Reconnector
	logger      logging.Logger

	mu      sync.RWMutex
	offline bool
}

func NewModeSwitch(r Reconnector, logger logging.Logger) *ModeSwitch {
	return &ModeSwitch{
		reconnector: r,
		logger:      logger.With("module", "mode_switch"),
		offline:     true,
	}
}

func (m *ModeSwitch) Offline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.offline
}

func (m *ModeSwitch) Online() bool {
	return !m.Offline()
}

// Mode renders the flag for display.
func (m *ModeSwitch) Mode() string {
	if m.Offline() {
		return "offline"
	}
	return "online"
}

// Observe applies one status. The reconnect callback runs synchronously
// after the flag is updated.
func (m *ModeSwitch) Observe(ctx context.Context, st Status) {
	online := st.Online()

	m.mu.Lock()
	wasOffline := m.offline
	m.offline = !online
	m.mu.Unlock()

	if wasOffline == !online {
		return
	}

	m.logger.Info(ctx, "Switched mode", "mode", m.Mode(),
		"connected", st.IsConnected, "reachable", st.IsInternetReachable)

	if wasOffline && online && m.reconnector != nil {
		m.reconnector.OnReconnect(ctx)
	}
}

// Start seeds the flag from the oracle's current status (a fetch error
// counts as offline) and subscribes to further changes. The returned
// function unsubscribes.
func (m *ModeSwitch) Start(ctx context.Context, o Oracle) func() {
	st, err := o.FetchCurrent(ctx)
	if err != nil {
		m.logger.Warn(ctx, "connectivity check failed, assuming offline", "error", err)
		st = Status{}
	}
	m.Observe(ctx, st)

	return o.Subscribe(m.Observe)
}
