package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/logging"
	"github.com/dmitrijs2005/cabinetmap/internal/netx"
)

const pingTimeout = 3 * time.Second

// Pinger checks that the venue service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober is a polling Oracle. Handlers are invoked from the Run goroutine,
// only when the observed status differs from the previous one.
type Prober struct {
	pinger   Pinger
	interval time.Duration
	linkUp   func() bool
	logger   logging.Logger

	mu       sync.Mutex
	handlers map[int]Handler
	nextID   int
	last     *Status
}

func NewProber(p Pinger, interval time.Duration, logger logging.Logger) *Prober {
	return &Prober{
		pinger:   p,
		interval: interval,
		linkUp:   netx.HasActiveInterface,
		logger:   logger.With("module", "connectivity"),
		handlers: make(map[int]Handler),
	}
}

func (p *Prober) Subscribe(h Handler) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.handlers[id] = h

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.handlers, id)
	}
}

// FetchCurrent probes once. The server is only pinged when a link is up.
func (p *Prober) FetchCurrent(ctx context.Context) (Status, error) {
	st := Status{IsConnected: p.linkUp()}
	if !st.IsConnected {
		return st, nil
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := p.pinger.Ping(ctx); err != nil {
		p.logger.Debug(ctx, "server ping failed", "error", err)
		return st, nil
	}
	st.IsInternetReachable = true
	return st, nil
}

// Run polls every interval until ctx is cancelled.
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Prober) probe(ctx context.Context) {
	st, err := p.FetchCurrent(ctx)
	if err != nil {
		return
	}

	p.mu.Lock()
	if p.last != nil && *p.last == st {
		p.mu.Unlock()
		return
	}
	p.last = &st
	handlers := make([]Handler, 0, len(p.handlers))
	for _, h := range p.handlers {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(ctx, st)
	}
}
