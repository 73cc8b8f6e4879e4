// Package connectivity decides whether the client is online. A Prober polls
// the link layer and the venue service and publishes Status changes; a
// ModeSwitch turns them into the offline-mode flag and fires a
// reconciliation on every offline-to-online transition.
package connectivity

import "context"

// Status is one connectivity observation.
type Status struct {
	IsConnected         bool
	IsInternetReachable bool
}

// Online requires both a network link and a reachable server.
func (s Status) Online() bool {
	return s.IsConnected && s.IsInternetReachable
}

type Handler func(ctx context.Context, st Status)

// Oracle reports connectivity. Subscribe returns a function that removes
// the handler.
type Oracle interface {
	Subscribe(h Handler) (unsubscribe func())
	FetchCurrent(ctx context.Context) (Status, error)
}
