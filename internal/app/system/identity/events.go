package identity

import (
	"context"
	"sync"

	"github.com/dalemusser/whoseturn/internal/domain/models"
	"go.uber.org/zap"
)

// EventKind is a session lifecycle change.
type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// Event reports that Identity signed in or out.
type Event struct {
	Kind     EventKind
	Identity models.UserIdentity
}

// Listener reacts to an event. Errors are logged by the Hub.
type Listener func(ctx context.Context, ev Event) error

// Hub fans session events out to listeners. Publish runs listeners inline,
// in subscription order, so their effects are visible to the request that
// triggered them.
type Hub struct {
	mu        sync.RWMutex
	listeners map[EventKind][]Listener
	log       *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{listeners: map[EventKind][]Listener{}, log: logger}
}

// Subscribe registers fn for events of kind.
func (h *Hub) Subscribe(kind EventKind, fn Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners[kind] = append(h.listeners[kind], fn)
}

// Publish delivers ev to every listener for its kind.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	ls := append([]Listener(nil), h.listeners[ev.Kind]...)
	h.mu.RUnlock()

	for _, fn := range ls {
		if err := fn(ctx, ev); err != nil {
			h.log.Warn("session event listener failed",
				zap.String("event", string(ev.Kind)),
				zap.String("user_id", ev.Identity.ID),
				zap.Error(err))
		}
	}
}
