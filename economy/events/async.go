package events

import (
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// AsyncNotifier decouples listener execution from the committing caller: the
// mutation path enqueues and returns, a single worker drains the queue in
// order. Per-notifier ordering is preserved because there is exactly one
// worker; a slow observer delays later notifications, never mutations.
type AsyncNotifier struct {
	*Notifier
	queue chan queued
	g     errgroup.Group
}

type queued struct {
	action Action
	data   ActionData
}

// NewAsyncNotifier starts the drain worker with the given queue depth. Close
// must be called to flush pending notifications on shutdown.
func NewAsyncNotifier(buffer int) *AsyncNotifier {
	if buffer <= 0 {
		buffer = 256
	}
	n := &AsyncNotifier{
		Notifier: NewNotifier(),
		queue:    make(chan queued, buffer),
	}
	n.g.Go(func() error {
		for q := range n.queue {
			n.Notifier.FireAction(q.action, q.data)
		}
		return nil
	})
	return n
}

// FireAction enqueues the notification. A full queue applies backpressure to
// the committing caller instead of dropping or reordering events.
func (n *AsyncNotifier) FireAction(action Action, data ActionData) {
	select {
	case n.queue <- queued{action: action, data: data}:
	default:
		slog.Warn("Economy event queue full, waiting for drain",
			slog.String("type", "sys"),
			slog.String("action", action.String()))
		n.queue <- queued{action: action, data: data}
	}
}

// Close stops accepting notifications and waits for the queue to drain.
func (n *AsyncNotifier) Close() error {
	close(n.queue)
	return n.g.Wait()
}
