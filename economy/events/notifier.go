package events

import (
	"log/slog"
	"sync"
)

// Notifier owns the observer lists for add/subtract/set/initialized
// notifications. Registration appends, dispatch iterates in order, and each
// listener runs behind a recover so one panic cannot starve the rest.
//
// Dispatch is synchronous on the committing caller by default; hosts that
// cannot bound listener execution time should wrap the notifier with
// NewAsyncNotifier instead.
type Notifier struct {
	mu          sync.RWMutex
	add         []ActionListener
	subtract    []ActionListener
	set         []ActionListener
	initialized []InitializedListener
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// OnAdd registers a listener for add mutations.
func (n *Notifier) OnAdd(l ActionListener) {
	n.mu.Lock()
	n.add = append(n.add, l)
	n.mu.Unlock()
}

// OnSubtract registers a listener for subtract mutations.
func (n *Notifier) OnSubtract(l ActionListener) {
	n.mu.Lock()
	n.subtract = append(n.subtract, l)
	n.mu.Unlock()
}

// OnSet registers a listener for set mutations.
func (n *Notifier) OnSet(l ActionListener) {
	n.mu.Lock()
	n.set = append(n.set, l)
	n.mu.Unlock()
}

// OnAny registers a listener for every mutation kind.
func (n *Notifier) OnAny(l ActionListener) {
	n.mu.Lock()
	n.add = append(n.add, l)
	n.subtract = append(n.subtract, l)
	n.set = append(n.set, l)
	n.mu.Unlock()
}

// OnInitialized registers a listener for the provider bootstrap event.
func (n *Notifier) OnInitialized(l InitializedListener) {
	n.mu.Lock()
	n.initialized = append(n.initialized, l)
	n.mu.Unlock()
}

// FireAction dispatches a committed mutation to the listeners for its action.
func (n *Notifier) FireAction(action Action, data ActionData) {
	n.mu.RLock()
	var listeners []ActionListener
	switch action {
	case ActionAdd:
		listeners = n.add
	case ActionSubtract:
		listeners = n.subtract
	case ActionSet:
		listeners = n.set
	}
	n.mu.RUnlock()

	for _, l := range listeners {
		invoke(l, data)
	}
}

// FireInitialized dispatches the bootstrap notification.
func (n *Notifier) FireInitialized(provider any) {
	n.mu.RLock()
	listeners := n.initialized
	n.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer recoverListener()
			l(provider)
		}()
	}
}

func invoke(l ActionListener, data ActionData) {
	defer recoverListener()
	l(data)
}

func recoverListener() {
	if r := recover(); r != nil {
		slog.Error("Economy listener panicked",
			slog.String("type", "error"),
			slog.Any("panic", r))
	}
}
