// Package events carries the mutation notifications fired by the ledger.
// Listener registration is append-only for the process lifetime and dispatch
// runs in registration order; a misbehaving listener never blocks the others
// or rolls back the mutation, which is committed before any listener runs.
package events

import (
	"github.com/google/uuid"
	"github.com/levely/playereconomy/economy"
	"github.com/shopspring/decimal"
)

// Action is the kind of ledger mutation a notification describes.
type Action int

const (
	ActionAdd Action = iota
	ActionSubtract
	ActionSet
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionSubtract:
		return "subtract"
	case ActionSet:
		return "set"
	default:
		return "unknown"
	}
}

// ActionData describes a single committed balance mutation.
//
// Balance is the post-mutation balance and Amount the signed delta: the
// amount argument for add, its negation for subtract, and new − old for set.
type ActionData struct {
	PlayerID uuid.UUID
	Economy  economy.Economy
	Balance  decimal.Decimal
	Amount   decimal.Decimal
}

// ActionListener observes committed add/subtract/set mutations.
type ActionListener func(data ActionData)

// InitializedListener observes the one-time provider bootstrap. The argument
// is the provider instance that just became queryable; it is typed as any to
// keep this package free of a dependency on the provider package.
type InitializedListener func(provider any)
