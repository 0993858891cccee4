package checkout

import (
	pkgerrors "github.com/maisonvelaire/storefront-backend/pkg/errors"
)

// State tracks a checkout attempt through the order/gateway/verification
// sequence. Terminal states are never left; a shopper retries by starting a
// fresh attempt.
type State string

const (
	StatePending            State = "pending"
	StateOrderCreated       State = "order_created"
	StateGatewayCreated     State = "gateway_created"
	StateAwaitingPayment    State = "awaiting_payment"
	StateVerifying          State = "verifying"
	StateComplete           State = "complete"
	StateCancelled          State = "cancelled"
	StateFailed             State = "failed"
	StateVerificationFailed State = "verification_failed"
)

var transitions = map[State][]State{
	StatePending:         {StateOrderCreated, StateFailed},
	StateOrderCreated:    {StateGatewayCreated, StateFailed},
	StateGatewayCreated:  {StateAwaitingPayment, StateFailed},
	StateAwaitingPayment: {StateVerifying, StateCancelled, StateFailed},
	StateVerifying:       {StateComplete, StateVerificationFailed},
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

func (s State) canTransition(next State) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

func (a *Attempt) transition(next State) error {
	if !a.State.canTransition(next) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			"checkout attempt cannot move from "+string(a.State)+" to "+string(next))
	}
	a.State = next
	return nil
}
