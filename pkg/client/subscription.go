package client

import (
	"context"
	"sync"

	"teenpatti-client/pkg/ledger"
)

// eventRelay subscribes to every ledger notification kind for one game and
// funnels each into a single onChange call. It never interprets event
// payloads; every notification is one coarse "something changed" trigger.
type eventRelay struct {
	mtx      sync.Mutex
	sub      ledger.Subscription
	closed   bool
	onChange func(ledger.Event)
}

// newEventRelay registers for game events and invokes onChange once per
// received notification.
func newEventRelay(ctx context.Context, gw ledger.Gateway, gameID ledger.GameID,
	onChange func(ledger.Event)) (*eventRelay, error) {

	r := &eventRelay{onChange: onChange}

	sub, err := gw.SubscribeGameEvents(ctx, gameID, r.relay)
	if err != nil {
		return nil, err
	}

	r.mtx.Lock()
	r.sub = sub
	closed := r.closed
	r.mtx.Unlock()

	// Unsubscribe raced the registration; drop the gateway side too.
	if closed {
		sub.Unsubscribe()
	}

	return r, nil
}

// relay holds the mutex across the onChange call, so Unsubscribe cannot
// return while a delivery is still running.
func (r *eventRelay) relay(ev ledger.Event) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.closed {
		return
	}
	r.onChange(ev)
}

// Unsubscribe tears the relay down. It is idempotent, and once it returns no
// further onChange call will be made.
func (r *eventRelay) Unsubscribe() error {
	r.mtx.Lock()
	if r.closed {
		r.mtx.Unlock()
		return nil
	}
	r.closed = true
	sub := r.sub
	r.sub = nil
	r.mtx.Unlock()

	if sub != nil {
		return sub.Unsubscribe()
	}
	return nil
}
