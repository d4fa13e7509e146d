package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/decred/dcrd/dcrutil/v4"

	"teenpatti-client/pkg/ledger"
)

// Following are the notification types. Add new types at the bottom of this
// list, then add a notifyX() to NotificationManager and initialize a new
// container in NewNotificationManager().

const onGameCreatedNtfnType = "onGameCreated"

// OnGameCreatedNtfn is the handler for game creation notifications.
type OnGameCreatedNtfn func(ledger.GameID, string, time.Time)

func (_ OnGameCreatedNtfn) typ() string { return onGameCreatedNtfnType }

const onPlayerJoinedNtfnType = "onPlayerJoined"

// OnPlayerJoinedNtfn is the handler for player joined notifications.
type OnPlayerJoinedNtfn func(ledger.GameID, string, time.Time)

func (_ OnPlayerJoinedNtfn) typ() string { return onPlayerJoinedNtfnType }

const onBetPlacedNtfnType = "onBetPlaced"

// OnBetPlacedNtfn is the handler for bet placed notifications.
type OnBetPlacedNtfn func(ledger.GameID, string, dcrutil.Amount, time.Time)

func (_ OnBetPlacedNtfn) typ() string { return onBetPlacedNtfnType }

const onPlayerFoldedNtfnType = "onPlayerFolded"

// OnPlayerFoldedNtfn is the handler for player folded notifications.
type OnPlayerFoldedNtfn func(ledger.GameID, string, time.Time)

func (_ OnPlayerFoldedNtfn) typ() string { return onPlayerFoldedNtfnType }

const onGameEndedNtfnType = "onGameEnded"

// OnGameEndedNtfn is the handler for game ended notifications. The winner
// identity may be the zero identity when the ledger has not resolved one.
type OnGameEndedNtfn func(ledger.GameID, string, dcrutil.Amount, time.Time)

func (_ OnGameEndedNtfn) typ() string { return onGameEndedNtfnType }

const onCardsDealtNtfnType = "onCardsDealt"

// OnCardsDealtNtfn is the handler for cards dealt notifications.
type OnCardsDealtNtfn func(ledger.GameID, time.Time)

func (_ OnCardsDealtNtfn) typ() string { return onCardsDealtNtfnType }

const onSnapshotUpdatedNtfnType = "onSnapshotUpdated"

// OnSnapshotUpdatedNtfn is the handler invoked after every successful sync
// with the freshly published snapshot.
type OnSnapshotUpdatedNtfn func(*GameSnapshot, time.Time)

func (_ OnSnapshotUpdatedNtfn) typ() string { return onSnapshotUpdatedNtfnType }

// The following is used only in tests.

const onTestNtfnType = "testNtfnType"

type onTestNtfn func()

func (_ onTestNtfn) typ() string { return onTestNtfnType }

// Following is the generic notification code.

type NotificationRegistration struct {
	unreg func() bool
}

func (reg NotificationRegistration) Unregister() bool {
	return reg.unreg()
}

type NotificationHandler interface {
	typ() string
}

type handler[T any] struct {
	handler T
	async   bool
}

type handlersFor[T any] struct {
	mtx      sync.Mutex
	next     uint
	handlers map[uint]handler[T]
}

func (hn *handlersFor[T]) register(h T, async bool) NotificationRegistration {
	var id uint

	hn.mtx.Lock()
	id, hn.next = hn.next, hn.next+1
	if hn.handlers == nil {
		hn.handlers = make(map[uint]handler[T])
	}
	hn.handlers[id] = handler[T]{handler: h, async: async}
	registered := true
	hn.mtx.Unlock()

	return NotificationRegistration{
		unreg: func() bool {
			hn.mtx.Lock()
			res := registered
			if registered {
				delete(hn.handlers, id)
				registered = false
			}
			hn.mtx.Unlock()
			return res
		},
	}
}

func (hn *handlersFor[T]) visit(f func(T)) {
	hn.mtx.Lock()
	for _, h := range hn.handlers {
		if h.async {
			go f(h.handler)
		} else {
			f(h.handler)
		}
	}
	hn.mtx.Unlock()
}

func (hn *handlersFor[T]) Register(v interface{}, async bool) NotificationRegistration {
	if h, ok := v.(T); !ok {
		panic("wrong type")
	} else {
		return hn.register(h, async)
	}
}

func (hn *handlersFor[T]) AnyRegistered() bool {
	hn.mtx.Lock()
	res := len(hn.handlers) > 0
	hn.mtx.Unlock()
	return res
}

type handlersRegistry interface {
	Register(v interface{}, async bool) NotificationRegistration
	AnyRegistered() bool
}

// NotificationManager fans ledger events and sync results out to registered
// handlers. It never interprets payloads; it only re-broadcasts.
type NotificationManager struct {
	handlers map[string]handlersRegistry
}

func (nmgr *NotificationManager) register(handler NotificationHandler, async bool) NotificationRegistration {
	handlers := nmgr.handlers[handler.typ()]
	if handlers == nil {
		panic(fmt.Sprintf("forgot to init the handler type %T "+
			"in NewNotificationManager", handler))
	}

	return handlers.Register(handler, async)
}

// Register registers a callback notification function that is called
// asynchronously to the event (i.e. in a separate goroutine).
func (nmgr *NotificationManager) Register(handler NotificationHandler) NotificationRegistration {
	return nmgr.register(handler, true)
}

// RegisterSync registers a callback notification function that is called
// synchronously to the event. This callback SHOULD return as soon as
// possible, otherwise the client might hang.
//
// Synchronous callbacks are mostly intended for tests and when external
// callers need to ensure proper order of multiple sequential events.
func (nmgr *NotificationManager) RegisterSync(handler NotificationHandler) NotificationRegistration {
	return nmgr.register(handler, false)
}

// AnyRegistered returns true if there are any handlers registered for the
// given handler type.
func (nmgr *NotificationManager) AnyRegistered(handler NotificationHandler) bool {
	return nmgr.handlers[handler.typ()].AnyRegistered()
}

// Following are the notifyX() calls (one for each type of notification).

func (nmgr *NotificationManager) notifyTest() {
	nmgr.handlers[onTestNtfnType].(*handlersFor[onTestNtfn]).
		visit(func(h onTestNtfn) { h() })
}

func (nmgr *NotificationManager) notifyGameCreated(id ledger.GameID, creator string, ts time.Time) {
	nmgr.handlers[onGameCreatedNtfnType].(*handlersFor[OnGameCreatedNtfn]).
		visit(func(h OnGameCreatedNtfn) { h(id, creator, ts) })
}

func (nmgr *NotificationManager) notifyPlayerJoined(id ledger.GameID, player string, ts time.Time) {
	nmgr.handlers[onPlayerJoinedNtfnType].(*handlersFor[OnPlayerJoinedNtfn]).
		visit(func(h OnPlayerJoinedNtfn) { h(id, player, ts) })
}

func (nmgr *NotificationManager) notifyBetPlaced(id ledger.GameID, player string, amount dcrutil.Amount, ts time.Time) {
	nmgr.handlers[onBetPlacedNtfnType].(*handlersFor[OnBetPlacedNtfn]).
		visit(func(h OnBetPlacedNtfn) { h(id, player, amount, ts) })
}

func (nmgr *NotificationManager) notifyPlayerFolded(id ledger.GameID, player string, ts time.Time) {
	nmgr.handlers[onPlayerFoldedNtfnType].(*handlersFor[OnPlayerFoldedNtfn]).
		visit(func(h OnPlayerFoldedNtfn) { h(id, player, ts) })
}

func (nmgr *NotificationManager) notifyGameEnded(id ledger.GameID, winner string, pot dcrutil.Amount, ts time.Time) {
	nmgr.handlers[onGameEndedNtfnType].(*handlersFor[OnGameEndedNtfn]).
		visit(func(h OnGameEndedNtfn) { h(id, winner, pot, ts) })
}

func (nmgr *NotificationManager) notifyCardsDealt(id ledger.GameID, ts time.Time) {
	nmgr.handlers[onCardsDealtNtfnType].(*handlersFor[OnCardsDealtNtfn]).
		visit(func(h OnCardsDealtNtfn) { h(id, ts) })
}

func (nmgr *NotificationManager) notifySnapshotUpdated(snap *GameSnapshot, ts time.Time) {
	nmgr.handlers[onSnapshotUpdatedNtfnType].(*handlersFor[OnSnapshotUpdatedNtfn]).
		visit(func(h OnSnapshotUpdatedNtfn) { h(snap, ts) })
}

// NewNotificationManager creates a notification manager with every handler
// container initialized.
func NewNotificationManager() *NotificationManager {
	return &NotificationManager{
		handlers: map[string]handlersRegistry{
			onTestNtfnType:            &handlersFor[onTestNtfn]{},
			onGameCreatedNtfnType:     &handlersFor[OnGameCreatedNtfn]{},
			onPlayerJoinedNtfnType:    &handlersFor[OnPlayerJoinedNtfn]{},
			onBetPlacedNtfnType:       &handlersFor[OnBetPlacedNtfn]{},
			onPlayerFoldedNtfnType:    &handlersFor[OnPlayerFoldedNtfn]{},
			onGameEndedNtfnType:       &handlersFor[OnGameEndedNtfn]{},
			onCardsDealtNtfnType:      &handlersFor[OnCardsDealtNtfn]{},
			onSnapshotUpdatedNtfnType: &handlersFor[OnSnapshotUpdatedNtfn]{},
		},
	}
}
