package client

import (
	"context"
	"sync"
	"time"

	"github.com/decred/dcrd/dcrutil/v4"

	"teenpatti-client/pkg/cards"
	"teenpatti-client/pkg/ledger"
)

// gameSession owns the LocalSessionState for one game: the snapshot mirror,
// the private cards, the pending action and the refresh machinery. Exactly
// one session is active per client; it is destroyed when the player leaves
// the game.
type gameSession struct {
	gameID    ledger.GameID
	historyID string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// refreshCh is the single-consumer refresh queue. Capacity one: a
	// trigger that fires while a refresh is already queued or in flight
	// coalesces into the queued one instead of launching an overlapping
	// fetch.
	refreshCh chan struct{}

	relay *eventRelay

	// syncMu serializes sync passes so the summary and roster reads of
	// one pass are never interleaved with another pass.
	syncMu sync.Mutex

	mtx            sync.RWMutex
	snapshot       *GameSnapshot
	myCards        []cards.Card
	cardsRevealed  bool
	pending        PendingAction
	betAmount      dcrutil.Amount
	resultRecorded bool
	torndown       bool
}

func (s *gameSession) currentSnapshot() *GameSnapshot {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.snapshot
}

func (s *gameSession) currentCards() []cards.Card {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.myCards == nil {
		return nil
	}
	hand := make([]cards.Card, len(s.myCards))
	copy(hand, s.myCards)
	return hand
}

// requestRefresh enqueues one refresh. Non-blocking: if a refresh is already
// queued the trigger coalesces into it.
func (s *gameSession) requestRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

// startSession begins a session for the given game: event subscription,
// initial sync, periodic refresh. Callers hold no client lock.
func (tc *TeenPattiClient) startSession(gameID ledger.GameID) error {
	tc.Lock()
	if tc.session != nil {
		tc.Unlock()
		return ErrSessionActive
	}

	ctx, cancel := context.WithCancel(tc.ctx)
	s := &gameSession{
		gameID:    gameID,
		ctx:       ctx,
		cancel:    cancel,
		refreshCh: make(chan struct{}, 1),
	}
	tc.session = s
	tc.Unlock()

	relay, err := newEventRelay(ctx, tc.gateway, gameID, func(ev ledger.Event) {
		tc.rebroadcast(ev)
		s.requestRefresh()
	})
	if err != nil {
		tc.teardownSession(s)
		return err
	}
	s.relay = relay

	if tc.journal != nil {
		historyID, err := tc.journal.StartSession(gameID, tc.ID, tc.clock.Now())
		if err != nil {
			tc.log.Warnf("History session not recorded: %v", err)
		} else {
			s.historyID = historyID
		}
	}

	// Initial load before the background loop takes over, so callers see
	// state as soon as the session starts.
	if _, err := tc.syncSession(ctx, s); err != nil {
		tc.teardownSession(s)
		return err
	}

	s.wg.Add(1)
	go tc.runSession(s)

	tc.log.Infof("Started session for game %d", gameID)
	return nil
}

// runSession is the single consumer of the refresh queue. The periodic
// timer, push notifications and post-action refreshes all enqueue here; at
// most one sync is ever in flight for the session's game.
func (tc *TeenPattiClient) runSession(s *gameSession) {
	defer s.wg.Done()

	ticker := tc.clock.NewTicker(time.Duration(tc.cfg.SyncInterval))
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.Chan():
			s.requestRefresh()
		case <-s.refreshCh:
			if _, err := tc.syncSession(s.ctx, s); err != nil {
				// Transient by design: the next periodic or
				// push-triggered refresh retries.
				tc.log.Warnf("Refresh of game %d failed: %v", s.gameID, err)
			}
		}
	}
}

// rebroadcast fans a ledger event out to the notification manager.
func (tc *TeenPattiClient) rebroadcast(ev ledger.Event) {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = tc.clock.Now()
	}

	switch ev.Type {
	case ledger.EventGameCreated:
		tc.ntfns.notifyGameCreated(ev.GameID, ev.Player, ts)
	case ledger.EventPlayerJoined:
		tc.ntfns.notifyPlayerJoined(ev.GameID, ev.Player, ts)
	case ledger.EventBetPlaced:
		tc.ntfns.notifyBetPlaced(ev.GameID, ev.Player, ev.Amount, ts)
	case ledger.EventPlayerFolded:
		tc.ntfns.notifyPlayerFolded(ev.GameID, ev.Player, ts)
	case ledger.EventGameEnded:
		tc.ntfns.notifyGameEnded(ev.GameID, ev.Winner, ev.Pot, ts)
	case ledger.EventCardsDealt:
		tc.ntfns.notifyCardsDealt(ev.GameID, ts)
	default:
		tc.log.Debugf("Unknown ledger event type %q", ev.Type)
	}
}

// teardownSession stops the timer and subscription and discards the session
// state. An in-flight sync or action may still complete, but its result is
// dropped: syncSession and the dispatcher re-check torndown before touching
// state.
func (tc *TeenPattiClient) teardownSession(s *gameSession) {
	s.mtx.Lock()
	s.torndown = true
	s.mtx.Unlock()

	s.cancel()
	if s.relay != nil {
		if err := s.relay.Unsubscribe(); err != nil {
			tc.log.Warnf("Unsubscribe for game %d: %v", s.gameID, err)
		}
	}
	s.wg.Wait()

	if tc.journal != nil && s.historyID != "" {
		if err := tc.journal.EndSession(s.historyID, tc.clock.Now()); err != nil {
			tc.log.Warnf("History session not closed: %v", err)
		}
	}

	tc.Lock()
	if tc.session == s {
		tc.session = nil
	}
	tc.Unlock()
}
