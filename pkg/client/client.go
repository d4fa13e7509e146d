// Package client implements the teen patti playing client: a local mirror of
// one game's ledger state, kept consistent by a single-consumer refresh
// engine, plus the action dispatcher that submits commands against the
// ledger and reconciles their outcomes.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/slog"
	"github.com/jonboulle/clockwork"

	"teenpatti-client/pkg/cards"
	"teenpatti-client/pkg/history"
	"teenpatti-client/pkg/ledger"
	"teenpatti-client/pkg/logging"
)

var (
	// ErrNoSession is returned by game operations when no game session is
	// active.
	ErrNoSession = errors.New("not currently in a game")

	// ErrSessionActive is returned when starting a session while another
	// one is still running. Leave the current game first.
	ErrSessionActive = errors.New("already in a game")
)

// TeenPattiClient plays one game at a time against a remote ledger. All
// remote reads funnel through the session's refresh engine; all writes go
// through the action dispatcher.
type TeenPattiClient struct {
	sync.RWMutex
	ID string

	cfg        *AppConfig
	gateway    ledger.Gateway
	ntfns      *NotificationManager
	log        slog.Logger
	logBackend *logging.LogBackend
	clock      clockwork.Clock
	journal    *history.Store

	session *gameSession

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// NewTeenPattiClient creates a new client speaking to the ledger through gw.
// The gateway is externally owned: the client never manages its connection
// lifecycle.
func NewTeenPattiClient(ctx context.Context, cfg *AppConfig, gw ledger.Gateway) (*TeenPattiClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg is nil")
	}
	if gw == nil {
		return nil, fmt.Errorf("ledger gateway cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:    cfg.LogFile,
		DebugLevel: cfg.DebugLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("create log backend: %w", err)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = Duration(defaultSyncInterval)
	}

	var journal *history.Store
	if cfg.HistoryDB != "" {
		journal, err = history.NewStore(cfg.HistoryDB)
		if err != nil {
			logBackend.Close()
			return nil, fmt.Errorf("open history journal: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)

	tc := &TeenPattiClient{
		ID:         cfg.Identity,
		cfg:        cfg,
		gateway:    gw,
		ntfns:      cfg.Notifications,
		log:        logBackend.Logger("TPCL"),
		logBackend: logBackend,
		clock:      clock,
		journal:    journal,
		ctx:        ctx,
		cancelFunc: cancel,
	}

	tc.log.Debugf("Using client identity: %s", tc.ID)

	return tc, nil
}

// CurrentGameID returns the id of the active game session, or false when no
// session is active.
func (tc *TeenPattiClient) CurrentGameID() (ledger.GameID, bool) {
	tc.RLock()
	defer tc.RUnlock()
	if tc.session == nil {
		return 0, false
	}
	return tc.session.gameID, true
}

// Snapshot returns the latest synchronized snapshot, or nil when no sync has
// completed yet. The returned snapshot is shared and must not be mutated.
func (tc *TeenPattiClient) Snapshot() *GameSnapshot {
	tc.RLock()
	s := tc.session
	tc.RUnlock()
	if s == nil {
		return nil
	}
	return s.currentSnapshot()
}

// MyCards returns the private cards fetched for this identity in the current
// round, if any.
func (tc *TeenPattiClient) MyCards() []cards.Card {
	tc.RLock()
	s := tc.session
	tc.RUnlock()
	if s == nil {
		return nil
	}
	return s.currentCards()
}

// MyHand evaluates the locally held cards, if a full hand has been dealt.
func (tc *TeenPattiClient) MyHand() (cards.HandValue, bool) {
	hand := tc.MyCards()
	if len(hand) != 3 {
		return cards.HandValue{}, false
	}
	return cards.Evaluate(hand[0], hand[1], hand[2]), true
}

// CardsRevealed reports whether this player has looked at their cards.
func (tc *TeenPattiClient) CardsRevealed() bool {
	tc.RLock()
	s := tc.session
	tc.RUnlock()
	if s == nil {
		return false
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.cardsRevealed
}

// RevealCards marks the local hand as seen. Purely local: the stake
// consequences of playing seen are the ledger's business.
func (tc *TeenPattiClient) RevealCards() {
	tc.RLock()
	s := tc.session
	tc.RUnlock()
	if s == nil {
		return
	}
	s.mtx.Lock()
	s.cardsRevealed = true
	s.mtx.Unlock()
}

// HideCards marks the local hand as face down again.
func (tc *TeenPattiClient) HideCards() {
	tc.RLock()
	s := tc.session
	tc.RUnlock()
	if s == nil {
		return
	}
	s.mtx.Lock()
	s.cardsRevealed = false
	s.mtx.Unlock()
}

// BetAmount returns the session's current bet amount. It starts at the
// game's min bet and is bumped to the table's current bet after every sync.
func (tc *TeenPattiClient) BetAmount() dcrutil.Amount {
	tc.RLock()
	s := tc.session
	tc.RUnlock()
	if s == nil {
		return 0
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.betAmount
}

// Notifications returns the notification manager handlers register with.
func (tc *TeenPattiClient) Notifications() *NotificationManager {
	return tc.ntfns
}

// Turn derives the turn status for this identity from the latest snapshot.
func (tc *TeenPattiClient) Turn() TurnStatus {
	return ResolveTurn(tc.Snapshot(), tc.ID)
}

// Close leaves any active game and releases client resources. The ledger
// gateway is left untouched; it is owned by the caller.
func (tc *TeenPattiClient) Close() error {
	if err := tc.LeaveGame(); err != nil && !errors.Is(err, ErrNoSession) {
		tc.log.Warnf("Leaving game on close: %v", err)
	}

	if tc.cancelFunc != nil {
		tc.cancelFunc()
	}

	var err error
	if tc.journal != nil {
		err = tc.journal.Close()
	}
	if cerr := tc.logBackend.Close(); err == nil {
		err = cerr
	}
	return err
}
