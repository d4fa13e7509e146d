package client

import (
	"context"
	"fmt"

	"github.com/decred/dcrd/dcrutil/v4"

	"teenpatti-client/pkg/ledger"
)

// CreateGame creates a new game on the ledger with the given minimum bet and
// starts a session for it. The creator still has to JoinGame on another
// client to take a seat; creating only opens the table.
func (tc *TeenPattiClient) CreateGame(ctx context.Context, minBet dcrutil.Amount) (ledger.GameID, error) {
	tc.RLock()
	active := tc.session != nil
	tc.RUnlock()
	if active {
		return 0, ErrSessionActive
	}

	if minBet <= 0 {
		return 0, fmt.Errorf("minimum bet must be positive, got %s", minBet)
	}

	gameID, err := tc.gateway.CreateGame(ctx, minBet)
	if err != nil {
		return 0, err
	}
	tc.log.Infof("Created game %d with min bet %s", gameID, minBet)

	if err := tc.startSession(gameID); err != nil {
		return gameID, err
	}
	return gameID, nil
}

// JoinGame takes a seat in an existing game, staking the game's minimum bet
// as the boot amount, and starts a session for it. playBlind seats the player
// without looking at their cards; a blind player bets at half price until
// they reveal.
func (tc *TeenPattiClient) JoinGame(ctx context.Context, gameID ledger.GameID, playBlind bool) error {
	tc.RLock()
	active := tc.session != nil
	tc.RUnlock()
	if active {
		return ErrSessionActive
	}

	// The boot stake is the game's min bet; read it before committing.
	sum, err := tc.gateway.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	if err := tc.gateway.JoinGame(ctx, gameID, playBlind, sum.MinBet); err != nil {
		return err
	}
	tc.log.Infof("Joined game %d (blind=%v, stake=%s)", gameID, playBlind, sum.MinBet)

	return tc.startSession(gameID)
}

// WatchGame starts a session for a game without taking a seat. The snapshot
// mirror, notifications and periodic refresh all run; betting operations fail
// at the ledger since the watcher holds no seat.
func (tc *TeenPattiClient) WatchGame(ctx context.Context, gameID ledger.GameID) error {
	tc.RLock()
	active := tc.session != nil
	tc.RUnlock()
	if active {
		return ErrSessionActive
	}

	// Fail fast on games that do not exist instead of starting a session
	// whose first sync errors out.
	if _, err := tc.gateway.GetGame(ctx, gameID); err != nil {
		return err
	}

	tc.log.Infof("Watching game %d", gameID)
	return tc.startSession(gameID)
}

// LeaveGame ends the active session: the refresh engine stops, the event
// subscription is torn down and the local mirror is discarded. The game
// itself continues on the ledger without us.
func (tc *TeenPattiClient) LeaveGame() error {
	tc.RLock()
	s := tc.session
	tc.RUnlock()
	if s == nil {
		return ErrNoSession
	}

	tc.log.Infof("Leaving game %d", s.gameID)
	tc.teardownSession(s)
	return nil
}
