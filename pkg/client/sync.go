package client

import (
	"context"
	"errors"

	"teenpatti-client/pkg/cards"
	"teenpatti-client/pkg/history"
	"teenpatti-client/pkg/ledger"
	"teenpatti-client/pkg/utils"
)

// Sync refreshes the snapshot of the active game once and returns the
// freshly published snapshot. Manual syncs serialize with the session's
// refresh engine: at most one sync pass runs at a time for a game.
func (tc *TeenPattiClient) Sync(ctx context.Context) (*GameSnapshot, error) {
	tc.RLock()
	s := tc.session
	tc.RUnlock()
	if s == nil {
		return nil, ErrNoSession
	}
	return tc.syncSession(ctx, s)
}

// syncSession performs one reconciliation pass: summary and roster are read
// back to back under the session's sync lock, combined into one snapshot and
// published wholesale. No caller ever observes a snapshot mixing reads from
// two different passes.
func (tc *TeenPattiClient) syncSession(ctx context.Context, s *gameSession) (*GameSnapshot, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	sum, err := tc.gateway.GetGame(ctx, s.gameID)
	if err != nil {
		return nil, err
	}
	roster, err := tc.gateway.GetPlayers(ctx, s.gameID)
	if err != nil {
		return nil, err
	}

	snap, err := buildSnapshot(sum, roster)
	if err != nil {
		return nil, err
	}

	// Private cards are only fetched while we are seated in a running
	// game. "Not dealt yet" is an expected transient, never a sync
	// failure.
	st := ResolveTurn(snap, tc.ID)
	var hand []cards.Card
	fetchedCards := false
	if st.Seated && snap.Phase == ledger.PhasePlaying {
		hand, err = tc.gateway.GetPlayerCards(ctx, s.gameID)
		if err != nil {
			if !errors.Is(err, ledger.ErrCardsNotDealt) {
				tc.log.Debugf("Could not load cards for game %d: %v",
					s.gameID, err)
			}
			hand = nil
		} else {
			fetchedCards = true
			tc.log.Tracef("Holding %s", utils.FormatCards(hand))
		}
	}

	s.mtx.Lock()
	if s.torndown {
		// Session ended while this pass was in flight; drop the
		// result rather than resurrecting state.
		s.mtx.Unlock()
		return nil, ErrNoSession
	}

	s.snapshot = snap
	if fetchedCards {
		s.myCards = hand
	} else if !st.Seated || snap.Phase != ledger.PhasePlaying {
		s.myCards = nil
	}

	// Keep the proposed bet at least at the table's current bet.
	if snap.CurrentBet > s.betAmount {
		s.betAmount = snap.CurrentBet
	}
	if snap.MinBet > s.betAmount {
		s.betAmount = snap.MinBet
	}

	// Seen players have nothing left to hide once the action reaches
	// them; blind players reveal only on explicit request.
	if st.MyTurn && !s.cardsRevealed {
		if idx := snap.SeatIndex(tc.ID); idx >= 0 && !snap.Players[idx].IsBlind {
			s.cardsRevealed = true
		}
	}

	recordResult := snap.Phase == ledger.PhaseEnded && !s.resultRecorded
	if recordResult {
		s.resultRecorded = true
	}
	s.mtx.Unlock()

	if recordResult && tc.journal != nil {
		err := tc.journal.RecordResult(history.ResultRecord{
			GameID:     snap.ID,
			Winner:     snap.Winner,
			Pot:        snap.Pot,
			RecordedAt: tc.clock.Now(),
		})
		if err != nil {
			tc.log.Warnf("Game result not recorded: %v", err)
		}
	}

	tc.ntfns.notifySnapshotUpdated(snap, tc.clock.Now())

	return snap, nil
}
