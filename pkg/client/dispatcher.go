package client

import (
	"context"
	"errors"

	"github.com/decred/dcrd/dcrutil/v4"

	"teenpatti-client/pkg/history"
)

var (
	// ErrActionAlreadyPending is returned when an action is dispatched
	// while another one has not reached a terminal outcome yet.
	ErrActionAlreadyPending = errors.New("another action is already pending")

	// ErrBetTooLow is returned locally, before any remote call, when a
	// bet does not match the table's current bet.
	ErrBetTooLow = errors.New("bet is below the current bet")
)

// PendingAction is the in-flight command of a session, if any. At most one
// action is pending at a time.
type PendingAction int

const (
	PendingNone PendingAction = iota
	PendingBet
	PendingFold
	PendingShow
)

// String returns the action name.
func (a PendingAction) String() string {
	switch a {
	case PendingNone:
		return "none"
	case PendingBet:
		return "bet"
	case PendingFold:
		return "fold"
	case PendingShow:
		return "show"
	default:
		return "unknown"
	}
}

// PendingActionState returns the session's current in-flight action.
func (tc *TeenPattiClient) PendingActionState() PendingAction {
	tc.RLock()
	s := tc.session
	tc.RUnlock()
	if s == nil {
		return PendingNone
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.pending
}

// PlaceBet stakes amount on the current hand. The bet is rejected locally
// with ErrBetTooLow when it does not reach the table's current bet, and with
// ErrActionAlreadyPending while another action is in flight. Remote failures
// come back classified per the ledger error taxonomy; the local snapshot is
// untouched until the post-action resync reports what actually happened.
func (tc *TeenPattiClient) PlaceBet(ctx context.Context, amount dcrutil.Amount) error {
	tc.RLock()
	s := tc.session
	tc.RUnlock()
	if s == nil {
		return ErrNoSession
	}

	s.mtx.Lock()
	if s.pending != PendingNone {
		s.mtx.Unlock()
		return ErrActionAlreadyPending
	}
	if s.snapshot != nil && amount < s.snapshot.CurrentBet {
		s.mtx.Unlock()
		return ErrBetTooLow
	}
	s.pending = PendingBet
	s.mtx.Unlock()

	err := tc.gateway.PlaceBet(ctx, s.gameID, amount)
	tc.finishAction(s, PendingBet, amount, err)
	return err
}

// Fold forfeits the current hand and its bets. Irreversible once submitted;
// confirming the player's intent is the caller's business.
func (tc *TeenPattiClient) Fold(ctx context.Context) error {
	tc.RLock()
	s := tc.session
	tc.RUnlock()
	if s == nil {
		return ErrNoSession
	}

	s.mtx.Lock()
	if s.pending != PendingNone {
		s.mtx.Unlock()
		return ErrActionAlreadyPending
	}
	s.pending = PendingFold
	s.mtx.Unlock()

	err := tc.gateway.Fold(ctx, s.gameID)
	tc.finishAction(s, PendingFold, 0, err)
	return err
}

// Show reveals hands and asks the ledger to resolve the winner, ending the
// game. Irreversible once submitted.
func (tc *TeenPattiClient) Show(ctx context.Context) error {
	tc.RLock()
	s := tc.session
	tc.RUnlock()
	if s == nil {
		return ErrNoSession
	}

	s.mtx.Lock()
	if s.pending != PendingNone {
		s.mtx.Unlock()
		return ErrActionAlreadyPending
	}
	s.pending = PendingShow
	s.mtx.Unlock()

	err := tc.gateway.Show(ctx, s.gameID)
	tc.finishAction(s, PendingShow, 0, err)
	return err
}

// finishAction drives the pending action to its terminal state: the pending
// marker is cleared either way, a confirmed command triggers a resync, and a
// rejected one leaves the snapshot exactly as it was.
func (tc *TeenPattiClient) finishAction(s *gameSession, action PendingAction,
	amount dcrutil.Amount, err error) {

	s.mtx.Lock()
	s.pending = PendingNone
	torndown := s.torndown
	historyID := s.historyID
	s.mtx.Unlock()

	if tc.journal != nil && historyID != "" {
		rec := history.ActionRecord{
			SessionID: historyID,
			Kind:      action.String(),
			Amount:    amount,
			Outcome:   history.OutcomeConfirmed,
			CreatedAt: tc.clock.Now(),
		}
		if err != nil {
			rec.Outcome = history.OutcomeRejected
			rec.Reason = err.Error()
		}
		if jerr := tc.journal.RecordAction(rec); jerr != nil {
			tc.log.Warnf("Action not recorded: %v", jerr)
		}
	}

	if err != nil {
		tc.log.Debugf("Action %s on game %d rejected: %v", action, s.gameID, err)
		return
	}

	// Converge on whatever the ledger now reports, even if it
	// contradicts the optimistic expectation.
	if !torndown {
		s.requestRefresh()
	}
}
