package client

import "teenpatti-client/pkg/ledger"

// TurnStatus is the local derivation of whether the given identity is seated
// and may act.
type TurnStatus struct {
	Seated bool
	MyTurn bool
}

// ResolveTurn derives a turn status from a snapshot. This is a heuristic,
// not an authoritative turn indicator: the ledger exposes no current-player
// pointer, so every seated, unfolded participant of a running game is
// considered "on turn" and the ledger itself rejects out-of-turn commands.
// Do not use this to gate anything correctness-critical.
func ResolveTurn(snap *GameSnapshot, identity string) TurnStatus {
	if snap == nil {
		return TurnStatus{}
	}

	idx := snap.SeatIndex(identity)
	if idx < 0 {
		return TurnStatus{}
	}

	return TurnStatus{
		Seated: true,
		MyTurn: !snap.Players[idx].Folded && snap.Phase == ledger.PhasePlaying,
	}
}
