package client

import (
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrutil/v4"

	"teenpatti-client/pkg/ledger"
)

// PlayerView is one seated participant as of the last sync. Seat order
// follows the ledger roster and is stable across queries for the same game.
type PlayerView struct {
	Address  string         `json:"address"`
	TotalBet dcrutil.Amount `json:"totalBet"`
	Folded   bool           `json:"folded"`
	IsBlind  bool           `json:"isBlind"`
}

// GameSnapshot is the local mirror of one game's ledger state at a point in
// time. A snapshot is always replaced wholesale on sync, never patched field
// by field, so its fields are mutually consistent.
type GameSnapshot struct {
	ID          ledger.GameID  `json:"gameId"`
	Pot         dcrutil.Amount `json:"pot"`
	CurrentBet  dcrutil.Amount `json:"currentBet"`
	MinBet      dcrutil.Amount `json:"minBet"`
	PlayerCount int            `json:"playerCount"`
	Phase       ledger.Phase   `json:"phase"`
	Winner      string         `json:"winner"`
	Players     []PlayerView   `json:"players"`
}

// buildSnapshot combines a summary and a roster fetched from the ledger into
// one snapshot. The two reads must come from the same sync pass; the caller
// is responsible for not interleaving reads of different passes.
func buildSnapshot(sum *ledger.GameSummary, roster *ledger.PlayerRoster) (*GameSnapshot, error) {
	if !roster.Consistent() {
		return nil, fmt.Errorf("%w: roster sequences have mismatched lengths",
			ledger.ErrLedgerUnavailable)
	}

	players := make([]PlayerView, len(roster.Addresses))
	for i := range roster.Addresses {
		players[i] = PlayerView{
			Address:  roster.Addresses[i],
			TotalBet: roster.Bets[i],
			Folded:   roster.Folded[i],
			IsBlind:  roster.IsBlind[i],
		}
	}

	return &GameSnapshot{
		ID:          sum.ID,
		Pot:         sum.Pot,
		CurrentBet:  sum.CurrentBet,
		MinBet:      sum.MinBet,
		PlayerCount: len(players),
		Phase:       sum.Phase,
		Winner:      sum.Winner,
		Players:     players,
	}, nil
}

// SeatIndex returns the seat of the given identity, or -1 when the identity
// is not seated. Identities compare case-insensitively.
func (s *GameSnapshot) SeatIndex(identity string) int {
	for i, p := range s.Players {
		if strings.EqualFold(p.Address, identity) {
			return i
		}
	}
	return -1
}

// HasWinner reports whether the snapshot carries a resolved winner. An ended
// game with the zero identity as winner simply has no winner yet.
func (s *GameSnapshot) HasWinner() bool {
	return !isZeroIdentity(s.Winner)
}

// isZeroIdentity reports whether identity is the ledger's "nobody" value:
// empty, or a (possibly 0x-prefixed) all-zero string.
func isZeroIdentity(identity string) bool {
	trimmed := strings.TrimPrefix(identity, "0x")
	if trimmed == "" {
		return true
	}
	for _, r := range trimmed {
		if r != '0' {
			return false
		}
	}
	return true
}
