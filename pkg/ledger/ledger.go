// Package ledger defines the contract of the external game ledger: the
// queries, commands and push notifications a client may use, and the error
// taxonomy implementations of the contract must map remote failures onto.
// The ledger itself is the single source of truth for game state; this
// package only describes how to talk to it.
package ledger

import (
	"context"
	"time"

	"github.com/decred/dcrd/dcrutil/v4"

	"teenpatti-client/pkg/cards"
)

// GameID identifies one game on the ledger. IDs are assigned by the ledger
// at game creation and are never reused.
type GameID uint64

// Phase represents the lifecycle phase of a game.
type Phase uint8

const (
	PhaseWaiting Phase = iota
	PhasePlaying
	PhaseEnded
)

// String returns the phase name as displayed to players.
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "Waiting"
	case PhasePlaying:
		return "Playing"
	case PhaseEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// GameSummary is the ledger's answer to a game query. Winner is the zero
// identity until the ledger has resolved one; on an ended game that still
// means "no winner yet", not an error.
type GameSummary struct {
	ID          GameID         `json:"gameId"`
	Pot         dcrutil.Amount `json:"pot"`
	CurrentBet  dcrutil.Amount `json:"currentBet"`
	MinBet      dcrutil.Amount `json:"minBet"`
	PlayerCount int            `json:"playerCount"`
	Phase       Phase          `json:"phase"`
	Winner      string         `json:"winner"`
}

// PlayerRoster is the ledger's answer to a roster query: four parallel
// sequences of equal length, indexed by seat. Seat order is stable across
// queries for the same game.
type PlayerRoster struct {
	Addresses []string         `json:"addresses"`
	Bets      []dcrutil.Amount `json:"bets"`
	Folded    []bool           `json:"folded"`
	IsBlind   []bool           `json:"isBlind"`
}

// Consistent reports whether the four seat sequences have matching lengths.
func (r *PlayerRoster) Consistent() bool {
	n := len(r.Addresses)
	return len(r.Bets) == n && len(r.Folded) == n && len(r.IsBlind) == n
}

// EventType identifies a ledger push notification kind.
type EventType string

const (
	EventGameCreated  EventType = "game_created"
	EventPlayerJoined EventType = "player_joined"
	EventBetPlaced    EventType = "bet_placed"
	EventPlayerFolded EventType = "player_folded"
	EventGameEnded    EventType = "game_ended"
	EventCardsDealt   EventType = "cards_dealt"
)

// Event is a push notification emitted by the ledger, scoped to one game.
// Events may arrive out of order and duplicated; consumers should treat them
// as a coarse "something changed" signal and re-query rather than interpret
// the payload.
type Event struct {
	Type      EventType      `json:"type"`
	GameID    GameID         `json:"gameId"`
	Player    string         `json:"player,omitempty"`
	Amount    dcrutil.Amount `json:"amount,omitempty"`
	Winner    string         `json:"winner,omitempty"`
	Pot       dcrutil.Amount `json:"pot,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Subscription is a live event registration. Unsubscribe is idempotent and
// guarantees the handler is never invoked after it returns.
type Subscription interface {
	Unsubscribe() error
}

// Gateway is the query/command interface to the remote ledger. All calls are
// suspension points; implementations must honor the context. Commands return
// only once the ledger has accepted or rejected them, with failures mapped to
// this package's error taxonomy.
type Gateway interface {
	// CreateGame creates a new game staked with minBet and returns its id.
	CreateGame(ctx context.Context, minBet dcrutil.Amount) (GameID, error)

	// JoinGame seats the caller in a game, staking the game's min bet.
	// A blind player joins without looking at their cards and pays the
	// reduced blind stake on subsequent bets.
	JoinGame(ctx context.Context, id GameID, playBlind bool, stake dcrutil.Amount) error

	// PlaceBet stakes amount on the caller's hand.
	PlaceBet(ctx context.Context, id GameID, amount dcrutil.Amount) error

	// Fold forfeits the caller's hand and their bets so far.
	Fold(ctx context.Context, id GameID) error

	// Show reveals hands and asks the ledger to resolve a winner.
	Show(ctx context.Context, id GameID) error

	// GetGame returns the game summary.
	GetGame(ctx context.Context, id GameID) (*GameSummary, error)

	// GetPlayerCards returns the caller's private cards. It fails with
	// ErrCardsNotDealt until the ledger has dealt for the caller.
	GetPlayerCards(ctx context.Context, id GameID) ([]cards.Card, error)

	// GetPlayers returns the seat roster.
	GetPlayers(ctx context.Context, id GameID) (*PlayerRoster, error)

	// SubscribeGameEvents registers handler for every notification kind
	// scoped to the given game.
	SubscribeGameEvents(ctx context.Context, id GameID, handler func(Event)) (Subscription, error)
}
