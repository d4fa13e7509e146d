package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"teenpatti-client/pkg/ledger"
)

func TestResolveTurn(t *testing.T) {
	playing := func(players ...PlayerView) *GameSnapshot {
		return &GameSnapshot{Phase: ledger.PhasePlaying, Players: players}
	}

	tests := []struct {
		name     string
		snap     *GameSnapshot
		identity string
		want     TurnStatus
	}{{
		name:     "nil snapshot",
		snap:     nil,
		identity: "0xAlice",
		want:     TurnStatus{},
	}, {
		name:     "not seated",
		snap:     playing(PlayerView{Address: "0xBob"}),
		identity: "0xAlice",
		want:     TurnStatus{},
	}, {
		name:     "seated and playing",
		snap:     playing(PlayerView{Address: "0xAlice"}, PlayerView{Address: "0xBob"}),
		identity: "0xAlice",
		want:     TurnStatus{Seated: true, MyTurn: true},
	}, {
		name:     "seated but folded",
		snap:     playing(PlayerView{Address: "0xAlice", Folded: true}),
		identity: "0xAlice",
		want:     TurnStatus{Seated: true, MyTurn: false},
	}, {
		name: "seated while waiting",
		snap: &GameSnapshot{
			Phase:   ledger.PhaseWaiting,
			Players: []PlayerView{{Address: "0xAlice"}},
		},
		identity: "0xAlice",
		want:     TurnStatus{Seated: true, MyTurn: false},
	}, {
		name: "seated after game ended",
		snap: &GameSnapshot{
			Phase:   ledger.PhaseEnded,
			Players: []PlayerView{{Address: "0xAlice"}},
		},
		identity: "0xAlice",
		want:     TurnStatus{Seated: true, MyTurn: false},
	}, {
		name:     "case insensitive identity",
		snap:     playing(PlayerView{Address: "0xALICE"}),
		identity: "0xalice",
		want:     TurnStatus{Seated: true, MyTurn: true},
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveTurn(tc.snap, tc.identity))
		})
	}
}
