package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teenpatti-client/pkg/cards"
	"teenpatti-client/pkg/ledger"
)

func TestSyncReplacesSnapshotWholesale(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")

	require.NoError(t, tc.WatchGame(context.Background(), 1))
	first := tc.Snapshot()
	require.NotNil(t, first)

	gw.setSummary(func(s *ledger.GameSummary) {
		s.Pot = 5000
		s.CurrentBet = 2000
	})

	snap, err := tc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dcrutil.Amount(5000), snap.Pot)
	assert.Equal(t, dcrutil.Amount(2000), snap.CurrentBet)

	// The previous snapshot is untouched; syncs publish new values, they
	// never patch old ones.
	assert.Zero(t, first.Pot)
	assert.Same(t, snap, tc.Snapshot())
}

func TestSyncIdempotent(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")
	gw.setSummary(func(s *ledger.GameSummary) {
		s.Pot = 5000
		s.CurrentBet = 2000
	})

	require.NoError(t, tc.WatchGame(context.Background(), 1))

	// Two back-to-back syncs with no remote mutation in between publish
	// structurally equal snapshots, each a fresh value.
	first, err := tc.Sync(context.Background())
	require.NoError(t, err)
	second, err := tc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
	assert.Same(t, second, tc.Snapshot())
}

func TestInFlightSyncDiscardedOnLeave(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")

	require.NoError(t, tc.WatchGame(context.Background(), 1))
	syncs := countSyncs(tc)
	parked := gw.calls(func(m *mockGateway) int { return m.getGameCalls })

	gate := make(chan struct{})
	gw.mtx.Lock()
	gw.getGameGate = gate
	gw.mtx.Unlock()

	errCh := make(chan error, 1)
	go func() {
		_, err := tc.Sync(context.Background())
		errCh <- err
	}()

	// Wait for the sync to reach the gateway and park there, then tear
	// the session down underneath it.
	require.Eventually(t, func() bool {
		return gw.calls(func(m *mockGateway) int { return m.getGameCalls }) > parked
	}, 5*time.Second, 5*time.Millisecond)
	require.NoError(t, tc.LeaveGame())

	close(gate)
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrNoSession)
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight sync never returned")
	}

	// The completed pass was dropped: nothing published, no state kept.
	assert.Zero(t, syncs())
	assert.Nil(t, tc.Snapshot())
}

func TestSyncFailureKeepsLastSnapshot(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")

	require.NoError(t, tc.WatchGame(context.Background(), 1))
	before := tc.Snapshot()
	require.NotNil(t, before)

	gw.mtx.Lock()
	gw.getGameErr = ledger.ErrLedgerUnavailable
	gw.mtx.Unlock()

	_, err := tc.Sync(context.Background())
	assert.ErrorIs(t, err, ledger.ErrLedgerUnavailable)
	assert.Same(t, before, tc.Snapshot())
}

func TestSyncInconsistentRoster(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")
	gw.mtx.Lock()
	gw.roster.Folded = gw.roster.Folded[:1]
	gw.mtx.Unlock()

	err := tc.WatchGame(context.Background(), 1)
	assert.ErrorIs(t, err, ledger.ErrLedgerUnavailable)
	_, ok := tc.CurrentGameID()
	assert.False(t, ok)
}

func TestSyncSwallowsCardsNotDealt(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")
	gw.getCardsErr = ledger.ErrCardsNotDealt

	require.NoError(t, tc.WatchGame(context.Background(), 1))
	assert.Nil(t, tc.MyCards())

	// The cards query failing never fails the sync itself.
	gw.mtx.Lock()
	gw.getCardsErr = ledger.ErrLedgerUnavailable
	gw.mtx.Unlock()
	_, err := tc.Sync(context.Background())
	require.NoError(t, err)
	assert.Nil(t, tc.MyCards())

	// Once dealt, the next sync picks the hand up.
	gw.mtx.Lock()
	gw.getCardsErr = nil
	gw.cards = []cards.Card{
		{Rank: cards.King, Suit: cards.Hearts},
		{Rank: cards.Queen, Suit: cards.Hearts},
		{Rank: cards.Jack, Suit: cards.Hearts},
	}
	gw.mtx.Unlock()
	_, err = tc.Sync(context.Background())
	require.NoError(t, err)
	assert.Len(t, tc.MyCards(), 3)
}

func TestSyncClearsCardsWhenGameEnds(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")
	gw.cards = []cards.Card{
		{Rank: cards.King, Suit: cards.Hearts},
		{Rank: cards.Queen, Suit: cards.Hearts},
		{Rank: cards.Jack, Suit: cards.Hearts},
	}

	require.NoError(t, tc.WatchGame(context.Background(), 1))
	require.Len(t, tc.MyCards(), 3)

	gw.setSummary(func(s *ledger.GameSummary) {
		s.Phase = ledger.PhaseEnded
		s.Winner = "0xBob"
	})
	_, err := tc.Sync(context.Background())
	require.NoError(t, err)
	assert.Nil(t, tc.MyCards())
}

func TestSyncBumpsBetAmount(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")

	require.NoError(t, tc.WatchGame(context.Background(), 1))
	assert.Equal(t, dcrutil.Amount(1000), tc.BetAmount())

	// A raise on the table lifts the proposed bet to match.
	gw.setSummary(func(s *ledger.GameSummary) { s.CurrentBet = 3000 })
	_, err := tc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dcrutil.Amount(3000), tc.BetAmount())

	// It never drops back down on its own.
	gw.setSummary(func(s *ledger.GameSummary) { s.CurrentBet = 2000 })
	_, err = tc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dcrutil.Amount(3000), tc.BetAmount())
}

func TestSyncAutoRevealsSeenPlayer(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")

	require.NoError(t, tc.WatchGame(context.Background(), 1))
	// Seated non-blind player on their turn: the hand is face up.
	assert.True(t, tc.CardsRevealed())
}

func TestSyncKeepsBlindPlayerFaceDown(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")
	gw.mtx.Lock()
	gw.roster.IsBlind[0] = true
	gw.mtx.Unlock()

	require.NoError(t, tc.WatchGame(context.Background(), 1))
	assert.False(t, tc.CardsRevealed())

	// Blind players reveal only on explicit request.
	tc.RevealCards()
	assert.True(t, tc.CardsRevealed())
	tc.HideCards()
	assert.False(t, tc.CardsRevealed())
}

func TestConcurrentSyncsNeverTear(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")

	require.NoError(t, tc.WatchGame(context.Background(), 1))

	// Snapshot consistency invariant: pot always equals 10x the current
	// bet in this scenario, so a snapshot mixing reads from two passes is
	// detectable.
	var handlerMtx sync.Mutex
	torn := false
	tc.ntfns.RegisterSync(OnSnapshotUpdatedNtfn(func(snap *GameSnapshot, _ time.Time) {
		handlerMtx.Lock()
		if snap.Pot != snap.CurrentBet*10 {
			torn = true
		}
		handlerMtx.Unlock()
	}))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				bet := dcrutil.Amount(1000 + worker*100 + j)
				gw.setSummary(func(s *ledger.GameSummary) {
					s.CurrentBet = bet
					s.Pot = bet * 10
				})
				tc.Sync(context.Background())
			}
		}(i)
	}
	wg.Wait()

	handlerMtx.Lock()
	defer handlerMtx.Unlock()
	assert.False(t, torn, "published a snapshot mixing two sync passes")
}

func TestPushEventTriggersRefresh(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")
	syncs := countSyncs(tc)

	require.NoError(t, tc.WatchGame(context.Background(), 1))
	base := syncs()

	gw.emit(ledger.Event{Type: ledger.EventBetPlaced, GameID: 1, Player: "0xBob", Amount: 2000})

	require.Eventually(t, func() bool { return syncs() > base },
		5*time.Second, 10*time.Millisecond)
}

func TestPeriodicRefresh(t *testing.T) {
	tc, gw, clock := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")
	syncs := countSyncs(tc)

	require.NoError(t, tc.WatchGame(context.Background(), 1))
	base := syncs()

	// Wait for the session loop to arm its ticker, then advance past one
	// interval.
	clock.BlockUntil(1)
	clock.Advance(defaultSyncInterval + time.Millisecond)

	require.Eventually(t, func() bool { return syncs() > base },
		5*time.Second, 10*time.Millisecond)
}

func TestNoRefreshAfterLeave(t *testing.T) {
	tc, gw, clock := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")

	require.NoError(t, tc.WatchGame(context.Background(), 1))
	clock.BlockUntil(1)
	require.NoError(t, tc.LeaveGame())

	before := gw.calls(func(m *mockGateway) int { return m.getGameCalls })
	clock.Advance(10 * defaultSyncInterval)
	time.Sleep(50 * time.Millisecond)
	after := gw.calls(func(m *mockGateway) int { return m.getGameCalls })
	assert.Equal(t, before, after)

	// Events delivered after teardown are dropped too.
	gw.emit(ledger.Event{Type: ledger.EventBetPlaced, GameID: 1})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, gw.calls(func(m *mockGateway) int { return m.getGameCalls }))
}

func TestRebroadcastNotifications(t *testing.T) {
	tc, gw, _ := newTestClient(t)
	gw.seatPlayers(testIdentity, "0xBob")

	require.NoError(t, tc.WatchGame(context.Background(), 1))

	betCh := make(chan dcrutil.Amount, 1)
	tc.ntfns.RegisterSync(OnBetPlacedNtfn(func(_ ledger.GameID, _ string, amount dcrutil.Amount, _ time.Time) {
		betCh <- amount
	}))
	endedCh := make(chan string, 1)
	tc.ntfns.RegisterSync(OnGameEndedNtfn(func(_ ledger.GameID, winner string, _ dcrutil.Amount, _ time.Time) {
		endedCh <- winner
	}))

	gw.emit(ledger.Event{Type: ledger.EventBetPlaced, GameID: 1, Player: "0xBob", Amount: 2000})
	gw.emit(ledger.Event{Type: ledger.EventGameEnded, GameID: 1, Winner: "0xBob", Pot: 9000})

	select {
	case amt := <-betCh:
		assert.Equal(t, dcrutil.Amount(2000), amt)
	case <-time.After(5 * time.Second):
		t.Fatal("bet notification never arrived")
	}
	select {
	case winner := <-endedCh:
		assert.Equal(t, "0xBob", winner)
	case <-time.After(5 * time.Second):
		t.Fatal("game ended notification never arrived")
	}
}
