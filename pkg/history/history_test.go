package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	id, err := s.StartSession(7, "0xAlice", now)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// Distinct sessions get distinct ids, even for the same game.
	id2, err := s.StartSession(7, "0xAlice", now)
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)

	require.NoError(t, s.EndSession(id, now.Add(time.Minute)))
}

func TestRecordAndListActions(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	id, err := s.StartSession(7, "0xAlice", now)
	require.NoError(t, err)

	require.NoError(t, s.RecordAction(ActionRecord{
		SessionID: id,
		Kind:      "bet",
		Amount:    2000,
		Outcome:   OutcomeConfirmed,
		CreatedAt: now,
	}))
	require.NoError(t, s.RecordAction(ActionRecord{
		SessionID: id,
		Kind:      "bet",
		Amount:    500,
		Outcome:   OutcomeRejected,
		Reason:    "bet too low",
		CreatedAt: now.Add(time.Second),
	}))
	require.NoError(t, s.RecordAction(ActionRecord{
		SessionID: id,
		Kind:      "fold",
		Outcome:   OutcomeConfirmed,
		CreatedAt: now.Add(2 * time.Second),
	}))

	recs, err := s.ActionsForSession(id)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// Dispatch order is preserved.
	assert.Equal(t, "bet", recs[0].Kind)
	assert.Equal(t, OutcomeConfirmed, recs[0].Outcome)
	assert.Equal(t, OutcomeRejected, recs[1].Outcome)
	assert.Equal(t, "bet too low", recs[1].Reason)
	assert.Equal(t, "fold", recs[2].Kind)
	assert.Empty(t, recs[2].Reason)
}

func TestActionsForUnknownSession(t *testing.T) {
	s := newTestStore(t)

	recs, err := s.ActionsForSession("no-such-session")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecordResultUpsert(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.RecordResult(ResultRecord{
		GameID:     7,
		Winner:     "",
		Pot:        9000,
		RecordedAt: now,
	}))

	rec, err := s.Result(7)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Empty(t, rec.Winner)
	assert.EqualValues(t, 9000, rec.Pot)

	// A later record for the same game replaces the first, keeping the
	// winner the ledger finally resolved.
	require.NoError(t, s.RecordResult(ResultRecord{
		GameID:     7,
		Winner:     "0xBob",
		Pot:        9000,
		RecordedAt: now.Add(time.Second),
	}))

	rec, err = s.Result(7)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "0xBob", rec.Winner)
}

func TestResultMissing(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Result(99)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")
	now := time.Now().UTC().Truncate(time.Second)

	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordResult(ResultRecord{GameID: 7, Winner: "0xBob", Pot: 100, RecordedAt: now}))
	require.NoError(t, s.Close())

	s2, err := NewStore(path)
	require.NoError(t, err)
	defer s2.Close()

	rec, err := s2.Result(7)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "0xBob", rec.Winner)
}
